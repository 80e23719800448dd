package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/masomo-courseware/apps/api/echo"
	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/learning"
)

func TestNew(t *testing.T) {
	c := New(func() *core.Config {
		conf := core.NewTestConfig()
		conf.Debug = true // disables rollbar
		return conf
	})

	err := c.Invoke(func(svc *learning.Service, server echoapi.Server, closeStorage Closer) {
		assert.NotNil(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/v1/courses/unknown/outline", nil)
		rec = httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		assert.NoError(t, closeStorage())
	})
	require.NoError(t, err)
}
