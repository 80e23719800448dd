package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type certificateApi struct {
	svc      LearningService
	validate *validator.Validate
}

func registerCertificateAPI(g *echo.Group, svc LearningService, validate *validator.Validate) {
	api := certificateApi{svc: svc, validate: validate}
	g.GET("/certificates", api.list)
}

func (api *certificateApi) list(ctx echo.Context) error {
	var q StudentQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to StudentQuery")
	}
	if err := q.Validate(api.validate); err != nil {
		return err
	}

	certs, err := api.svc.Certificates(ctx.Request().Context(), q.StudentID)
	if err != nil {
		return errors.Wrap(err, "listing certificates")
	}
	return ctx.JSON(http.StatusOK, certs)
}
