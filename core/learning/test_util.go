package learning

import "time"

// NewServiceMock returns a Service reading the time from now.
func NewServiceMock(deps Deps, now func() time.Time) *Service {
	svc := NewService(deps)
	svc.now = now
	return svc
}
