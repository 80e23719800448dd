package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
)

type (
	// StudentQuery binds `?student=`.
	StudentQuery struct {
		StudentID string `query:"student" json:"student" validate:"required,alphanum_"`
	}

	// OfficerQuery binds `?officer=`.
	OfficerQuery struct {
		OfficerID string `query:"officer" json:"officer" validate:"required,alphanum_"`
	}

	CompleteContentRequest struct {
		StudentID       string   `json:"student_id" validate:"required,alphanum_"`
		WatchPercentage *float64 `json:"watch_percentage" validate:"omitempty,percentage"`
	}

	DeliverContentRequest struct {
		OfficerID string `json:"officer_id" validate:"required,alphanum_"`
	}
)

func (q *StudentQuery) Validate(validate *validator.Validate) error {
	q.StudentID = core.CleanString(q.StudentID)
	return validate.Struct(q)
}

func (q *OfficerQuery) Validate(validate *validator.Validate) error {
	q.OfficerID = core.CleanString(q.OfficerID)
	return validate.Struct(q)
}

func (r *CompleteContentRequest) Validate(validate *validator.Validate) error {
	r.StudentID = core.CleanString(r.StudentID)
	return validate.Struct(r)
}

func (r CompleteContentRequest) Watch() null.Float64 {
	return null.Float64FromPtr(r.WatchPercentage)
}

func (r *DeliverContentRequest) Validate(validate *validator.Validate) error {
	r.OfficerID = core.CleanString(r.OfficerID)
	return validate.Struct(r)
}
