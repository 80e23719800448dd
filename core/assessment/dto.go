package assessment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
)

// NewSubmission contains the information needed to record an assignment submission.
type NewSubmission struct {
	StudentID string           `json:"student_id" validate:"required,alphanum_"`
	Status    SubmissionStatus `json:"status" validate:"required,substatus"`
	Grade     *float64         `json:"grade" validate:"omitempty,gte=0"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.Status = SubmissionStatus(core.CleanString(string(ns.Status), true /* lower */))
	return validate.Struct(ns)
}

func (ns NewSubmission) GradeValue() null.Float64 {
	return null.Float64FromPtr(ns.Grade)
}

// NewQuizAttempt contains the information needed to record a quiz attempt.
type NewQuizAttempt struct {
	StudentID  string   `json:"student_id" validate:"required,alphanum_"`
	Percentage *float64 `json:"percentage" validate:"required,percentage"`
}

func (na *NewQuizAttempt) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	return validate.Struct(na)
}

// NewAssignment & NewQuiz are used by the catalog import.
type (
	NewAssignment struct {
		ID          string     `json:"id" validate:"required,alphanum_"`
		CourseID    string     `json:"course_id" validate:"required,alphanum_"`
		Title       string     `json:"title" validate:"required"`
		TotalPoints float64    `json:"total_points" validate:"gte=0"`
		DueDate     *time.Time `json:"due_date"`
	}

	NewQuiz struct {
		ID              string  `json:"id" validate:"required,alphanum_"`
		CourseID        string  `json:"course_id" validate:"required,alphanum_"`
		Title           string  `json:"title" validate:"required"`
		PassPercentage  float64 `json:"pass_percentage" validate:"percentage"`
		AttemptsAllowed int     `json:"attempts_allowed" validate:"gte=0"`
	}
)

func (na NewAssignment) Assignment() Assignment {
	a := Assignment{
		ID:          core.CleanString(na.ID),
		CourseID:    core.CleanString(na.CourseID),
		Title:       core.CleanString(na.Title),
		TotalPoints: na.TotalPoints,
	}
	if na.DueDate != nil {
		a.DueDate = null.TimeFrom(na.DueDate.UTC())
	}
	return a
}

func (nq NewQuiz) Quiz() Quiz {
	return Quiz{
		ID:              core.CleanString(nq.ID),
		CourseID:        core.CleanString(nq.CourseID),
		Title:           core.CleanString(nq.Title),
		PassPercentage:  nq.PassPercentage,
		AttemptsAllowed: nq.AttemptsAllowed,
	}
}
