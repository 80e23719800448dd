package assessment

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type SubmissionStatus string

// Submission statuses
const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusGraded    SubmissionStatus = "graded"
)

func (s SubmissionStatus) IsValid() bool {
	return s == StatusSubmitted || s == StatusGraded
}

type Assignment struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	TotalPoints float64   `json:"total_points"`
	DueDate     null.Time `json:"due_date"`
}

type Quiz struct {
	ID              string  `json:"id"`
	CourseID        string  `json:"course_id"`
	Title           string  `json:"title"`
	PassPercentage  float64 `json:"pass_percentage"`  // 0 - 100
	AttemptsAllowed int     `json:"attempts_allowed"` // 0: unlimited
}

type Submission struct {
	ID           string           `json:"id"`
	StudentID    string           `json:"student_id"`
	AssignmentID string           `json:"assignment_id"`
	CourseID     string           `json:"course_id"`
	Status       SubmissionStatus `json:"status"`
	Grade        null.Float64     `json:"grade"`
	CreatedAt    time.Time        `json:"created_at"` // UTC
}

type QuizAttempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	QuizID      string    `json:"quiz_id"`
	CourseID    string    `json:"course_id"`
	Percentage  float64   `json:"percentage"`
	AttemptedAt time.Time `json:"attempted_at"` // UTC
}
