package assessment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
)

var (
	// errors
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrAttemptsExhausted  = errors.New("no quiz attempts left")
)

// AttemptsExhaustedError rejects an attempt on a quiz allowing at most `allowed` attempts.
func AttemptsExhaustedError(allowed int) error {
	return core.NewFieldValidationError(ErrAttemptsExhausted, "attempts", "at most %d attempts are allowed", allowed)
}

type Repository interface {
	ListAssignments(ctx context.Context, courseID string) ([]Assignment, error)
	GetAssignment(ctx context.Context, courseID, id string) (Assignment, error)
	SaveAssignment(ctx context.Context, a Assignment) error

	ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error)
	GetQuiz(ctx context.Context, courseID, id string) (Quiz, error)
	SaveQuiz(ctx context.Context, q Quiz) error

	CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
	// ListSubmissions returns the course submissions, of a single student when studentID is not empty.
	ListSubmissions(ctx context.Context, courseID, studentID string) ([]Submission, error)

	CreateQuizAttempt(ctx context.Context, att QuizAttempt) (QuizAttempt, error)
	// ListQuizAttempts returns the course quiz attempts, of a single student when studentID is not empty.
	ListQuizAttempts(ctx context.Context, courseID, studentID string) ([]QuizAttempt, error)
}

// State is everything recorded about a student's assessments in a course.
type State struct {
	Assignments []Assignment
	Submissions []Submission
	Quizzes     []Quiz
	Attempts    []QuizAttempt
}

// LoadState fetches the assessments of a course and a student's submissions & attempts.
func LoadState(ctx context.Context, repo Repository, courseID, studentID string) (State, error) {
	var (
		st  State
		err error
	)
	if st.Assignments, err = repo.ListAssignments(ctx, courseID); err != nil {
		return State{}, errors.Wrap(err, "listing assignments")
	}
	if st.Submissions, err = repo.ListSubmissions(ctx, courseID, studentID); err != nil {
		return State{}, errors.Wrap(err, "listing submissions")
	}
	if st.Quizzes, err = repo.ListQuizzes(ctx, courseID); err != nil {
		return State{}, errors.Wrap(err, "listing quizzes")
	}
	if st.Attempts, err = repo.ListQuizAttempts(ctx, courseID, studentID); err != nil {
		return State{}, errors.Wrap(err, "listing quiz attempts")
	}
	return st, nil
}
