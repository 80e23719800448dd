package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-courseware/core/assessment"
)

type assessmentRepository struct {
	db *assessmentTables
}

var _ assessment.Repository = (*assessmentRepository)(nil)

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{db: db.assessments}
}

func (repo *assessmentRepository) ListAssignments(_ context.Context, courseID string) ([]assessment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]assessment.Assignment, 0)
	for _, a := range repo.db.assignments {
		if a.CourseID == courseID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (repo *assessmentRepository) GetAssignment(_ context.Context, courseID, id string) (assessment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.assignments[id]; ok && a.CourseID == courseID {
		return a, nil
	}
	return assessment.Assignment{}, assessment.ErrAssignmentNotFound
}

func (repo *assessmentRepository) SaveAssignment(_ context.Context, a assessment.Assignment) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.assignments[a.ID] = a
	return nil
}

func (repo *assessmentRepository) ListQuizzes(_ context.Context, courseID string) ([]assessment.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]assessment.Quiz, 0)
	for _, q := range repo.db.quizzes {
		if q.CourseID == courseID {
			list = append(list, q)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (repo *assessmentRepository) GetQuiz(_ context.Context, courseID, id string) (assessment.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if q, ok := repo.db.quizzes[id]; ok && q.CourseID == courseID {
		return q, nil
	}
	return assessment.Quiz{}, assessment.ErrQuizNotFound
}

func (repo *assessmentRepository) SaveQuiz(_ context.Context, q assessment.Quiz) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.quizzes[q.ID] = q
	return nil
}

func (repo *assessmentRepository) CreateSubmission(_ context.Context, sub assessment.Submission) (assessment.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.submissions = append(repo.db.submissions, sub)
	return sub, nil
}

func (repo *assessmentRepository) ListSubmissions(_ context.Context, courseID, studentID string) ([]assessment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]assessment.Submission, 0)
	for _, sub := range repo.db.submissions {
		if sub.CourseID == courseID && (studentID == "" || sub.StudentID == studentID) {
			list = append(list, sub)
		}
	}
	return list, nil
}

func (repo *assessmentRepository) CreateQuizAttempt(_ context.Context, att assessment.QuizAttempt) (assessment.QuizAttempt, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.attempts = append(repo.db.attempts, att)
	return att, nil
}

func (repo *assessmentRepository) ListQuizAttempts(_ context.Context, courseID, studentID string) ([]assessment.QuizAttempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]assessment.QuizAttempt, 0)
	for _, att := range repo.db.attempts {
		if att.CourseID == courseID && (studentID == "" || att.StudentID == studentID) {
			list = append(list, att)
		}
	}
	return list, nil
}
