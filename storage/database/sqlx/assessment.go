package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
)

type (
	assignmentRow struct {
		ID          string    `db:"id"`
		CourseID    string    `db:"course_id"`
		Title       string    `db:"title"`
		TotalPoints float64   `db:"total_points"`
		DueDate     null.Time `db:"due_date"`
	}

	quizRow struct {
		ID              string  `db:"id"`
		CourseID        string  `db:"course_id"`
		Title           string  `db:"title"`
		PassPercentage  float64 `db:"pass_percentage"`
		AttemptsAllowed int     `db:"attempts_allowed"`
	}

	submissionRow struct {
		ID           string       `db:"id"`
		StudentID    string       `db:"student_id"`
		AssignmentID string       `db:"assignment_id"`
		CourseID     string       `db:"course_id"`
		Status       string       `db:"status"`
		Grade        null.Float64 `db:"grade"`
		CreatedAt    time.Time    `db:"created_at"`
	}

	attemptRow struct {
		ID          string    `db:"id"`
		StudentID   string    `db:"student_id"`
		QuizID      string    `db:"quiz_id"`
		CourseID    string    `db:"course_id"`
		Percentage  float64   `db:"percentage"`
		AttemptedAt time.Time `db:"attempted_at"`
	}
)

func (row assignmentRow) assignment() assessment.Assignment {
	a := assessment.Assignment{ID: row.ID, CourseID: row.CourseID, Title: row.Title, TotalPoints: row.TotalPoints, DueDate: row.DueDate}
	if a.DueDate.Valid {
		a.DueDate.Time = a.DueDate.Time.UTC()
	}
	return a
}

func (row quizRow) quiz() assessment.Quiz {
	return assessment.Quiz{
		ID:              row.ID,
		CourseID:        row.CourseID,
		Title:           row.Title,
		PassPercentage:  row.PassPercentage,
		AttemptsAllowed: row.AttemptsAllowed,
	}
}

type assessmentRepository struct {
	base
}

var _ assessment.Repository = (*assessmentRepository)(nil)

func NewAssessmentRepository(db core.DB) assessment.Repository {
	return &assessmentRepository{base: base{db: db}}
}

func (repo assessmentRepository) ListAssignments(ctx context.Context, courseID string) ([]assessment.Assignment, error) {
	var rows []assignmentRow
	q := `SELECT id, course_id, title, total_points, due_date FROM assignments WHERE course_id = ? ORDER BY id`
	if err := repo.selekt(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	list := make([]assessment.Assignment, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.assignment())
	}
	return list, nil
}

func (repo assessmentRepository) GetAssignment(ctx context.Context, courseID, id string) (assessment.Assignment, error) {
	var row assignmentRow
	q := `SELECT id, course_id, title, total_points, due_date FROM assignments WHERE course_id = ? AND id = ?`
	if err := repo.get(ctx, &row, q, courseID, id); err != nil {
		if isNoRows(err) {
			return assessment.Assignment{}, assessment.ErrAssignmentNotFound
		}
		return assessment.Assignment{}, errors.Wrap(err, "selecting assignment")
	}
	return row.assignment(), nil
}

func (repo assessmentRepository) SaveAssignment(ctx context.Context, a assessment.Assignment) error {
	_, err := repo.exec(ctx, repo.db, `
		INSERT INTO assignments (id, course_id, title, total_points, due_date) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			title = EXCLUDED.title,
			total_points = EXCLUDED.total_points,
			due_date = EXCLUDED.due_date`,
		a.ID, a.CourseID, a.Title, a.TotalPoints, a.DueDate,
	)
	return errors.Wrap(err, "upserting assignment")
}

func (repo assessmentRepository) ListQuizzes(ctx context.Context, courseID string) ([]assessment.Quiz, error) {
	var rows []quizRow
	q := `SELECT id, course_id, title, pass_percentage, attempts_allowed FROM quizzes WHERE course_id = ? ORDER BY id`
	if err := repo.selekt(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting quizzes")
	}
	list := make([]assessment.Quiz, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.quiz())
	}
	return list, nil
}

func (repo assessmentRepository) GetQuiz(ctx context.Context, courseID, id string) (assessment.Quiz, error) {
	var row quizRow
	q := `SELECT id, course_id, title, pass_percentage, attempts_allowed FROM quizzes WHERE course_id = ? AND id = ?`
	if err := repo.get(ctx, &row, q, courseID, id); err != nil {
		if isNoRows(err) {
			return assessment.Quiz{}, assessment.ErrQuizNotFound
		}
		return assessment.Quiz{}, errors.Wrap(err, "selecting quiz")
	}
	return row.quiz(), nil
}

func (repo assessmentRepository) SaveQuiz(ctx context.Context, quiz assessment.Quiz) error {
	_, err := repo.exec(ctx, repo.db, `
		INSERT INTO quizzes (id, course_id, title, pass_percentage, attempts_allowed) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			title = EXCLUDED.title,
			pass_percentage = EXCLUDED.pass_percentage,
			attempts_allowed = EXCLUDED.attempts_allowed`,
		quiz.ID, quiz.CourseID, quiz.Title, quiz.PassPercentage, quiz.AttemptsAllowed,
	)
	return errors.Wrap(err, "upserting quiz")
}

// nextSeq numbers rows in insertion order, so equal timestamps keep their recording order.
func (repo assessmentRepository) nextSeq(ctx context.Context, tx core.DBExecutor, table string) (int64, error) {
	var seq int64
	if err := tx.GetContext(ctx, &seq, "SELECT COALESCE(MAX(seq), 0) + 1 FROM "+table); err != nil {
		return 0, errors.Wrap(err, "selecting next seq")
	}
	return seq, nil
}

func (repo assessmentRepository) CreateSubmission(ctx context.Context, sub assessment.Submission) (assessment.Submission, error) {
	sub.CreatedAt = sub.CreatedAt.UTC()
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		seq, err := repo.nextSeq(ctx, tx, "assignment_submissions")
		if err != nil {
			return err
		}
		_, err = repo.exec(ctx, tx, `
			INSERT INTO assignment_submissions (id, student_id, assignment_id, course_id, status, grade, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.StudentID, sub.AssignmentID, sub.CourseID, string(sub.Status), sub.Grade, sub.CreatedAt, seq,
		)
		return err
	})
	if err != nil {
		return assessment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

// byStudent narrows a course query to a single student when studentID is set.
func byStudent(q, order, courseID, studentID string) (string, []interface{}) {
	args := []interface{}{courseID}
	if studentID != "" {
		q += ` AND student_id = ?`
		args = append(args, studentID)
	}
	return q + ` ORDER BY ` + order, args
}

func (repo assessmentRepository) ListSubmissions(ctx context.Context, courseID, studentID string) ([]assessment.Submission, error) {
	var rows []submissionRow
	q, args := byStudent(`
		SELECT id, student_id, assignment_id, course_id, status, grade, created_at
		FROM assignment_submissions
		WHERE course_id = ?`, "created_at, seq", courseID, studentID)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting submissions")
	}
	list := make([]assessment.Submission, 0, len(rows))
	for _, row := range rows {
		list = append(list, assessment.Submission{
			ID:           row.ID,
			StudentID:    row.StudentID,
			AssignmentID: row.AssignmentID,
			CourseID:     row.CourseID,
			Status:       assessment.SubmissionStatus(row.Status),
			Grade:        row.Grade,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return list, nil
}

func (repo assessmentRepository) CreateQuizAttempt(ctx context.Context, att assessment.QuizAttempt) (assessment.QuizAttempt, error) {
	att.AttemptedAt = att.AttemptedAt.UTC()
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		seq, err := repo.nextSeq(ctx, tx, "quiz_attempts")
		if err != nil {
			return err
		}
		_, err = repo.exec(ctx, tx, `
			INSERT INTO quiz_attempts (id, student_id, quiz_id, course_id, percentage, attempted_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			att.ID, att.StudentID, att.QuizID, att.CourseID, att.Percentage, att.AttemptedAt, seq,
		)
		return err
	})
	if err != nil {
		return assessment.QuizAttempt{}, errors.Wrap(err, "inserting quiz attempt")
	}
	return att, nil
}

func (repo assessmentRepository) ListQuizAttempts(ctx context.Context, courseID, studentID string) ([]assessment.QuizAttempt, error) {
	var rows []attemptRow
	q, args := byStudent(`
		SELECT id, student_id, quiz_id, course_id, percentage, attempted_at
		FROM quiz_attempts
		WHERE course_id = ?`, "attempted_at, seq", courseID, studentID)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting quiz attempts")
	}
	list := make([]assessment.QuizAttempt, 0, len(rows))
	for _, row := range rows {
		list = append(list, assessment.QuizAttempt{
			ID:          row.ID,
			StudentID:   row.StudentID,
			QuizID:      row.QuizID,
			CourseID:    row.CourseID,
			Percentage:  row.Percentage,
			AttemptedAt: row.AttemptedAt.UTC(),
		})
	}
	return list, nil
}
