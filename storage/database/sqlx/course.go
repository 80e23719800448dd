package sqlxrepos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/course"
)

type (
	courseRow struct {
		ID               string `db:"id"`
		InstitutionID    string `db:"institution_id"`
		Title            string `db:"title"`
		LearningOutcomes string `db:"learning_outcomes"` // JSON array
		Duration         string `db:"duration"`
		IssuerName       string `db:"issuer_name"`
	}

	moduleRow struct {
		ID       string `db:"id"`
		CourseID string `db:"course_id"`
		Title    string `db:"title"`
		Position int    `db:"position"`
	}

	sessionRow struct {
		ID       string `db:"id"`
		ModuleID string `db:"module_id"`
		Title    string `db:"title"`
		Position int    `db:"position"`
	}

	contentRow struct {
		ID          string `db:"id"`
		SessionID   string `db:"session_id"`
		ModuleID    string `db:"module_id"`
		CourseID    string `db:"course_id"`
		Title       string `db:"title"`
		Position    int    `db:"position"`
		ContentType string `db:"content_type"`
		URL         string `db:"url"`
		QuizID      string `db:"quiz_id"`
	}
)

type courseRepository struct {
	base
	logger core.Logger
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db core.DB, logger core.Logger) course.Repository {
	return &courseRepository{base: base{db: db}, logger: logger}
}

func (repo courseRepository) toCourse(row courseRow) course.Course {
	c := course.Course{
		ID:               row.ID,
		InstitutionID:    row.InstitutionID,
		Title:            row.Title,
		LearningOutcomes: []string{},
		Duration:         row.Duration,
		IssuerName:       row.IssuerName,
	}
	if row.LearningOutcomes != "" {
		if err := json.Unmarshal([]byte(row.LearningOutcomes), &c.LearningOutcomes); err != nil {
			repo.logger.Warn(fmt.Sprintf("course %q: malformed learning outcomes", row.ID), errors.Wrap(err, "decoding learning outcomes"))
			c.LearningOutcomes = []string{}
		}
	}
	return c
}

const selectCourse = `SELECT id, institution_id, title, learning_outcomes, duration, issuer_name FROM courses`

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.get(ctx, &row, selectCourse+` WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return repo.toCourse(row), nil
}

func (repo courseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.selekt(ctx, &rows, selectCourse+` ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.toCourse(row))
	}
	return courses, nil
}

func (repo courseRepository) ListModules(ctx context.Context, courseID string) ([]course.Module, error) {
	var rows []moduleRow
	q := `SELECT id, course_id, title, position FROM modules WHERE course_id = ? ORDER BY position, id`
	if err := repo.selekt(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	modules := make([]course.Module, 0, len(rows))
	for _, row := range rows {
		modules = append(modules, course.Module{ID: row.ID, CourseID: row.CourseID, Title: row.Title, Order: row.Position})
	}
	return modules, nil
}

func (repo courseRepository) ListSessions(ctx context.Context, courseID string) ([]course.Session, error) {
	var rows []sessionRow
	q := `
		SELECT s.id, s.module_id, s.title, s.position
		FROM sessions s
		JOIN modules m ON m.id = s.module_id
		WHERE m.course_id = ?
		ORDER BY s.position, s.id`
	if err := repo.selekt(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	sessions := make([]course.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, course.Session{ID: row.ID, ModuleID: row.ModuleID, Title: row.Title, Order: row.Position})
	}
	return sessions, nil
}

func (repo courseRepository) ListContentItems(ctx context.Context, courseID string) ([]course.ContentItem, error) {
	var rows []contentRow
	q := `
		SELECT id, session_id, module_id, course_id, title, position, content_type, url, quiz_id
		FROM content_items
		WHERE course_id = ?
		ORDER BY position, id`
	if err := repo.selekt(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting content items")
	}
	items := make([]course.ContentItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, course.ContentItem{
			ID:        row.ID,
			SessionID: row.SessionID,
			ModuleID:  row.ModuleID,
			CourseID:  row.CourseID,
			Title:     row.Title,
			Order:     row.Position,
			Type:      course.ContentType(row.ContentType),
			URL:       row.URL,
			QuizID:    row.QuizID,
		})
	}
	return items, nil
}

func (repo courseRepository) SaveTree(ctx context.Context, tree course.Tree) error {
	outcomes := tree.Course.LearningOutcomes
	if outcomes == nil {
		outcomes = []string{}
	}
	lo, err := json.Marshal(outcomes)
	if err != nil {
		return errors.Wrap(err, "encoding learning outcomes")
	}

	return repo.inTx(ctx, func(tx core.DBExecutor) error {
		c := tree.Course
		_, err := repo.exec(ctx, tx, `
			INSERT INTO courses (id, institution_id, title, learning_outcomes, duration, issuer_name)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				institution_id = EXCLUDED.institution_id,
				title = EXCLUDED.title,
				learning_outcomes = EXCLUDED.learning_outcomes,
				duration = EXCLUDED.duration,
				issuer_name = EXCLUDED.issuer_name`,
			c.ID, c.InstitutionID, c.Title, string(lo), c.Duration, c.IssuerName,
		)
		if err != nil {
			return errors.Wrap(err, "upserting course")
		}

		for _, m := range tree.Modules {
			_, err = repo.exec(ctx, tx, `
				INSERT INTO modules (id, course_id, title, position) VALUES (?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					course_id = EXCLUDED.course_id, title = EXCLUDED.title, position = EXCLUDED.position`,
				m.ID, m.CourseID, m.Title, m.Order,
			)
			if err != nil {
				return errors.Wrapf(err, "upserting module %q", m.ID)
			}
		}

		for _, s := range tree.Sessions {
			_, err = repo.exec(ctx, tx, `
				INSERT INTO sessions (id, module_id, title, position) VALUES (?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					module_id = EXCLUDED.module_id, title = EXCLUDED.title, position = EXCLUDED.position`,
				s.ID, s.ModuleID, s.Title, s.Order,
			)
			if err != nil {
				return errors.Wrapf(err, "upserting session %q", s.ID)
			}
		}

		for _, item := range tree.Contents {
			_, err = repo.exec(ctx, tx, `
				INSERT INTO content_items (id, session_id, module_id, course_id, title, position, content_type, url, quiz_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					session_id = EXCLUDED.session_id,
					module_id = EXCLUDED.module_id,
					course_id = EXCLUDED.course_id,
					title = EXCLUDED.title,
					position = EXCLUDED.position,
					content_type = EXCLUDED.content_type,
					url = EXCLUDED.url,
					quiz_id = EXCLUDED.quiz_id`,
				item.ID, item.SessionID, item.ModuleID, item.CourseID, item.Title, item.Order,
				string(item.Type), item.URL, item.QuizID,
			)
			if err != nil {
				return errors.Wrapf(err, "upserting content item %q", item.ID)
			}
		}
		return nil
	})
}
