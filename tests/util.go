package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
	"github.com/trezcool/masomo-courseware/core/progress"
	appfs "github.com/trezcool/masomo-courseware/fs"
	emailsvc "github.com/trezcool/masomo-courseware/services/email"
	logsvc "github.com/trezcool/masomo-courseware/services/logger"
	"github.com/trezcool/masomo-courseware/storage/database"
	inmemdb "github.com/trezcool/masomo-courseware/storage/database/inmem"
)

// Fixture ids
const (
	CourseID     = "intro-go"
	AssignmentID = "hw1"
	QuizID       = "final"
	StudentID    = "amani"
	StudentEmail = "amani@example.com"
	OtherStudent = "baraka"
	OfficerID    = "officer-1"
)

// Content ids of CourseFixture, in course order.
var ContentIDs = []string{"welcome", "syntax", "types", "final-ref"}

var T0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.RegisterValidators(validate, translator)
	assessment.RegisterValidators(validate, translator)
	return validate, translator
}

// CourseFixture is a two-module course with one assignment and one quiz (pass: 60%, 2 attempts).
//
//	m1 (order 1)
//	  s1: welcome (video), syntax (document)
//	m2 (order 2)
//	  s2: types (link), final-ref (quiz-ref)
func CourseFixture() learning.Catalog {
	return learning.Catalog{
		Courses: []course.NewCourse{{
			ID:               CourseID,
			InstitutionID:    "masomo-u",
			Title:            "Introduction to Go",
			LearningOutcomes: []string{"write go programs"},
			Duration:         "4 weeks",
			Modules: []course.NewModule{
				{
					ID: "m1", Title: "Basics", Order: 1,
					Sessions: []course.NewSession{{
						ID: "s1", Title: "Getting started", Order: 1,
						Contents: []course.NewContentItem{
							{ID: "welcome", Title: "Welcome", Order: 1, Type: course.ContentVideo, URL: "https://videos.example.com/welcome"},
							{ID: "syntax", Title: "Syntax", Order: 2, Type: course.ContentDocument},
						},
					}},
				},
				{
					ID: "m2", Title: "Types", Order: 2,
					Sessions: []course.NewSession{{
						ID: "s2", Title: "The type system", Order: 1,
						Contents: []course.NewContentItem{
							{ID: "types", Title: "Types", Order: 1, Type: course.ContentLink, URL: "https://go.dev/ref/spec"},
							{ID: "final-ref", Title: "Final quiz", Order: 2, Type: course.ContentQuizRef, QuizID: QuizID},
						},
					}},
				},
			},
		}},
		Assignments: []assessment.NewAssignment{
			{ID: AssignmentID, CourseID: CourseID, Title: "Homework 1", TotalPoints: 20},
		},
		Quizzes: []assessment.NewQuiz{
			{ID: QuizID, CourseID: CourseID, Title: "Final", PassPercentage: 60, AttemptsAllowed: 2},
		},
		Learners: []learning.NewLearner{
			{ID: StudentID, InstitutionID: "masomo-u", Name: "Amani Juma", Email: StudentEmail},
			{ID: OtherStudent, InstitutionID: "masomo-u", Name: "Baraka Ali"},
		},
	}
}

// SingleItemCourse is a course with one module, one session and the video contentID.
func SingleItemCourse(courseID, contentID string) learning.Catalog {
	return learning.Catalog{
		Courses: []course.NewCourse{{
			ID: courseID, InstitutionID: "masomo-u", Title: courseID,
			Modules: []course.NewModule{{
				ID: courseID + "_m1", Title: "Only module", Order: 1,
				Sessions: []course.NewSession{{
					ID: courseID + "_s1", Title: "Only session", Order: 1,
					Contents: []course.NewContentItem{
						{ID: contentID, Title: "Moved", Order: 1, Type: course.ContentVideo, URL: "https://videos.example.com/" + contentID},
					},
				}},
			}},
		}},
	}
}

// ImportCatalog validates & imports cat, failing the test on error.
func ImportCatalog(t *testing.T, svc *learning.Service, validate *validator.Validate, cat learning.Catalog) learning.ImportReport {
	t.Helper()
	require.NoError(t, cat.Validate(validate), "catalog.Validate()")
	report, err := svc.ImportCatalog(context.Background(), cat)
	require.NoError(t, err, "svc.ImportCatalog()")
	return report
}

// Stack is a learning service with test doubles for mail, logs & time.
type Stack struct {
	Conf       *core.Config
	DB         *inmemdb.DB // memory stacks only
	Repos      Repos
	Svc        *learning.Service
	Mail       *emailsvc.ConsoleServiceMock
	Logger     *logsvc.MemoryLogger
	Clock      *Clock
	Validate   *validator.Validate
	Translator ut.Translator
}

// Repos are the storage collaborators of a Stack.
type Repos struct {
	Catalog      course.Repository
	Progress     progress.Repository
	Assessments  assessment.Repository
	Certificates certificate.Repository
	Roster       learning.Roster
}

func MemoryRepos(db *inmemdb.DB) Repos {
	return Repos{
		Catalog:      inmemdb.NewCourseRepository(db),
		Progress:     inmemdb.NewProgressRepository(db),
		Assessments:  inmemdb.NewAssessmentRepository(db),
		Certificates: inmemdb.NewCertificateRepository(db),
		Roster:       inmemdb.NewRosterRepository(db),
	}
}

// NewStack wires a memory backed Stack with CourseFixture imported.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	st := NewEmptyStack(t)
	ImportCatalog(t, st.Svc, st.Validate, CourseFixture())
	return st
}

func NewEmptyStack(t *testing.T) *Stack {
	t.Helper()
	db := inmemdb.Open()
	st := NewStackWith(t, func(core.Logger) Repos { return MemoryRepos(db) })
	st.DB = db
	return st
}

// NewStackWith wires a Stack on the repositories returned by newRepos. Nothing is imported.
func NewStackWith(t *testing.T, newRepos func(logger core.Logger) Repos) *Stack {
	t.Helper()
	conf := core.NewTestConfig()
	logger := logsvc.NewMemoryLogger()
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	repos := newRepos(logger)
	mail := emailsvc.NewConsoleServiceMock(conf, logger)
	clock := NewClock(T0)
	validate, translator := NewValidator()

	svc := learning.NewServiceMock(learning.Deps{
		Catalog:      repos.Catalog,
		Progress:     repos.Progress,
		Assessments:  repos.Assessments,
		Certificates: repos.Certificates,
		Roster:       repos.Roster,
		MailSvc:      mail,
		Logger:       logger,
		Conf:         conf,
	}, clock.Now)

	return &Stack{
		Conf:       conf,
		Repos:      repos,
		Svc:        svc,
		Mail:       mail,
		Logger:     logger,
		Clock:      clock,
		Validate:   validate,
		Translator: translator,
	}
}

// PrepareSQLite returns a migrated, private in-memory SQLite database.
func PrepareSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err, "database.OpenSQLite()")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db), "database.Migrate()")
	return db
}
