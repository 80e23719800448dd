package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/progress"
	logsvc "github.com/trezcool/masomo-courseware/services/logger"
	sqlxrepos "github.com/trezcool/masomo-courseware/storage/database/sqlx"
	testutil "github.com/trezcool/masomo-courseware/tests"
)

func sqlRepos(db *sqlx.DB) func(core.Logger) testutil.Repos {
	return func(logger core.Logger) testutil.Repos {
		return testutil.Repos{
			Catalog:      sqlxrepos.NewCourseRepository(db, logger),
			Progress:     sqlxrepos.NewProgressRepository(db),
			Assessments:  sqlxrepos.NewAssessmentRepository(db),
			Certificates: sqlxrepos.NewCertificateRepository(db),
			Roster:       sqlxrepos.NewRosterRepository(db),
		}
	}
}

func TestLearningFlow(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	st := testutil.NewStackWith(t, sqlRepos(db))
	testutil.ImportCatalog(t, st.Svc, st.Validate, testutil.CourseFixture())
	ctx := context.Background()

	ol, err := st.Svc.Outline(ctx, testutil.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 4, ol.Total)
	assert.Equal(t, []string{"write go programs"}, ol.Course.LearningOutcomes)

	_, _, err = st.Svc.RecordSubmission(ctx, testutil.CourseID, testutil.AssignmentID, assessment.NewSubmission{
		StudentID: testutil.StudentID, Status: assessment.StatusSubmitted,
	})
	require.NoError(t, err)
	pct := 75.0
	_, _, err = st.Svc.RecordQuizAttempt(ctx, testutil.CourseID, testutil.QuizID, assessment.NewQuizAttempt{
		StudentID: testutil.StudentID, Percentage: &pct,
	})
	require.NoError(t, err)

	for i, id := range testutil.ContentIDs {
		ev, err := st.Svc.MarkContentComplete(ctx, testutil.CourseID, id, testutil.StudentID, null.Float64From(100))
		require.NoError(t, err)
		assert.Equal(t, 25*(i+1), ev.Progress.Percentage)
	}

	ev, err := st.Svc.Progress(ctx, testutil.CourseID, testutil.StudentID)
	require.NoError(t, err)
	assert.True(t, ev.Completed)
	require.NotNil(t, ev.Certificate)
	assert.True(t, ev.Certificate.IssuedAt.Equal(testutil.T0))

	report, err := st.Svc.Reconcile(ctx, testutil.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Evaluated)
	assert.Equal(t, 0, report.Issued)

	certs, err := st.Svc.Certificates(ctx, testutil.StudentID)
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestProgressRepository_Upsert(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	repo := sqlxrepos.NewProgressRepository(db)
	ctx := context.Background()
	t0 := testutil.T0

	p := progress.Partition{Kind: progress.KindLearner, OwnerID: "s1", CourseID: "c1"}
	_, err := repo.GetRecord(ctx, p, "i1")
	assert.Equal(t, progress.ErrNotFound, err)

	rec := progress.Record{
		Kind: p.Kind, OwnerID: p.OwnerID, CourseID: p.CourseID, ContentItemID: "i1",
		Completed: true, CompletedAt: t0, WatchPercentage: null.Float64From(40),
	}
	saved, err := repo.UpsertRecord(ctx, rec)
	require.NoError(t, err)
	assert.True(t, saved.Completed)
	assert.True(t, saved.CompletedAt.Equal(t0))
	assert.Equal(t, null.Float64From(40), saved.WatchPercentage)

	rec.Completed = false
	rec.CompletedAt = t0.Add(time.Minute)
	rec.WatchPercentage = null.Float64{}
	saved, err = repo.UpsertRecord(ctx, rec)
	require.NoError(t, err)
	assert.True(t, saved.Completed, "completion never reverts")
	assert.Equal(t, null.Float64From(40), saved.WatchPercentage)

	// the officer partition is separate
	_, err = repo.UpsertRecord(ctx, progress.Record{
		Kind: progress.KindOfficer, OwnerID: "s1", CourseID: "c1", ContentItemID: "i1", Completed: true, CompletedAt: t0,
	})
	require.NoError(t, err)

	recs, err := repo.ListRecords(ctx, p)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	owners, err := repo.ListOwners(ctx, progress.KindOfficer, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, owners)

	// the same item in another course is another record
	_, err = repo.UpsertRecord(ctx, progress.Record{
		Kind: p.Kind, OwnerID: p.OwnerID, CourseID: "c2", ContentItemID: "i1", Completed: true, CompletedAt: t0,
	})
	require.NoError(t, err)
	recs, err = repo.ListRecords(ctx, progress.Partition{Kind: p.Kind, OwnerID: p.OwnerID, CourseID: "c2"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c2", recs[0].CourseID)
	recs, err = repo.ListRecords(ctx, p)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestLearningFlow_ContentMovedToAnotherCourse(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	st := testutil.NewStackWith(t, sqlRepos(db))
	testutil.ImportCatalog(t, st.Svc, st.Validate, testutil.CourseFixture())
	ctx := context.Background()

	_, err := st.Svc.MarkContentComplete(ctx, testutil.CourseID, "welcome", testutil.StudentID, null.Float64{})
	require.NoError(t, err)
	testutil.ImportCatalog(t, st.Svc, st.Validate, testutil.SingleItemCourse("c2", "welcome"))

	ev, err := st.Svc.MarkContentComplete(ctx, "c2", "welcome", testutil.StudentID, null.Float64{})
	require.NoError(t, err)
	assert.Equal(t, 100, ev.Progress.Percentage)
	assert.True(t, ev.Completed)
	assert.NotNil(t, ev.Certificate)
}

func TestAssessmentRepository_SubmissionOrder(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	repo := sqlxrepos.NewAssessmentRepository(db)
	ctx := context.Background()

	// equal timestamps keep their recording order
	for _, sub := range []assessment.Submission{
		{ID: "a", StudentID: "s1", AssignmentID: "hw", CourseID: "c1", Status: assessment.StatusSubmitted, CreatedAt: testutil.T0},
		{ID: "b", StudentID: "s1", AssignmentID: "hw", CourseID: "c1", Status: "draft", CreatedAt: testutil.T0},
		{ID: "c", StudentID: "s2", AssignmentID: "hw", CourseID: "c1", Status: assessment.StatusGraded, Grade: null.Float64From(12), CreatedAt: testutil.T0},
	} {
		_, err := repo.CreateSubmission(ctx, sub)
		require.NoError(t, err)
	}

	subs, err := repo.ListSubmissions(ctx, "c1", "s1")
	require.NoError(t, err)
	if assert.Len(t, subs, 2) {
		assert.Equal(t, "a", subs[0].ID)
		assert.Equal(t, "b", subs[1].ID)
	}
	current, ok := assessment.CurrentSubmission("s1", "hw", subs)
	assert.True(t, ok)
	assert.Equal(t, "b", current.ID)
	assert.False(t, assessment.IsAssignmentSatisfied("s1", assessment.Assignment{ID: "hw"}, subs))

	all, err := repo.ListSubmissions(ctx, "c1", "")
	require.NoError(t, err)
	if assert.Len(t, all, 3) {
		assert.Equal(t, null.Float64From(12), all[2].Grade)
	}
}

func TestAssessmentRepository_NotFound(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	repo := sqlxrepos.NewAssessmentRepository(db)
	ctx := context.Background()

	_, err := repo.GetAssignment(ctx, "c1", "nope")
	assert.Equal(t, assessment.ErrAssignmentNotFound, err)
	_, err = repo.GetQuiz(ctx, "c1", "nope")
	assert.Equal(t, assessment.ErrQuizNotFound, err)

	due := testutil.T0.Add(24 * time.Hour)
	require.NoError(t, repo.SaveAssignment(ctx, assessment.Assignment{ID: "hw", CourseID: "c1", Title: "HW", TotalPoints: 10, DueDate: null.TimeFrom(due)}))
	a, err := repo.GetAssignment(ctx, "c1", "hw")
	require.NoError(t, err)
	assert.True(t, a.DueDate.Valid)
	assert.True(t, a.DueDate.Time.Equal(due))

	// assignments are scoped to their course
	_, err = repo.GetAssignment(ctx, "c2", "hw")
	assert.Equal(t, assessment.ErrAssignmentNotFound, err)
}

func TestCertificateRepository_Insert(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	repo := sqlxrepos.NewCertificateRepository(db)
	ctx := context.Background()

	first := certificate.Certificate{ID: "cert-1", StudentID: "s1", CourseID: "c1", CourseTitle: "Intro", IssuedAt: testutil.T0}
	stored, created, err := repo.InsertCertificate(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first, stored)

	second := first
	second.ID = "cert-2"
	second.IssuedAt = testutil.T0.Add(time.Hour)
	stored, created, err = repo.InsertCertificate(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cert-1", stored.ID)

	certs, err := repo.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestCourseRepository_MalformedOutcomes(t *testing.T) {
	db := testutil.PrepareSQLite(t)
	logger := logsvc.NewMemoryLogger()
	repo := sqlxrepos.NewCourseRepository(db, logger)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO courses (id, institution_id, title, learning_outcomes) VALUES ('c1', 'inst', 'Intro', 'not json')`)
	require.NoError(t, err)

	c, err := repo.GetCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, c.LearningOutcomes)
	assert.Len(t, logger.Entries("warn"), 1)
}
