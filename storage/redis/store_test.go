package redisstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/progress"
	logsvc "github.com/trezcool/masomo-courseware/services/logger"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	repo := NewProgressRepository(client, "test", logsvc.NewMemoryLogger())

	p := progress.Partition{Kind: progress.KindLearner, OwnerID: "s1", CourseID: "c1"}
	_, err := repo.GetRecord(ctx, p, "i1")
	assert.Equal(t, progress.ErrNotFound, err)

	rec := progress.Record{
		Kind: p.Kind, OwnerID: p.OwnerID, CourseID: p.CourseID, ContentItemID: "i1",
		Completed: true, CompletedAt: t0, WatchPercentage: null.Float64From(80),
	}
	saved, err := repo.UpsertRecord(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec, saved)

	// re-mark without a watch percentage keeps the previous one
	again := rec
	again.CompletedAt = t0.Add(time.Hour)
	again.WatchPercentage = null.Float64{}
	saved, err = repo.UpsertRecord(ctx, again)
	require.NoError(t, err)
	assert.True(t, saved.Completed)
	assert.Equal(t, 80.0, saved.WatchPercentage.Float64)
	assert.True(t, saved.CompletedAt.Equal(t0.Add(time.Hour)))

	got, err := repo.GetRecord(ctx, p, "i1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = repo.UpsertRecord(ctx, progress.Record{
		Kind: p.Kind, OwnerID: p.OwnerID, CourseID: p.CourseID, ContentItemID: "i0", Completed: true, CompletedAt: t0,
	})
	require.NoError(t, err)
	_, err = repo.UpsertRecord(ctx, progress.Record{
		Kind: p.Kind, OwnerID: "s0", CourseID: p.CourseID, ContentItemID: "i0", Completed: true, CompletedAt: t0,
	})
	require.NoError(t, err)

	recs, err := repo.ListRecords(ctx, p)
	require.NoError(t, err)
	if assert.Len(t, recs, 2) {
		assert.Equal(t, "i0", recs[0].ContentItemID)
		assert.Equal(t, "i1", recs[1].ContentItemID)
	}

	owners, err := repo.ListOwners(ctx, progress.KindLearner, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s0", "s1"}, owners)

	owners, err = repo.ListOwners(ctx, progress.KindOfficer, "c1")
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestProgressRepository_MalformedRecord(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	logger := logsvc.NewMemoryLogger()
	repo := NewProgressRepository(client, "test", logger)

	p := progress.Partition{Kind: progress.KindLearner, OwnerID: "s1", CourseID: "c1"}
	mr.HSet("test:progress:learner:s1:c1", "i1", "{not json")

	_, err := repo.GetRecord(ctx, p, "i1")
	assert.Equal(t, progress.ErrNotFound, err)

	recs, err := repo.ListRecords(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// a fresh mark overwrites the corrupt value
	saved, err := repo.UpsertRecord(ctx, progress.Record{
		Kind: p.Kind, OwnerID: p.OwnerID, CourseID: p.CourseID, ContentItemID: "i1", Completed: true, CompletedAt: t0,
	})
	require.NoError(t, err)
	assert.True(t, saved.Completed)

	assert.NotEmpty(t, logger.Entries("warn"))
}

func TestProgressRepository_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	repo := NewProgressRepository(client, "test", logsvc.NewMemoryLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.UpsertRecord(ctx, progress.Record{
				Kind: progress.KindLearner, OwnerID: "s1", CourseID: "c1", ContentItemID: "i1",
				Completed: true, CompletedAt: t0.Add(time.Duration(i) * time.Minute),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	recs, err := repo.ListRecords(ctx, progress.Partition{Kind: progress.KindLearner, OwnerID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	if assert.Len(t, recs, 1) {
		assert.True(t, recs[0].Completed)
	}
}

func TestCertificateRepository(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	repo := NewCertificateRepository(client, "test", logsvc.NewMemoryLogger())

	_, err := repo.GetCertificate(ctx, "s1", "c1")
	assert.Equal(t, certificate.ErrNotFound, err)

	certs, err := repo.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, certs)

	first := certificate.Certificate{
		ID: "cert-1", StudentID: "s1", StudentName: "Amani", CourseID: "c1", CourseTitle: "Intro",
		IssuerName: "Office", InstitutionID: "inst", IssuedAt: t0,
	}
	stored, created, err := repo.InsertCertificate(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first, stored)

	second := first
	second.ID = "cert-2"
	second.IssuedAt = t0.Add(time.Hour)
	stored, created, err = repo.InsertCertificate(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, stored)

	other := first
	other.ID = "cert-3"
	other.CourseID = "c0"
	_, created, err = repo.InsertCertificate(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)

	certs, err = repo.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	if assert.Len(t, certs, 2) {
		assert.Equal(t, "c0", certs[0].CourseID)
		assert.Equal(t, "cert-1", certs[1].ID)
	}
}

func TestCertificateRepository_MalformedCertificate(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	logger := logsvc.NewMemoryLogger()
	repo := NewCertificateRepository(client, "test", logger)
	issuer := certificate.NewIssuer(repo, "Masomo")

	mr.Set("test:certificate:s1:c1", "{not json")

	_, err := repo.GetCertificate(ctx, "s1", "c1")
	assert.Equal(t, certificate.ErrNotFound, err)

	// the corrupt value is replaced by the first issuance, kept by the next one
	req := certificate.Request{StudentID: "s1", Course: course.Course{ID: "c1", Title: "C1"}, Now: t0}
	first, created, err := issuer.IssueIfNeeded(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)

	req.Now = t0.Add(time.Hour)
	again, created, err := issuer.IssueIfNeeded(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IssuedAt.Equal(t0))

	certs, err := repo.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, certs, 1)
	assert.NotEmpty(t, logger.Entries("warn"))
}

func TestCertificateRepository_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	repo := NewCertificateRepository(client, "test", logsvc.NewMemoryLogger())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.InsertCertificate(ctx, certificate.Certificate{
				ID: "x", StudentID: "s1", CourseID: "c1", IssuedAt: t0,
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}
