package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-courseware/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetRecord(_ context.Context, p progress.Partition, contentItemID string) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rec, ok := repo.db.table[progressKey{p.Kind, p.OwnerID, p.CourseID, contentItemID}]
	if !ok {
		return progress.Record{}, progress.ErrNotFound
	}
	return rec, nil
}

func (repo *progressRepository) UpsertRecord(_ context.Context, rec progress.Record) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := progressKey{rec.Kind, rec.OwnerID, rec.CourseID, rec.ContentItemID}
	if existing, ok := repo.db.table[key]; ok {
		rec = existing.Merge(rec)
	}
	repo.db.table[key] = rec
	return rec, nil
}

func (repo *progressRepository) ListRecords(_ context.Context, p progress.Partition) ([]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]progress.Record, 0)
	for _, rec := range repo.db.table {
		if rec.Partition() == p {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ContentItemID < recs[j].ContentItemID })
	return recs, nil
}

func (repo *progressRepository) ListOwners(_ context.Context, kind progress.Kind, courseID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	owners := make([]string, 0)
	for _, rec := range repo.db.table {
		if rec.Kind == kind && rec.CourseID == courseID && !seen[rec.OwnerID] {
			seen[rec.OwnerID] = true
			owners = append(owners, rec.OwnerID)
		}
	}
	sort.Strings(owners)
	return owners, nil
}
