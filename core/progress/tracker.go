package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound = errors.New("completion record not found")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type Repository interface {
	GetRecord(ctx context.Context, p Partition, contentItemID string) (Record, error)
	// UpsertRecord inserts the record or merges it into the existing one (see Record.Merge).
	UpsertRecord(ctx context.Context, rec Record) (Record, error)
	ListRecords(ctx context.Context, p Partition) ([]Record, error)
	// ListOwners returns the ids of every owner with at least one record in the course.
	ListOwners(ctx context.Context, kind Kind, courseID string) ([]string, error)
}

// Tracker records which content items an owner of a given Kind has completed.
type Tracker struct {
	repo Repository
	kind Kind
}

func NewTracker(repo Repository, kind Kind) *Tracker {
	return &Tracker{repo: repo, kind: kind}
}

func (t *Tracker) Kind() Kind { return t.kind }

func (t *Tracker) partition(ownerID, courseID string) Partition {
	return Partition{Kind: t.kind, OwnerID: ownerID, CourseID: courseID}
}

func (t *Tracker) IsComplete(ctx context.Context, ownerID, courseID, contentItemID string) (bool, error) {
	rec, err := t.repo.GetRecord(ctx, t.partition(ownerID, courseID), contentItemID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "getting completion record")
	}
	return rec.Completed, nil
}

// MarkComplete is idempotent: re-marking refreshes CompletedAt and, when given, WatchPercentage.
func (t *Tracker) MarkComplete(
	ctx context.Context,
	ownerID, courseID, contentItemID string,
	watchPercentage null.Float64,
) (Record, error) {
	rec := Record{
		Kind:            t.kind,
		OwnerID:         ownerID,
		CourseID:        courseID,
		ContentItemID:   contentItemID,
		Completed:       true,
		CompletedAt:     nowFunc(),
		WatchPercentage: watchPercentage,
	}
	saved, err := t.repo.UpsertRecord(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "upserting completion record")
	}
	return saved, nil
}

func (t *Tracker) CompletedSet(ctx context.Context, ownerID, courseID string) (Set, error) {
	recs, err := t.Records(ctx, ownerID, courseID)
	if err != nil {
		return nil, err
	}
	set := make(Set, len(recs))
	for _, rec := range recs {
		if rec.Completed {
			set[rec.ContentItemID] = struct{}{}
		}
	}
	return set, nil
}

func (t *Tracker) Records(ctx context.Context, ownerID, courseID string) ([]Record, error) {
	recs, err := t.repo.ListRecords(ctx, t.partition(ownerID, courseID))
	if err != nil {
		return nil, errors.Wrap(err, "listing completion records")
	}
	return recs, nil
}

func (t *Tracker) Owners(ctx context.Context, courseID string) ([]string, error) {
	owners, err := t.repo.ListOwners(ctx, t.kind, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "listing owners")
	}
	return owners, nil
}
