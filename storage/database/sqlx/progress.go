package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/progress"
)

type recordRow struct {
	Kind            string       `db:"kind"`
	OwnerID         string       `db:"owner_id"`
	CourseID        string       `db:"course_id"`
	ContentItemID   string       `db:"content_item_id"`
	Completed       bool         `db:"completed"`
	CompletedAt     time.Time    `db:"completed_at"`
	WatchPercentage null.Float64 `db:"watch_percentage"`
}

func (row recordRow) record() progress.Record {
	return progress.Record{
		Kind:            progress.Kind(row.Kind),
		OwnerID:         row.OwnerID,
		CourseID:        row.CourseID,
		ContentItemID:   row.ContentItemID,
		Completed:       row.Completed,
		CompletedAt:     row.CompletedAt.UTC(),
		WatchPercentage: row.WatchPercentage,
	}
}

type progressRepository struct {
	base
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db core.DB) progress.Repository {
	return &progressRepository{base: base{db: db}}
}

const selectRecord = `
	SELECT kind, owner_id, course_id, content_item_id, completed, completed_at, watch_percentage
	FROM content_completions`

func (repo progressRepository) GetRecord(ctx context.Context, p progress.Partition, contentItemID string) (progress.Record, error) {
	var row recordRow
	q := selectRecord + ` WHERE kind = ? AND owner_id = ? AND course_id = ? AND content_item_id = ?`
	if err := repo.get(ctx, &row, q, string(p.Kind), p.OwnerID, p.CourseID, contentItemID); err != nil {
		if isNoRows(err) {
			return progress.Record{}, progress.ErrNotFound
		}
		return progress.Record{}, errors.Wrap(err, "selecting completion record")
	}
	return row.record(), nil
}

// UpsertRecord never flips completed back to false and keeps the stored watch percentage when none is given.
func (repo progressRepository) UpsertRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	_, err := repo.exec(ctx, repo.db, `
		INSERT INTO content_completions
			(kind, owner_id, course_id, content_item_id, completed, completed_at, watch_percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, owner_id, course_id, content_item_id) DO UPDATE SET
			completed = content_completions.completed OR EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			watch_percentage = COALESCE(EXCLUDED.watch_percentage, content_completions.watch_percentage)`,
		string(rec.Kind), rec.OwnerID, rec.CourseID, rec.ContentItemID,
		rec.Completed, rec.CompletedAt.UTC(), rec.WatchPercentage,
	)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "upserting completion record")
	}
	return repo.GetRecord(ctx, rec.Partition(), rec.ContentItemID)
}

func (repo progressRepository) ListRecords(ctx context.Context, p progress.Partition) ([]progress.Record, error) {
	var rows []recordRow
	q := selectRecord + ` WHERE kind = ? AND owner_id = ? AND course_id = ? ORDER BY completed_at, content_item_id`
	if err := repo.selekt(ctx, &rows, q, string(p.Kind), p.OwnerID, p.CourseID); err != nil {
		return nil, errors.Wrap(err, "selecting completion records")
	}
	recs := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}

func (repo progressRepository) ListOwners(ctx context.Context, kind progress.Kind, courseID string) ([]string, error) {
	owners := make([]string, 0)
	q := `SELECT DISTINCT owner_id FROM content_completions WHERE kind = ? AND course_id = ? ORDER BY owner_id`
	if err := repo.selekt(ctx, &owners, q, string(kind), courseID); err != nil {
		return nil, errors.Wrap(err, "selecting owners")
	}
	return owners, nil
}
