package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/progress"
)

const maxUpsertRetries = 10

type progressRepository struct {
	client *redis.Client
	keys   keyspace
	logger core.Logger
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(client *redis.Client, keyPrefix string, logger core.Logger) progress.Repository {
	return &progressRepository{client: client, keys: keyspace{prefix: keyPrefix}, logger: logger}
}

func (repo progressRepository) partitionKey(p progress.Partition) string {
	return repo.keys.key("progress", string(p.Kind), p.OwnerID, p.CourseID)
}

func (repo progressRepository) ownersKey(kind progress.Kind, courseID string) string {
	return repo.keys.key("progress-owners", string(kind), courseID)
}

// decode treats a corrupt value as absent.
func (repo progressRepository) decode(key, field, raw string) (progress.Record, bool) {
	var rec progress.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		repo.logger.Warn(fmt.Sprintf("redis: malformed completion record %s[%s]", key, field), errors.Wrap(err, "decoding completion record"))
		return progress.Record{}, false
	}
	return rec, true
}

func (repo progressRepository) GetRecord(ctx context.Context, p progress.Partition, contentItemID string) (progress.Record, error) {
	key := repo.partitionKey(p)
	raw, err := repo.client.HGet(ctx, key, contentItemID).Result()
	if err != nil {
		if err == redis.Nil {
			return progress.Record{}, progress.ErrNotFound
		}
		return progress.Record{}, errors.Wrap(err, "getting completion record")
	}
	rec, ok := repo.decode(key, contentItemID, raw)
	if !ok {
		return progress.Record{}, progress.ErrNotFound
	}
	return rec, nil
}

// UpsertRecord merges optimistically: the write is retried when the partition changed in between.
func (repo progressRepository) UpsertRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	key := repo.partitionKey(rec.Partition())
	rec.CompletedAt = rec.CompletedAt.UTC()

	var merged progress.Record
	txf := func(tx *redis.Tx) error {
		merged = rec
		raw, err := tx.HGet(ctx, key, rec.ContentItemID).Result()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			if existing, ok := repo.decode(key, rec.ContentItemID, raw); ok {
				merged = existing.Merge(rec)
			}
		}

		value, err := json.Marshal(merged)
		if err != nil {
			return errors.Wrap(err, "encoding completion record")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, rec.ContentItemID, value)
			pipe.SAdd(ctx, repo.ownersKey(rec.Kind, rec.CourseID), rec.OwnerID)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpsertRetries; i++ {
		err := repo.client.Watch(ctx, txf, key)
		if err == nil {
			return merged, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return progress.Record{}, errors.Wrap(err, "upserting completion record")
	}
	return progress.Record{}, errors.New("upserting completion record: too many concurrent updates")
}

func (repo progressRepository) ListRecords(ctx context.Context, p progress.Partition) ([]progress.Record, error) {
	key := repo.partitionKey(p)
	values, err := repo.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing completion records")
	}
	recs := make([]progress.Record, 0, len(values))
	for field, raw := range values {
		if rec, ok := repo.decode(key, field, raw); ok {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ContentItemID < recs[j].ContentItemID })
	return recs, nil
}

func (repo progressRepository) ListOwners(ctx context.Context, kind progress.Kind, courseID string) ([]string, error) {
	owners, err := repo.client.SMembers(ctx, repo.ownersKey(kind, courseID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing owners")
	}
	sort.Strings(owners)
	return owners, nil
}
