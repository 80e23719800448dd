package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/certificate"
)

type certificateRepository struct {
	client *redis.Client
	keys   keyspace
	logger core.Logger
}

var _ certificate.Repository = (*certificateRepository)(nil)

func NewCertificateRepository(client *redis.Client, keyPrefix string, logger core.Logger) certificate.Repository {
	return &certificateRepository{client: client, keys: keyspace{prefix: keyPrefix}, logger: logger}
}

func (repo certificateRepository) certKey(studentID, courseID string) string {
	return repo.keys.key("certificate", studentID, courseID)
}

func (repo certificateRepository) indexKey(studentID string) string {
	return repo.keys.key("certificates", studentID)
}

func (repo certificateRepository) decode(key, raw string) (certificate.Certificate, bool) {
	var cert certificate.Certificate
	if err := json.Unmarshal([]byte(raw), &cert); err != nil {
		repo.logger.Warn(fmt.Sprintf("redis: malformed certificate %s", key), errors.Wrap(err, "decoding certificate"))
		return certificate.Certificate{}, false
	}
	return cert, true
}

func (repo certificateRepository) GetCertificate(ctx context.Context, studentID, courseID string) (certificate.Certificate, error) {
	key := repo.certKey(studentID, courseID)
	raw, err := repo.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return certificate.Certificate{}, certificate.ErrNotFound
		}
		return certificate.Certificate{}, errors.Wrap(err, "getting certificate")
	}
	cert, ok := repo.decode(key, raw)
	if !ok {
		return certificate.Certificate{}, certificate.ErrNotFound
	}
	return cert, nil
}

// InsertCertificate keeps the first decodable certificate of a (student, course).
// A malformed stored value is replaced.
func (repo certificateRepository) InsertCertificate(ctx context.Context, cert certificate.Certificate) (certificate.Certificate, bool, error) {
	cert.IssuedAt = cert.IssuedAt.UTC()
	value, err := json.Marshal(cert)
	if err != nil {
		return certificate.Certificate{}, false, errors.Wrap(err, "encoding certificate")
	}

	key := repo.certKey(cert.StudentID, cert.CourseID)
	var (
		stored  certificate.Certificate
		created bool
	)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			if existing, ok := repo.decode(key, raw); ok {
				stored, created = existing, false
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			pipe.SAdd(ctx, repo.indexKey(cert.StudentID), cert.CourseID)
			return nil
		})
		if err == nil {
			stored, created = cert, true
		}
		return err
	}

	for i := 0; i < maxUpsertRetries; i++ {
		err = repo.client.Watch(ctx, txf, key)
		if err == nil {
			return stored, created, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return certificate.Certificate{}, false, errors.Wrap(err, "inserting certificate")
	}
	return certificate.Certificate{}, false, errors.New("inserting certificate: too many concurrent updates")
}

func (repo certificateRepository) ListByStudent(ctx context.Context, studentID string) ([]certificate.Certificate, error) {
	courseIDs, err := repo.client.SMembers(ctx, repo.indexKey(studentID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing certificates")
	}
	certs := make([]certificate.Certificate, 0, len(courseIDs))
	if len(courseIDs) == 0 {
		return certs, nil
	}

	keys := make([]string, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		keys = append(keys, repo.certKey(studentID, courseID))
	}
	values, err := repo.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "getting certificates")
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if cert, ok := repo.decode(keys[i], raw); ok {
			certs = append(certs, cert)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].CourseID < certs[j].CourseID })
	return certs, nil
}
