// Package redisstore keeps completion records and certificates in Redis.
//
// Keys:
//
//	<prefix>:progress:<kind>:<owner>:<course>   hash {contentItemID: record JSON}
//	<prefix>:progress-owners:<kind>:<course>    set of owner ids
//	<prefix>:certificate:<student>:<course>     certificate JSON, written with SETNX
//	<prefix>:certificates:<student>             set of course ids
package redisstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-courseware/core"
)

// Open connects to Redis and checks the connection.
func Open(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

type keyspace struct {
	prefix string
}

func (ks keyspace) key(parts ...string) string {
	if ks.prefix == "" {
		return strings.Join(parts, ":")
	}
	return ks.prefix + ":" + strings.Join(parts, ":")
}
