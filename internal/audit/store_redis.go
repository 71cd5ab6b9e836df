package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record as a JSON value under <table>:<region>:<id>.
// Expiry is delegated to Redis, which removes the key at the record's ttl.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisStore(rdb redis.Cmdable, table, region string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: table + ":" + region + ":", now: time.Now}
}

// Key returns the redis key of a record id.
func (s *RedisStore) Key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Put(ctx context.Context, r Record, ttlEpochSeconds int64) error {
	if s == nil || s.rdb == nil {
		return ErrNilStore
	}
	if r.ID == "" {
		return ErrInvalidRecord
	}

	expireIn := time.Unix(ttlEpochSeconds, 0).Sub(s.now())
	if expireIn <= 0 {
		// Already past its lifetime; a write would only be deleted again.
		return nil
	}

	payload, err := json.Marshal(r.Item())
	if err != nil {
		return fmt.Errorf("audit: marshal %s: %w", r.ID, err)
	}

	// NX keeps the first write for an id; a replay is a no-op.
	if err := s.rdb.SetNX(ctx, s.Key(r.ID), payload, expireIn).Err(); err != nil {
		return fmt.Errorf("audit: redis put %s: %w", r.ID, err)
	}
	return nil
}
