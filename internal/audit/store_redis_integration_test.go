//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisStore_AgainstRealRedis(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, "lambda-state-events", "us-east-1")
	r := NewRecord("ev-it", time.Now(), EventTypeInvoke, testInvocation(), map[string]string{"path": "/x"})
	require.NoError(t, store.Put(ctx, r, r.ExpiresAt))

	ttl, err := rdb.TTL(ctx, store.Key("ev-it")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, RecordTTL-time.Minute)
	assert.LessOrEqual(t, ttl, RecordTTL)
}
