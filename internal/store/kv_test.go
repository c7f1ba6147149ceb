package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisKV(client), mr
}

func TestRedisKV_SetGet(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "signal:summary:a:b", `{"x":1}`, time.Minute))

	val, err := kv.Get(ctx, "signal:summary:a:b")
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, val)
}

func TestRedisKV_GetMiss(t *testing.T) {
	kv, _ := newTestKV(t)

	_, err := kv.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_DeleteByPattern(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "signal:summary:a:b", "1", 0))
	require.NoError(t, kv.Set(ctx, "signal:summary:c:d", "2", 0))
	require.NoError(t, kv.Set(ctx, "other:key", "3", 0))

	require.NoError(t, kv.DeleteByPattern(ctx, "signal:*"))

	require.False(t, mr.Exists("signal:summary:a:b"))
	require.False(t, mr.Exists("signal:summary:c:d"))
	require.True(t, mr.Exists("other:key"))
}

func TestRedisKV_TTLApplied(t *testing.T) {
	kv, mr := newTestKV(t)

	require.NoError(t, kv.Set(context.Background(), "k", "v", 5*time.Minute))
	mr.FastForward(6 * time.Minute)

	_, err := kv.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrMiss)
}
