package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	m := NewMemory().WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "liturgical_cal_2024-06-09_loc_2015_nvi", []byte(`{"a":1}`), time.Hour))

	got, ok, err := m.Get(ctx, "liturgical_cal_2024-06-09_loc_2015_nvi")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	now = now.Add(59 * time.Minute)
	_, ok, _ = m.Get(ctx, "liturgical_cal_2024-06-09_loc_2015_nvi")
	assert.True(t, ok, "entry should still be fresh before the TTL")

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "liturgical_cal_2024-06-09_loc_2015_nvi")
	assert.False(t, ok, "entry should expire exactly at the TTL")

	n, err := m.DeleteByPrefix(ctx, "liturgical_")
	require.NoError(t, err)
	assert.Zero(t, n, "expired entry should be dropped on read")
}

func TestMemory_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'z'

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "liturgical_cal_x", []byte("1"), time.Hour))
	require.NoError(t, m.Set(ctx, "liturgical_prayer_books", []byte("2"), time.Hour))
	require.NoError(t, m.Set(ctx, "other_key", []byte("3"), time.Hour))

	n, err := m.DeleteByPrefix(ctx, "liturgical_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := m.Get(ctx, "other_key")
	assert.True(t, ok)
	_, ok, _ = m.Get(ctx, "liturgical_cal_x")
	assert.False(t, ok)
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), srv
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedis(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "liturgical_bible_versions", []byte(`[1]`), 24*time.Hour))
	got, ok, err := store.Get(ctx, "liturgical_bible_versions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1]`, string(got))
	assert.Equal(t, 24*time.Hour, srv.TTL("liturgical_bible_versions"))

	srv.FastForward(24 * time.Hour)
	_, ok, err = store.Get(ctx, "liturgical_bible_versions")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedis(t)

	for _, key := range []string{"liturgical_cal_a", "liturgical_cal_b", "liturgical_prayer_books", "unrelated"} {
		require.NoError(t, store.Set(ctx, key, []byte("v"), time.Hour))
	}

	n, err := store.DeleteByPrefix(ctx, "liturgical_")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"unrelated"}, srv.Keys())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
