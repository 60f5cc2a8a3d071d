package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type profile struct {
	Name string `json:"name"`
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	helper := NewCacheHelper(client, "user:")

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return profile{Name: "Ada"}, nil
	}

	var first profile
	require.NoError(t, helper.CacheOrExecute(ctx, "id:1", &first, time.Minute, fetch))
	assert.Equal(t, "Ada", first.Name)
	assert.True(t, mr.Exists("user:id:1"))

	var second profile
	require.NoError(t, helper.CacheOrExecute(ctx, "id:1", &second, time.Minute, fetch))
	assert.Equal(t, "Ada", second.Name)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	require.NoError(t, helper.CacheOrExecute(ctx, "id:1", &second, time.Minute, fetch))
	assert.Equal(t, 2, calls)
}

func TestCacheHelper_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	helper := NewCacheHelper(client, "user:")

	boom := errors.New("boom")
	var dest profile
	err := helper.CacheOrExecute(ctx, "id:2", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:id:2"))
}

func TestCacheHelper_StoreFailureStillReturnsValue(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	helper := NewCacheHelper(client, "user:")
	mr.Close()

	var dest profile
	require.NoError(t, helper.CacheOrExecute(ctx, "id:3", &dest, time.Minute, func() (interface{}, error) {
		return profile{Name: "Grace"}, nil
	}))
	assert.Equal(t, "Grace", dest.Name)
}

func TestCacheHelper_NilClientDegrades(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "user:")

	var dest profile
	assert.ErrorIs(t, helper.Get(ctx, "x", &dest), ErrCacheNotAvailable)
	assert.NoError(t, helper.Set(ctx, "x", profile{}, time.Minute))
	assert.NoError(t, helper.Delete(ctx, "x"))
	require.NoError(t, helper.CacheOrExecute(ctx, "x", &dest, time.Minute, func() (interface{}, error) {
		return profile{Name: "Bob"}, nil
	}))
	assert.Equal(t, "Bob", dest.Name)
}

func TestCacheManager_InvalidateColleges(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	cm := NewCacheManager(client)

	require.NoError(t, cm.College.Set(ctx, "list:verified", []string{"a"}, time.Minute))
	require.NoError(t, cm.College.Set(ctx, "list:all", []string{"a"}, time.Minute))
	require.NoError(t, cm.Stats.Set(ctx, "platform", 1, time.Minute))

	cm.InvalidateColleges(ctx)

	assert.False(t, mr.Exists("college:list:verified"))
	assert.False(t, mr.Exists("college:list:all"))
	assert.False(t, mr.Exists("stats:platform"))
	assert.NoError(t, cm.HealthCheck(ctx))
}

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewSessionStore(client)

	require.NoError(t, store.Create(ctx, "sid", Session{UserID: "u1", Role: "student"}, time.Hour))
	assert.True(t, mr.Exists("session:sid"))

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, store.Delete(ctx, "sid"))
	require.NoError(t, store.Delete(ctx, "sid"))

	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewSessionStore(client)

	require.NoError(t, store.Create(ctx, "sid", Session{UserID: "u1"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}
