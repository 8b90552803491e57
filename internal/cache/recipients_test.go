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

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

type fakeUsers struct {
	repository.UserRepository
	users map[string]*model.User
	calls int
	err   error
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newFakeUsers() *fakeUsers {
	prefs := model.DefaultNotificationPreferences()
	return &fakeUsers{users: map[string]*model.User{
		"u1": {ID: "u1", Role: model.RoleUser, Preferences: &prefs},
		"u2": {ID: "u2", Role: model.RoleAdmin},
	}}
}

func newRedisBackend(t *testing.T) (Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBackend(client), mr
}

func TestRecipientCacheBackends(t *testing.T) {
	redisBackend, _ := newRedisBackend(t)
	backends := map[string]Backend{
		"redis":  redisBackend,
		"memory": NewMemoryBackend(time.Minute, time.Minute),
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			users := newFakeUsers()
			c := NewRecipientCache(users, backend, time.Minute, nil)
			ctx := context.Background()

			got, err := c.LookupRecipients(ctx, []string{"u1", "u2", "ghost"})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.True(t, got["u1"].Preferences.OrderUpdates)
			assert.Nil(t, got["u2"].Preferences)
			_, ok := got["ghost"]
			assert.False(t, ok)

			got, err = c.LookupRecipients(ctx, []string{"u1", "u2"})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, 1, users.calls, "second lookup served from cache")
			assert.EqualValues(t, 2, c.Counters().Hits)

			require.NoError(t, c.Invalidate(ctx, "u1"))
			_, err = c.LookupRecipients(ctx, []string{"u1"})
			require.NoError(t, err)
			assert.Equal(t, 2, users.calls)
		})
	}
}

func TestRecipientCacheDegradesOnRedisFailure(t *testing.T) {
	backend, mr := newRedisBackend(t)
	users := newFakeUsers()
	c := NewRecipientCache(users, backend, time.Minute, nil)
	mr.Close()

	got, err := c.LookupRecipients(context.Background(), []string{"u1"})
	require.NoError(t, err)
	assert.Contains(t, got, "u1")
}

func TestRecipientCacheStoreError(t *testing.T) {
	users := newFakeUsers()
	users.err = errors.New("db down")
	c := NewRecipientCache(users, nil, time.Minute, nil)

	_, err := c.LookupRecipients(context.Background(), []string{"u1"})
	assert.ErrorContains(t, err, "db down")

	empty, err := c.LookupRecipients(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecipientCacheTTL(t *testing.T) {
	backend, mr := newRedisBackend(t)
	users := newFakeUsers()
	c := NewRecipientCache(users, backend, time.Second, nil)
	ctx := context.Background()

	_, err := c.LookupRecipients(ctx, []string{"u1"})
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	_, err = c.LookupRecipients(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, 2, users.calls)
}
