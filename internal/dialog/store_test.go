package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	require.NoError(t, store.Set(ctx, 1, StateAwaitingEmail))
	require.NoError(t, store.Set(ctx, 2, StateAwaitingPhone))

	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingEmail, state)

	require.NoError(t, store.Set(ctx, 1, StateAwaitingPhone))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhone, state)

	require.NoError(t, store.Clear(ctx, 1))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	state, err = store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhone, state, "states are kept per sender")

	require.NoError(t, store.Set(ctx, 2, StateNone))
	state, err = store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	testStore(t, store)
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 9, StateAwaitingEmail))
	assert.True(t, mr.Exists("dialog:9"))

	mr.FastForward(2 * time.Minute)

	state, err := store.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Get(context.Background(), 1)
	assert.Error(t, err)
}
