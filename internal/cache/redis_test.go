package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a miniredis server and returns a Store backed by it.
func setupTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, zerolog.Nop()), mr
}

func TestRedisStore_GetMissingKey(t *testing.T) {
	store, _ := setupTestStore(t)

	value, err := store.Get(context.Background(), "orders:lock:missing")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRedisStore_SetWithTTLAndGet(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	err := store.SetWithTTL(ctx, "orders:lock:abc", "1", 600*time.Second)
	require.NoError(t, err)

	value, err := store.Get(ctx, "orders:lock:abc")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	assert.Equal(t, 600*time.Second, mr.TTL("orders:lock:abc"))
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	err := store.SetWithTTL(ctx, "orders:lock:abc", "1", 600*time.Second)
	require.NoError(t, err)

	// Advance the clock past the marker expiry
	mr.FastForward(601 * time.Second)

	value, err := store.Get(ctx, "orders:lock:abc")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	err := store.SetWithTTL(ctx, "orders:lock:abc", "1", time.Minute)
	require.NoError(t, err)

	err = store.Delete(ctx, "orders:lock:abc")
	require.NoError(t, err)

	value, err := store.Get(ctx, "orders:lock:abc")
	require.NoError(t, err)
	assert.Empty(t, value)

	// Deleting a missing key is not an error
	err = store.Delete(ctx, "orders:lock:abc")
	assert.NoError(t, err)
}
