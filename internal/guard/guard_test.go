package guard

import (
	"context"
	"testing"
	"time"

	"el-diego/internal/cache"
	"el-diego/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPendingOrderFinder is a mock implementation of PendingOrderFinder.
type MockPendingOrderFinder struct {
	mock.Mock
}

func (m *MockPendingOrderFinder) GetPendingProductSets(ctx context.Context, buyerID uuid.UUID) ([][]uuid.UUID, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]uuid.UUID), args.Error(1)
}

// setupGuard wires a guard over a miniredis-backed store and a mock finder.
func setupGuard(t *testing.T, ttl time.Duration) (*Guard, *MockPendingOrderFinder, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	finder := new(MockPendingOrderFinder)
	store := cache.NewRedisStore(client, zerolog.Nop())

	return New(store, finder, ttl, zerolog.Nop()), finder, mr
}

func TestKey_Deterministic(t *testing.T) {
	buyer := uuid.New()
	a := uuid.New()
	b := uuid.New()

	// Order of the input must not matter
	assert.Equal(t, Key(buyer, []uuid.UUID{a, b}), Key(buyer, []uuid.UUID{b, a}))

	// Different sets yield different keys
	assert.NotEqual(t, Key(buyer, []uuid.UUID{a}), Key(buyer, []uuid.UUID{a, b}))

	// Different buyers yield different keys
	assert.NotEqual(t, Key(buyer, []uuid.UUID{a}), Key(uuid.New(), []uuid.UUID{a}))
}

func TestGuard_Check_NoDuplicate(t *testing.T) {
	g, finder, mr := setupGuard(t, 600*time.Second)
	ctx := context.Background()

	buyer := uuid.New()
	products := []uuid.UUID{uuid.New(), uuid.New()}

	finder.On("GetPendingProductSets", ctx, buyer).Return([][]uuid.UUID{}, nil)

	err := g.Check(ctx, buyer, products)
	require.NoError(t, err)

	// No marker is planted for a clean request
	assert.False(t, mr.Exists(Key(buyer, products)))
	finder.AssertExpectations(t)
}

func TestGuard_Check_PendingDuplicate(t *testing.T) {
	g, finder, mr := setupGuard(t, 600*time.Second)
	ctx := context.Background()

	buyer := uuid.New()
	a := uuid.New()
	b := uuid.New()

	pending := sortedIDs([]uuid.UUID{a, b})
	finder.On("GetPendingProductSets", ctx, buyer).Return([][]uuid.UUID{pending}, nil)

	// Same product set, different submission order
	err := g.Check(ctx, buyer, []uuid.UUID{b, a})
	assert.ErrorIs(t, err, model.ErrDuplicateOrder)

	// A true duplicate plants the marker with the configured expiry
	key := Key(buyer, []uuid.UUID{a, b})
	require.True(t, mr.Exists(key))
	assert.Equal(t, 600*time.Second, mr.TTL(key))
}

func TestGuard_Check_CacheMarkerShortCircuits(t *testing.T) {
	g, finder, mr := setupGuard(t, 600*time.Second)
	ctx := context.Background()

	buyer := uuid.New()
	products := []uuid.UUID{uuid.New()}

	mr.Set(Key(buyer, products), "1")

	err := g.Check(ctx, buyer, products)
	assert.ErrorIs(t, err, model.ErrDuplicateOrder)

	// The database is never consulted when the marker is present
	finder.AssertNotCalled(t, "GetPendingProductSets", mock.Anything, mock.Anything)
}

func TestGuard_Check_MarkerExpires(t *testing.T) {
	g, finder, mr := setupGuard(t, 600*time.Second)
	ctx := context.Background()

	buyer := uuid.New()
	products := []uuid.UUID{uuid.New()}

	pending := sortedIDs(products)
	finder.On("GetPendingProductSets", ctx, buyer).Return([][]uuid.UUID{pending}, nil).Once()

	err := g.Check(ctx, buyer, products)
	require.ErrorIs(t, err, model.ErrDuplicateOrder)

	// After expiry the guard falls through to the database again; with no
	// pending order of that shape anymore, the request passes.
	mr.FastForward(601 * time.Second)
	finder.On("GetPendingProductSets", ctx, buyer).Return([][]uuid.UUID{}, nil).Once()

	err = g.Check(ctx, buyer, products)
	assert.NoError(t, err)
	finder.AssertExpectations(t)
}

func TestGuard_Check_DifferentSetPasses(t *testing.T) {
	g, finder, _ := setupGuard(t, 600*time.Second)
	ctx := context.Background()

	buyer := uuid.New()
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	pending := sortedIDs([]uuid.UUID{a, b})
	finder.On("GetPendingProductSets", ctx, buyer).Return([][]uuid.UUID{pending}, nil)

	// Superset of a pending order is not a duplicate
	err := g.Check(ctx, buyer, []uuid.UUID{a, b, c})
	assert.NoError(t, err)
}

func TestGuard_Release(t *testing.T) {
	g, _, mr := setupGuard(t, 600*time.Second)
	ctx := context.Background()

	buyer := uuid.New()
	products := []uuid.UUID{uuid.New()}
	key := Key(buyer, products)

	mr.Set(key, "1")

	err := g.Release(ctx, buyer, products)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	// Releasing an absent marker is not an error
	err = g.Release(ctx, buyer, products)
	assert.NoError(t, err)
}
