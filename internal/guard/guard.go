package guard

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"el-diego/internal/cache"
	"el-diego/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PendingOrderFinder looks up the product-ID sets of a buyer's pending
// orders. Each set is sorted ascending by string form.
type PendingOrderFinder interface {
	GetPendingProductSets(ctx context.Context, buyerID uuid.UUID) ([][]uuid.UUID, error)
}

// Guard blocks resubmission of an order with a product set identical to one
// of the buyer's pending orders. A short-lived cache marker short-circuits
// repeats of an already-detected duplicate; the database lookup remains the
// authoritative check. Set equality is on product identifiers only, not
// quantities.
type Guard struct {
	store  cache.Store
	orders PendingOrderFinder
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a duplicate-order guard with the given marker TTL.
func New(store cache.Store, orders PendingOrderFinder, ttl time.Duration, logger zerolog.Logger) *Guard {
	return &Guard{
		store:  store,
		orders: orders,
		ttl:    ttl,
		logger: logger.With().Str("component", "duplicate_guard").Logger(),
	}
}

// Key returns the cache key for a buyer and product set: a deterministic
// fingerprint of the sorted product identifiers.
func Key(buyerID uuid.UUID, productIDs []uuid.UUID) string {
	sorted := make([]string, len(productIDs))
	for i, id := range productIDs {
		sorted[i] = id.String()
	}
	sort.Strings(sorted)

	encoded, _ := json.Marshal(sorted)
	hash := md5.Sum(encoded)

	return fmt.Sprintf("orders:lock:%s:%s", buyerID, hex.EncodeToString(hash[:]))
}

// Check fails with model.ErrDuplicateOrder when the buyer already has a
// pending order for the same product set. When the duplicate is found in the
// database (rather than the cache), a marker with the configured TTL is
// planted so immediate retries are rejected without another database lookup.
// No marker is planted for a non-duplicate request.
func (g *Guard) Check(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error {
	key := Key(buyerID, productIDs)

	locked, err := g.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("duplicate guard cache check failed: %w", err)
	}
	if locked != "" {
		g.logger.Info().
			Str("buyer_id", buyerID.String()).
			Str("key", key).
			Msg("duplicate order blocked by cache marker")
		return model.ErrDuplicateOrder
	}

	sets, err := g.orders.GetPendingProductSets(ctx, buyerID)
	if err != nil {
		return fmt.Errorf("duplicate guard pending lookup failed: %w", err)
	}

	requested := sortedIDs(productIDs)
	for _, set := range sets {
		if equalIDs(requested, set) {
			if err := g.store.SetWithTTL(ctx, key, "1", g.ttl); err != nil {
				// The database check already decided; a failed marker write
				// only costs the short-circuit on the next retry.
				g.logger.Warn().Err(err).Str("key", key).Msg("failed to set duplicate marker")
			}
			g.logger.Info().
				Str("buyer_id", buyerID.String()).
				Str("key", key).
				Msg("duplicate order blocked by pending order")
			return model.ErrDuplicateOrder
		}
	}

	return nil
}

// Release removes the cache marker for the buyer and product set. Called by
// the orchestrator when order placement fails downstream, so the buyer is
// not blocked on retry after an unrelated failure.
func (g *Guard) Release(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error {
	key := Key(buyerID, productIDs)
	if err := g.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("duplicate guard release failed: %w", err)
	}

	g.logger.Debug().
		Str("buyer_id", buyerID.String()).
		Str("key", key).
		Msg("duplicate marker released")

	return nil
}

// sortedIDs returns a copy of ids sorted ascending by string form.
func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	return sorted
}

// equalIDs compares two sorted ID slices.
func equalIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
