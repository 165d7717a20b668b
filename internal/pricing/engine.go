package pricing

import (
	"context"

	"el-diego/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Catalog resolves SKUs to product records with their current prices.
// Resolution is all-or-nothing: any unresolvable SKU fails the lookup with
// model.ErrProductNotFound.
type Catalog interface {
	GetBySKUs(ctx context.Context, skus []string) ([]model.Product, error)
}

// Quote holds the prepared line items and totals for an order about to be
// persisted. Item unit prices are snapshots of the catalogue prices at the
// time the quote was computed.
type Quote struct {
	Items         []model.OrderItem
	SubTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
}

// Engine computes line totals and order aggregates in fixed-point decimal
// arithmetic. Discount and tax are delegated to pluggable policies.
type Engine struct {
	catalog  Catalog
	discount DiscountPolicy
	tax      TaxPolicy
	logger   zerolog.Logger
}

// NewEngine creates a pricing engine over the given catalogue and policies.
func NewEngine(catalog Catalog, discount DiscountPolicy, tax TaxPolicy, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		discount: discount,
		tax:      tax,
		logger:   logger.With().Str("component", "pricing").Logger(),
	}
}

// Price resolves each requested SKU, freezes the current unit price into a
// line item, and accumulates the order totals. Quantities must be positive.
func (e *Engine) Price(ctx context.Context, lines []model.OrderItemRequest) (*Quote, error) {
	for _, line := range lines {
		if line.Quantity <= 0 {
			e.logger.Warn().
				Str("sku", line.SKU).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
	}

	skus := make([]string, len(lines))
	for i, line := range lines {
		skus[i] = line.SKU
	}

	products, err := e.catalog.GetBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	bySKU := make(map[string]model.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}

	items := make([]model.OrderItem, 0, len(lines))
	subTotal := decimal.Zero

	for _, line := range lines {
		product, ok := bySKU[line.SKU]
		if !ok {
			return nil, model.ErrProductNotFound
		}

		quantity := decimal.NewFromInt(int64(line.Quantity))
		totalPrice := quantity.Mul(product.Price)

		items = append(items, model.OrderItem{
			ID:         uuid.New(),
			ProductID:  product.ID,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: totalPrice,
		})

		subTotal = subTotal.Add(totalPrice)
	}

	discountTotal := e.discount.Discount(subTotal)
	taxTotal := e.tax.Tax(subTotal, discountTotal)
	total := subTotal.Sub(discountTotal).Add(taxTotal)

	e.logger.Debug().
		Int("item_count", len(items)).
		Str("sub_total", subTotal.String()).
		Str("total", total.String()).
		Msg("quote computed")

	return &Quote{
		Items:         items,
		SubTotal:      subTotal,
		DiscountTotal: discountTotal,
		TaxTotal:      taxTotal,
		Total:         total,
	}, nil
}
