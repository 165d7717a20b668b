package service

import (
	"context"
	"fmt"
	"time"

	"el-diego/internal/model"
	"el-diego/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. It orchestrates the order placement
// workflow: delivery address check, duplicate guard, pricing, transactional
// persistence of the order aggregate, and deferred notification dispatch.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	guard       DuplicateGuard
	pricer      Pricer
	notifier    Notifier
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	guard DuplicateGuard,
	pricer Pricer,
	notifier Notifier,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		guard:       guard,
		pricer:      pricer,
		notifier:    notifier,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder runs the end-to-end order placement workflow. Guard and pricing
// failures propagate unchanged; any failure after the transaction starts
// rolls back, releases the duplicate marker, and surfaces as
// *model.OrderCreationError with the original cause attached.
func (s *orderService) PlaceOrder(ctx context.Context, buyerID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	// An order cannot be placed without somewhere to deliver it.
	address, err := s.userRepo.GetActiveDeliveryAddress(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve delivery address: %w", err)
	}
	if address == nil {
		s.logger.Warn().Str("buyer_id", buyerID.String()).Msg("no active delivery address")
		return nil, model.ErrNoDeliveryAddress
	}

	skus := make([]string, len(req.Items))
	for i, item := range req.Items {
		skus[i] = item.SKU
	}

	products, err := s.productRepo.GetBySKUs(ctx, skus)
	if err != nil {
		s.logger.Warn().Int("sku_count", len(skus)).Err(err).Msg("SKU resolution failed")
		return nil, err
	}

	productIDs := make([]uuid.UUID, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	if err := s.guard.Check(ctx, buyerID, productIDs); err != nil {
		return nil, err
	}

	quote, err := s.pricer.Price(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:                uuid.New(),
		BuyerID:           buyerID,
		DeliveryAddressID: address.ID,
		SubTotal:          quote.SubTotal,
		DiscountTotal:     quote.DiscountTotal,
		TaxTotal:          quote.TaxTotal,
		Total:             quote.Total,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusUnpaid,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, s.failPlacement(ctx, buyerID, productIDs, err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, s.failPlacement(ctx, buyerID, productIDs, err)
	}

	items := make([]model.OrderItem, len(quote.Items))
	copy(items, quote.Items)
	for i := range items {
		items[i].OrderID = order.ID
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, s.failPlacement(ctx, buyerID, productIDs, err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, s.failPlacement(ctx, buyerID, productIDs, err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("buyer_id", buyerID.String()).
		Int("item_count", len(items)).
		Str("total", order.Total.String()).
		Msg("order created successfully")

	// The order is committed; the confirmation is fire-and-forget and must
	// not fail the placement.
	if buyer, lookupErr := s.userRepo.GetByID(ctx, buyerID); lookupErr != nil || buyer == nil {
		s.logger.Error().Err(lookupErr).Str("buyer_id", buyerID.String()).Msg("failed to resolve buyer for notification")
	} else {
		s.notifier.Enqueue(order, buyer.Email)
	}

	return &model.OrderResponse{
		Order:           *order,
		Items:           items,
		Products:        products,
		DeliveryAddress: address,
	}, nil
}

// failPlacement releases the duplicate marker after a persistence-phase
// failure and wraps the cause. The release is best-effort: a failed cleanup
// is logged and must not mask the original error.
func (s *orderService) failPlacement(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID, cause error) error {
	if err := s.guard.Release(ctx, buyerID, productIDs); err != nil {
		s.logger.Error().
			Err(err).
			Str("buyer_id", buyerID.String()).
			Msg("failed to release duplicate marker")
	}
	return model.NewOrderCreationError(cause)
}

// GetByID retrieves an order by its ID with items, products and the
// delivery address.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	address, err := s.userRepo.GetDeliveryAddress(ctx, order.DeliveryAddressID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to retrieve delivery address")
		return nil, fmt.Errorf("failed to retrieve delivery address: %w", err)
	}

	return &model.OrderResponse{
		Order:           *order,
		Items:           items,
		Products:        products,
		DeliveryAddress: address,
	}, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.SKU == "" {
			return fmt.Errorf("item %d: SKU is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("sku", item.SKU).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
