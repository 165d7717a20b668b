package service

import (
	"context"

	"el-diego/internal/model"
	"el-diego/internal/pricing"

	"github.com/google/uuid"
)

// AuthService defines operations for authentication.
type AuthService interface {
	// Login verifies credentials and issues an access token.
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)

	// Me retrieves the authenticated user's profile.
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetBySKU retrieves a single product by SKU.
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)

	// Create creates a new product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update updates an existing product.
	Update(ctx context.Context, sku string, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, sku string) error
}

// OrderService defines operations for order placement and retrieval.
type OrderService interface {
	// PlaceOrder runs the end-to-end order placement workflow for the buyer.
	PlaceOrder(ctx context.Context, buyerID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with items, products and the
	// delivery address.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// DuplicateGuard blocks resubmission of an identical pending product set.
type DuplicateGuard interface {
	Check(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error
	Release(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error
}

// Pricer computes line items and order totals for a set of requested SKUs.
type Pricer interface {
	Price(ctx context.Context, lines []model.OrderItemRequest) (*pricing.Quote, error)
}

// Notifier schedules a deferred order confirmation.
type Notifier interface {
	Enqueue(order *model.Order, recipient string)
}
