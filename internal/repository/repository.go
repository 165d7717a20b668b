package repository

import (
	"context"

	"el-diego/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetBySKU retrieves a single product by its SKU.
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)

	// GetBySKUs resolves multiple SKUs to products. Returns
	// model.ErrProductNotFound if any SKU does not resolve.
	GetBySKUs(ctx context.Context, skus []string) ([]model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update updates an existing product.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Fails with model.ErrProductInUse when order
	// items still reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetPendingProductSets returns, for each of the buyer's pending orders,
	// the set of product IDs it contains, sorted ascending by string form.
	GetPendingProductSets(ctx context.Context, buyerID uuid.UUID) ([][]uuid.UUID, error)
}

// UserRepository defines the interface for user and delivery address lookups.
type UserRepository interface {
	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetActiveDeliveryAddress retrieves the user's currently-active delivery
	// address, or nil when the user has none.
	GetActiveDeliveryAddress(ctx context.Context, userID uuid.UUID) (*model.DeliveryAddress, error)

	// GetDeliveryAddress retrieves a delivery address by ID.
	GetDeliveryAddress(ctx context.Context, id uuid.UUID) (*model.DeliveryAddress, error)
}
