package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"el-diego/internal/config"
	"el-diego/internal/database"
	"el-diego/internal/model"
	"el-diego/internal/pricing"
	"el-diego/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// schema creates the tables the API expects. Idempotent so the seeder can
// run against a fresh or an existing database.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS delivery_addresses (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	address_line TEXT NOT NULL,
	locality TEXT NOT NULL,
	province TEXT NOT NULL,
	zipcode TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	sku TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	buyer_id UUID NOT NULL REFERENCES users(id),
	delivery_address_id UUID NOT NULL REFERENCES delivery_addresses(id),
	sub_total NUMERIC(12,2) NOT NULL,
	discount_total NUMERIC(12,2) NOT NULL DEFAULT 0,
	tax_total NUMERIC(12,2) NOT NULL DEFAULT 0,
	total NUMERIC(12,2) NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	payment_status TEXT NOT NULL DEFAULT 'unpaid',
	notes TEXT,
	shipped_at TIMESTAMPTZ,
	delivered_at TIMESTAMPTZ,
	canceled_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_items (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id UUID NOT NULL REFERENCES products(id),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price NUMERIC(12,2) NOT NULL,
	total_price NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_buyer_status ON orders(buyer_id, status);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("seeding el-diego database")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	adminID, err := seedUser(ctx, pool, "Ana Admin", "admin@eldiego.test", "admin-password", model.UserRoleAdmin)
	if err != nil {
		return err
	}

	buyerID, err := seedUser(ctx, pool, "Diego Buyer", "diego@eldiego.test", "buyer-password", model.UserRoleUser)
	if err != nil {
		return err
	}

	if err := seedAddress(ctx, pool, buyerID, "Calle Mayor 1", "Madrid", "Madrid", "28013"); err != nil {
		return err
	}

	products, err := seedProducts(ctx, pool, logger)
	if err != nil {
		return err
	}

	if err := seedOrder(ctx, pool, logger, buyerID, products); err != nil {
		return err
	}

	logger.Info().
		Str("admin_id", adminID.String()).
		Str("buyer_id", buyerID.String()).
		Int("product_count", len(products)).
		Msg("database seeded")

	return nil
}

// seedUser inserts a user if the email is not taken and returns its ID.
func seedUser(ctx context.Context, pool *pgxpool.Pool, name, email, password, role string) (uuid.UUID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New()
	err = pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		id, name, email, string(hash), role, model.UserStatusActive,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to seed user %s: %w", email, err)
	}

	return id, nil
}

// seedAddress gives the user one active delivery address.
func seedAddress(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, line, locality, province, zipcode string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO delivery_addresses (id, user_id, address_line, locality, province, zipcode, active)
		SELECT $1, $2, $3, $4, $5, $6, TRUE
		WHERE NOT EXISTS (
			SELECT 1 FROM delivery_addresses WHERE user_id = $2 AND active
		)`,
		uuid.New(), userID, line, locality, province, zipcode,
	)
	if err != nil {
		return fmt.Errorf("failed to seed delivery address: %w", err)
	}
	return nil
}

// seedProducts upserts the demo catalogue.
func seedProducts(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) ([]model.Product, error) {
	repo := repository.NewProductRepository(pool, logger)

	demo := []struct {
		sku   string
		name  string
		price string
	}{
		{"SKU-ESPRESSO", "Espresso Beans 1kg", "18.50"},
		{"SKU-GRINDER", "Manual Coffee Grinder", "42.00"},
		{"SKU-KETTLE", "Gooseneck Kettle", "64.90"},
		{"SKU-SCALE", "Precision Scale", "29.95"},
		{"SKU-DRIPPER", "Ceramic Dripper", "21.75"},
	}

	now := time.Now()
	products := make([]model.Product, 0, len(demo))

	for _, d := range demo {
		existing, err := repo.GetBySKU(ctx, d.sku)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", d.sku, err)
		}
		if existing != nil {
			products = append(products, *existing)
			continue
		}

		product := model.Product{
			ID:        uuid.New(),
			SKU:       d.sku,
			Name:      d.name,
			Price:     decimal.RequireFromString(d.price),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(ctx, &product); err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", d.sku, err)
		}
		products = append(products, product)
	}

	return products, nil
}

// seedOrder places one demo order for the buyer, priced with a 5% discount
// and 21% tax so the totals columns show non-zero values.
func seedOrder(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger, buyerID uuid.UUID, products []model.Product) error {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE buyer_id = $1`, buyerID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}
	if existing > 0 {
		return nil
	}

	var addressID uuid.UUID
	err := pool.QueryRow(ctx,
		`SELECT id FROM delivery_addresses WHERE user_id = $1 AND active ORDER BY created_at DESC LIMIT 1`,
		buyerID,
	).Scan(&addressID)
	if err != nil {
		return fmt.Errorf("failed to resolve delivery address: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	engine := pricing.NewEngine(
		productRepo,
		pricing.RateDiscount{Rate: decimal.RequireFromString("0.05")},
		pricing.RateTax{Rate: decimal.RequireFromString("0.21")},
		logger,
	)

	quote, err := engine.Price(ctx, []model.OrderItemRequest{
		{SKU: products[0].SKU, Quantity: 2},
		{SKU: products[1].SKU, Quantity: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to price demo order: %w", err)
	}

	now := time.Now()
	order := &model.Order{
		ID:                uuid.New(),
		BuyerID:           buyerID,
		DeliveryAddressID: addressID,
		SubTotal:          quote.SubTotal,
		DiscountTotal:     quote.DiscountTotal,
		TaxTotal:          quote.TaxTotal,
		Total:             quote.Total,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusUnpaid,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	tx, err := orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to seed order: %w", err)
	}

	items := quote.Items
	for i := range items {
		items[i].OrderID = order.ID
	}

	if err := orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to seed order items: %w", err)
	}

	return tx.Commit(ctx)
}
