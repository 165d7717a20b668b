package repository

import (
	"context"
	"fmt"

	"el-diego/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = "id, sku, name, price, active, created_at, updated_at"

// scanProduct scans a single product row.
func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY sku
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// GetBySKU retrieves a single product by its SKU.
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE sku = $1
	`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, sku))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("sku", sku).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("sku", sku).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetBySKUs resolves multiple SKUs to products. All SKUs must resolve;
// otherwise model.ErrProductNotFound is returned.
func (r *productRepository) GetBySKUs(ctx context.Context, skus []string) ([]model.Product, error) {
	if len(skus) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE sku = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, skus)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(skus)).Msg("failed to query products by SKUs")
		return nil, fmt.Errorf("failed to query products by SKUs: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows, r.logger)
	if err != nil {
		return nil, err
	}

	bySKU := make(map[string]model.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}

	// Preserve the request order. The request may name a SKU more than once.
	ordered := make([]model.Product, 0, len(skus))
	for _, sku := range skus {
		p, ok := bySKU[sku]
		if !ok {
			r.logger.Warn().Str("sku", sku).Msg("SKU did not resolve to a product")
			return nil, model.ErrProductNotFound
		}
		ordered = append(ordered, p)
	}

	return ordered, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY sku
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, sku, name, price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Price,
		product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", product.SKU).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("sku", product.SKU).Msg("product created")
	return nil
}

// Update updates an existing product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, price = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Price,
		product.Active, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", product.SKU).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product unless existing order items still reference it.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var referenced bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)", id,
	).Scan(&referenced)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to check product references")
		return fmt.Errorf("failed to check product references: %w", err)
	}

	if referenced {
		r.logger.Warn().Str("product_id", id.String()).Msg("product referenced by orders")
		return model.ErrProductInUse
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// collectProducts scans all rows into a product slice.
func collectProducts(rows pgx.Rows, logger zerolog.Logger) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
