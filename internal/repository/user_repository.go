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

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const userColumns = "id, name, email, password_hash, role, status, created_at, updated_at"

// GetByEmail retrieves a user by email address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email), "email", email)
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, id), "user_id", id.String())
}

// GetActiveDeliveryAddress retrieves the user's currently-active delivery
// address. Returns nil when the user has none.
func (r *userRepository) GetActiveDeliveryAddress(ctx context.Context, userID uuid.UUID) (*model.DeliveryAddress, error) {
	query := `
		SELECT id, user_id, address_line, locality, province, zipcode, active, created_at
		FROM delivery_addresses
		WHERE user_id = $1 AND active
		ORDER BY created_at DESC
		LIMIT 1
	`

	var addr model.DeliveryAddress
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&addr.ID, &addr.UserID, &addr.AddressLine, &addr.Locality,
		&addr.Province, &addr.Zipcode, &addr.Active, &addr.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("user_id", userID.String()).Msg("no active delivery address")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query delivery address")
		return nil, fmt.Errorf("failed to query delivery address: %w", err)
	}

	return &addr, nil
}

// GetDeliveryAddress retrieves a delivery address by ID.
func (r *userRepository) GetDeliveryAddress(ctx context.Context, id uuid.UUID) (*model.DeliveryAddress, error) {
	query := `
		SELECT id, user_id, address_line, locality, province, zipcode, active, created_at
		FROM delivery_addresses
		WHERE id = $1
	`

	var addr model.DeliveryAddress
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&addr.ID, &addr.UserID, &addr.AddressLine, &addr.Locality,
		&addr.Province, &addr.Zipcode, &addr.Active, &addr.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query delivery address")
		return nil, fmt.Errorf("failed to query delivery address: %w", err)
	}

	return &addr, nil
}

// scanUser scans a single user row, mapping no-rows to nil.
func (r *userRepository) scanUser(row pgx.Row, field, value string) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str(field, value).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str(field, value).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}
