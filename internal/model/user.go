package model

import (
	"time"

	"github.com/google/uuid"
)

// User statuses
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User roles
const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// User represents a registered buyer or administrator.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DeliveryAddress represents a delivery address registered by a user.
// Orders reference the address that was active at placement time.
type DeliveryAddress struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"-" db:"user_id"`
	AddressLine string    `json:"addressLine" db:"address_line"`
	Locality    string    `json:"locality" db:"locality"`
	Province    string    `json:"province" db:"province"`
	Zipcode     string    `json:"zipcode" db:"zipcode"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// LoginRequest represents the request payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful authentication response.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	User        User   `json:"user"`
}
