package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeDuplicateOrder     = "DUPLICATE_ORDER"
	ErrCodeNoDeliveryAddress  = "NO_DELIVERY_ADDRESS"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeProductInUse       = "PRODUCT_IN_USE"
	ErrCodeOrderCreation      = "ORDER_CREATION_FAILED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDuplicateOrder     = NewDomainError(ErrCodeDuplicateOrder, "An identical pending order already exists")
	ErrNoDeliveryAddress  = NewDomainError(ErrCodeNoDeliveryAddress, "Buyer has no active delivery address")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "The credentials provided are invalid")
	ErrProductInUse       = NewDomainError(ErrCodeProductInUse, "Product is referenced by existing orders")
)

// OrderCreationError wraps any failure during the transactional persistence
// phase of order placement. The original cause is preserved for diagnostics.
type OrderCreationError struct {
	Cause error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Cause)
}

func (e *OrderCreationError) Unwrap() error {
	return e.Cause
}

// NewOrderCreationError wraps the underlying cause of a failed order placement.
func NewOrderCreationError(cause error) *OrderCreationError {
	return &OrderCreationError{Cause: cause}
}
