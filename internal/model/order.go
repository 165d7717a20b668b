package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentStatusUnpaid    = "unpaid"
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusExpired   = "expired"
)

// Order represents a customer order. Monetary totals are fixed-point with
// two decimal places and satisfy total = subTotal - discountTotal + taxTotal.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	BuyerID           uuid.UUID       `json:"buyerId" db:"buyer_id"`
	DeliveryAddressID uuid.UUID       `json:"deliveryAddressId" db:"delivery_address_id"`
	SubTotal          decimal.Decimal `json:"subTotal" db:"sub_total"`
	DiscountTotal     decimal.Decimal `json:"discountTotal" db:"discount_total"`
	TaxTotal          decimal.Decimal `json:"taxTotal" db:"tax_total"`
	Total             decimal.Decimal `json:"total" db:"total"`
	Status            string          `json:"status" db:"status"`
	PaymentStatus     string          `json:"paymentStatus" db:"payment_status"`
	Notes             *string         `json:"notes,omitempty" db:"notes"`
	ShippedAt         *time.Time      `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CanceledAt        *time.Time      `json:"canceledAt,omitempty" db:"canceled_at"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. UnitPrice is a snapshot of
// the product price at order time and is never recomputed afterwards.
type OrderItem struct {
	ID         uuid.UUID       `json:"-" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	ProductID  uuid.UUID       `json:"productId" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
}

// OrderRequest represents the request payload for placing an order.
type OrderRequest struct {
	Items []OrderItemRequest `json:"items"`
	Notes *string            `json:"notes,omitempty"`
}

// OrderItemRequest represents a single SKU/quantity entry in an order request.
type OrderItemRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// OrderResponse represents the response payload for an order, with its line
// items, the referenced products and the delivery address.
type OrderResponse struct {
	Order           Order            `json:"order"`
	Items           []OrderItem      `json:"items"`
	Products        []Product        `json:"products"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
}
