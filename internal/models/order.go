package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a dealer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProduction OrderStatus = "production"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ShippingInfo holds the delivery details a dealer attaches to an order
type ShippingInfo struct {
	ContactName  string `json:"contactName" db:"contact_name" validate:"max=100"`
	ContactPhone string `json:"contactPhone" db:"contact_phone" validate:"max=32"`
	Address      string `json:"address" db:"shipping_address" validate:"max=300"`
}

// Order is a placed dealer order with its line items.
// TotalAmount always equals the sum of the line subtotals.
type Order struct {
	ID             string          `json:"id" db:"id"`
	OrderNumber    string          `json:"orderNumber" db:"order_number"`
	DealerID       string          `json:"dealerId" db:"dealer_id"`
	ProjectName    string          `json:"projectName" db:"project_name"`
	Shipping       ShippingInfo    `json:"shipping"`
	Remark         string          `json:"remark,omitempty" db:"remark"`
	TotalAmount    decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status         OrderStatus     `json:"status" db:"status"`
	IdempotencyKey string          `json:"-" db:"idempotency_key"`
	LineItems      []OrderLine     `json:"lineItems,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// OrderLine is one manufactured unit: product reference, opaque
// configuration (dimensions, glass, color...) and its price breakdown.
type OrderLine struct {
	LineNo        int             `json:"lineNo" db:"line_no"`
	ProductID     string          `json:"productId" db:"product_id"`
	ProductName   string          `json:"productName" db:"product_name"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Width         int             `json:"width,omitempty" db:"width_mm"`
	Height        int             `json:"height,omitempty" db:"height_mm"`
	Configuration Metadata        `json:"configuration,omitempty" db:"configuration"`
	UnitPrice     decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// PlaceOrderRequest is the inbound placement payload. DealerID and
// IdempotencyKey come from the authenticated request, never the body.
type PlaceOrderRequest struct {
	DealerID       string            `json:"-"`
	IdempotencyKey string            `json:"-"`
	ProjectName    string            `json:"projectName" validate:"max=200"`
	Shipping       ShippingInfo      `json:"shipping"`
	Remark         string            `json:"remark" validate:"max=500"`
	Items          []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// LineItemRequest carries a line already priced by the catalog service
type LineItemRequest struct {
	ProductID     string          `json:"productId" validate:"required,max=64"`
	ProductName   string          `json:"productName" validate:"max=200"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	Width         int             `json:"width" validate:"gte=0"`
	Height        int             `json:"height" validate:"gte=0"`
	Configuration Metadata        `json:"configuration"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}
