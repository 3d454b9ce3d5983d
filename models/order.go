package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ShippingAddress is the delivery address snapshot stored on an order
type ShippingAddress struct {
	Street     string `gorm:"not null" json:"street"`
	City       string `gorm:"not null" json:"city"`
	PostalCode string `gorm:"not null" json:"postalCode"`
	Country    string `gorm:"not null" json:"country"`
}

// OrderItem is a line item with the product's name, image and price frozen
// at purchase time so later catalog edits don't alter historical orders.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Order represents a placed order. Line items are immutable after creation;
// only status, payment status and deliveredAt change afterwards.
type Order struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OrderNumber         string          `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID              uint            `gorm:"not null;index" json:"user_id"`
	User                *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	ShippingAddress     ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod       string          `gorm:"not null" json:"paymentMethod"`
	PaymentStatus       string          `gorm:"not null;default:'pending'" json:"paymentStatus"`
	TransactionID       *string         `json:"transactionId,omitempty"`
	ItemsPrice          decimal.Decimal `gorm:"type:numeric;not null" json:"itemsPrice"`
	TaxPrice            decimal.Decimal `gorm:"type:numeric;not null" json:"taxPrice"`
	ShippingPrice       decimal.Decimal `gorm:"type:numeric;not null" json:"shippingPrice"`
	TotalPrice          decimal.Decimal `gorm:"type:numeric;not null" json:"totalPrice"`
	Status              string          `gorm:"not null;default:'pending'" json:"status"`
	LoyaltyPointsEarned int             `gorm:"not null;default:0" json:"loyaltyPointsEarned"`
	DeliveredAt         *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Cancellable reports whether the order may still be cancelled.
// Shipped, delivered, cancelled and refunded orders may not.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// OrderCounter backs race-free daily order number sequences. One row per
// day, incremented atomically inside the order-creation transaction.
type OrderCounter struct {
	Day string `gorm:"primaryKey"` // YYMMDD
	Seq int    `gorm:"not null"`
}

// TableName specifies the table name for the OrderCounter model
func (OrderCounter) TableName() string {
	return "order_counters"
}
