package models

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderLine represents a single product within an order.
// Price and Name are snapshots taken when the order was placed.
type OrderLine struct {
	ProductID string  `json:"productId" bson:"productId"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
	Name      string  `json:"name" bson:"name"`
}

// Order represents a customer order.
type Order struct {
	ID           string      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	CustomerName string      `json:"customerName" gorm:"not null" bson:"customerName"`
	Email        string      `json:"email" gorm:"not null;type:varchar(255)" bson:"email"`
	TotalAmount  float64     `json:"totalAmount" gorm:"not null" bson:"totalAmount"`
	Status       OrderStatus `json:"status" gorm:"type:varchar(16);index" bson:"status"`
	OrderItems   []OrderLine `json:"orderItems" gorm:"serializer:json" bson:"orderItems"`
	CreatedAt    time.Time   `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// MaxLineQuantity bounds a single line so per-product demand sums cannot overflow.
const MaxLineQuantity = 1_000_000

// LineRequest is one requested product and quantity in a PlaceOrderRequest.
type LineRequest struct {
	ProductID string `json:"productId" validate:"required,identifier"`
	Quantity  int    `json:"quantity" validate:"gt=0,max=1000000"`
}

// PlaceOrderRequest is the checkout payload. Prices are never accepted from the caller.
type PlaceOrderRequest struct {
	CustomerName string        `json:"customerName" validate:"required"`
	Email        string        `json:"email" validate:"required,email"`
	Lines        []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrderPlacedEvent is published after an order has been persisted.
type OrderPlacedEvent struct {
	OrderID      string      `json:"orderId"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	TotalAmount  float64     `json:"totalAmount"`
	Items        []OrderLine `json:"items"`
	PlacedAt     time.Time   `json:"placedAt"`
}
