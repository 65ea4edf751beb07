package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every wire-visible order status.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled,
}

// ParseOrderStatus maps a wire value to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// Terminal reports whether no further transitions are modelled out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// In reports whether s is one of set.
func (s OrderStatus) In(set []OrderStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Address represents a delivery address
type Address struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	Pincode string `bson:"pincode" json:"pincode" validate:"required"`
}

// Customer is the contact block captured at checkout
type Customer struct {
	Name    string  `bson:"name" json:"name" validate:"required"`
	Email   string  `bson:"email" json:"email" validate:"required,email"`
	Phone   string  `bson:"phone" json:"phone" validate:"required"`
	Address Address `bson:"address" json:"address"`
}

// OrderItem is a price/option snapshot taken when the order is created
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Option   string             `bson:"option" json:"option"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// Order represents a customer order
type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Customer     Customer           `bson:"customer" json:"customer"`
	Items        []OrderItem        `bson:"items" json:"items"`
	TotalAmount  float64            `bson:"totalAmount" json:"totalAmount"`
	Status       OrderStatus        `bson:"status" json:"status"`
	Payment      Payment            `bson:"payment" json:"payment"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderDate    time.Time          `bson:"orderDate" json:"orderDate"`
	DeliveryDate *time.Time         `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
}

// OrderDetail is an order whose items carry the full catalog product
// instead of its id.
type OrderDetail struct {
	Order
	Items []OrderItemDetail `json:"items"`
}

// OrderItemDetail is a line item with its product resolved. Product is nil
// when the product has since been removed from the catalog.
type OrderItemDetail struct {
	OrderItem
	Product *Product `json:"product"`
}
