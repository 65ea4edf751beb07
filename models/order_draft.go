package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/apperr"
)

// DraftItem is one client-submitted line of an order draft
type DraftItem struct {
	Product  string   `json:"product" validate:"required,hexadecimal,len=24"`
	Option   string   `json:"option" validate:"required"`
	Quantity int      `json:"quantity" validate:"required,min=1"`
	Price    *float64 `json:"price" validate:"required,gt=0"`
}

// OrderDraft is the client-submitted, not-yet-persisted order
type OrderDraft struct {
	Customer    Customer    `json:"customer"`
	Items       []DraftItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount *float64    `json:"totalAmount" validate:"required,gt=0"`
	Notes       string      `json:"notes" validate:"max=500"`
}

// Validate checks required fields and that the declared total equals the
// sum of item subtotals.
func (d *OrderDraft) Validate() error {
	d.Customer.Email = strings.ToLower(strings.TrimSpace(d.Customer.Email))
	if err := Validate(d); err != nil {
		return err
	}
	computed := decimal.Zero
	for _, it := range d.Items {
		computed = computed.Add(LineTotal(*it.Price, it.Quantity))
	}
	if !SameAmount(computed, decimal.NewFromFloat(*d.TotalAmount)) {
		return apperr.Invalid("totalAmount", "must equal the sum of item subtotals ("+computed.StringFixed(2)+")")
	}
	return nil
}

// Order builds a pending order from a validated draft.
func (d *OrderDraft) Order(now time.Time) Order {
	items := make([]OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		id, _ := primitive.ObjectIDFromHex(it.Product)
		items = append(items, OrderItem{
			Product:  id,
			Option:   it.Option,
			Quantity: it.Quantity,
			Price:    *it.Price,
		})
	}
	return Order{
		Customer:    d.Customer,
		Items:       items,
		TotalAmount: *d.TotalAmount,
		Status:      OrderPending,
		Payment:     Payment{Status: PaymentNotInitiated},
		Notes:       strings.TrimSpace(d.Notes),
		OrderDate:   now,
	}
}
