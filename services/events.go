package services

import (
	"time"

	"chocobliss/models"
)

const (
	EventOrderCreated      = "order.created"
	EventPaymentInitiated  = "order.payment_initiated"
	EventOrderPaid         = "order.paid"
	EventPaymentFailed     = "order.payment_failed"
	EventOrderCOD          = "order.cod"
	EventOrderStatusChange = "order.status_changed"
)

// OrderEvent is published after an order write has been persisted.
type OrderEvent struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
	At    time.Time    `json:"at"`
}

// OrderListener receives order events. Implementations must not block.
type OrderListener interface {
	OrderChanged(ev OrderEvent)
}
