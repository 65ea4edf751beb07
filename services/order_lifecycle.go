// Package services holds the order lifecycle: creation, payment intent,
// payment verification, cash on delivery and admin status changes.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/apperr"
	"chocobliss/models"
	"chocobliss/payment"
	"chocobliss/store"
)

// PaymentGateway is the part of the payment adapter the lifecycle needs.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error)
	VerifyCallback(orderRef, paymentRef, signature string) bool
	PublicKey() string
}

// CheckoutIntent is what the client needs to open the provider checkout.
type CheckoutIntent struct {
	ProviderOrderRef string `json:"orderId"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Key              string `json:"key"`
}

const signatureMismatchMessage = "invalid signature"

// writeAttempts bounds re-reads after a guarded write loses a race.
const writeAttempts = 3

type OrderLifecycle struct {
	Orders  store.OrderStore
	Catalog store.CatalogStore
	Gateway PaymentGateway

	DefaultCurrency string
	GatewayTimeout  time.Duration
	Now             func() time.Time

	mu        sync.RWMutex
	listeners []OrderListener
}

// NewOrderLifecycle wires the controller. catalog may be nil, in which case
// line items are checked for arithmetic only.
func NewOrderLifecycle(orders store.OrderStore, catalog store.CatalogStore, gateway PaymentGateway) *OrderLifecycle {
	return &OrderLifecycle{
		Orders:          orders,
		Catalog:         catalog,
		Gateway:         gateway,
		DefaultCurrency: "INR",
		GatewayTimeout:  payment.DefaultTimeout,
		Now:             time.Now,
	}
}

func (l *OrderLifecycle) Subscribe(ln OrderListener) {
	l.mu.Lock()
	l.listeners = append(l.listeners, ln)
	l.mu.Unlock()
}

func (l *OrderLifecycle) publish(typ string, o *models.Order) {
	l.mu.RLock()
	listeners := append([]OrderListener(nil), l.listeners...)
	l.mu.RUnlock()

	ev := OrderEvent{Type: typ, Order: *o, At: l.now()}
	for _, ln := range listeners {
		ln.OrderChanged(ev)
	}
}

func (l *OrderLifecycle) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

// Create validates the draft and persists a pending order. Nothing is
// written when validation fails.
func (l *OrderLifecycle) Create(ctx context.Context, draft models.OrderDraft) (*models.Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if l.Catalog != nil {
		if err := checkAgainstCatalog(ctx, l.Catalog, &draft); err != nil {
			return nil, err
		}
	}

	o := draft.Order(l.now())
	created, err := l.Orders.Create(ctx, &o)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	log.Printf("order created id=%s total=%.2f items=%d", created.ID.Hex(), created.TotalAmount, len(created.Items))
	l.publish(EventOrderCreated, created)
	return created, nil
}

func (l *OrderLifecycle) Get(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	return l.Orders.FindByID(ctx, id)
}

func (l *OrderLifecycle) List(ctx context.Context) ([]models.Order, error) {
	return l.Orders.ListAll(ctx)
}

// CreatePaymentIntent asks the provider for a payment order covering the
// order total and records the provider reference. A provider failure leaves
// the order untouched.
func (l *OrderLifecycle) CreatePaymentIntent(ctx context.Context, orderID, currency string) (*CheckoutIntent, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	o, err := l.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := startable(o); err != nil {
		return nil, err
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = l.DefaultCurrency
	}

	gctx, cancel := context.WithTimeout(ctx, l.gatewayTimeout())
	defer cancel()
	intent, err := l.Gateway.CreateIntent(gctx, payment.IntentRequest{
		Amount:   o.TotalAmount,
		Currency: currency,
		OrderID:  o.ID.Hex(),
		Notes: map[string]string{
			"orderId":       o.ID.Hex(),
			"customerName":  o.Customer.Name,
			"customerEmail": o.Customer.Email,
		},
	})
	if err != nil {
		log.Printf("payment intent failed order=%s: %v", o.ID.Hex(), err)
		return nil, err
	}

	now := l.now()
	updated, err := l.Orders.UpdatePayment(ctx, id, store.PaymentPatch{
		Payment: models.Payment{
			Provider:    models.ProviderRazorpay,
			Status:      models.PaymentRequiresPaymentMethod,
			Currency:    intent.Currency,
			Amount:      models.FromMinor(intent.Amount),
			ReferenceID: intent.ProviderOrderRef,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Expect:       []models.PaymentStatus{o.Payment.Status},
		ExpectStatus: []models.OrderStatus{models.OrderPending},
	})
	if errors.Is(err, store.ErrStale) {
		return nil, apperr.Conflict("order changed while creating the intent")
	}
	if err != nil {
		return nil, err
	}
	l.publish(EventPaymentInitiated, updated)

	return &CheckoutIntent{
		ProviderOrderRef: intent.ProviderOrderRef,
		Amount:           intent.Amount,
		Currency:         intent.Currency,
		Key:              l.Gateway.PublicKey(),
	}, nil
}

// VerifyPayment settles a checkout callback. A valid signature confirms the
// order and marks the payment succeeded. An invalid one marks the payment
// failed and returns ErrSignatureMismatch. Replaying a callback that already
// succeeded returns the order as it is.
func (l *OrderLifecycle) VerifyPayment(ctx context.Context, cb models.PaymentCallback) (*models.Order, error) {
	cb = cb.Normalize()
	verr := &apperr.ValidationError{}
	if cb.OrderID == "" {
		verr.Add("orderId", "is required")
	}
	if cb.ProviderOrderRef == "" {
		verr.Add("providerOrderRef", "is required")
	}
	if cb.ProviderPaymentRef == "" {
		verr.Add("providerPaymentRef", "is required")
	}
	if cb.Signature == "" {
		verr.Add("signature", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	id, err := parseOrderID(cb.OrderID)
	if err != nil {
		return nil, err
	}
	o, err := l.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !o.Payment.Status.In(models.InFlightPaymentStatuses) {
		return settled(o, cb)
	}
	if o.Payment.ReferenceID != cb.ProviderOrderRef {
		return nil, apperr.Invalid("providerOrderRef", "does not match the payment created for this order")
	}
	if cb.Amount != nil {
		stored, err := models.ToMinor(o.Payment.Amount)
		if err != nil || stored != *cb.Amount {
			return nil, apperr.Invalid("amount", "does not match the payment created for this order")
		}
	}

	now := l.now()
	next := o.Payment
	next.UpdatedAt = now

	if !l.Gateway.VerifyCallback(cb.ProviderOrderRef, cb.ProviderPaymentRef, cb.Signature) {
		next.Status = models.PaymentFailed
		next.ErrorMessage = signatureMismatchMessage
		updated, err := l.Orders.UpdatePayment(ctx, id, store.PaymentPatch{
			Payment: next,
			Expect:  models.InFlightPaymentStatuses,
		})
		if errors.Is(err, store.ErrStale) {
			return nil, apperr.ErrSignatureMismatch
		}
		if err != nil {
			return nil, err
		}
		log.Printf("payment signature mismatch order=%s ref=%s", id.Hex(), cb.ProviderOrderRef)
		l.publish(EventPaymentFailed, updated)
		return nil, apperr.ErrSignatureMismatch
	}

	return l.recordPaid(ctx, o, cb, now)
}

// recordPaid marks the payment succeeded. A pending order is confirmed in
// the same write; any other status is kept. The write is guarded on the
// order status it was computed from, so an admin move that lands first is
// re-read instead of overwritten. A replay that lost the race to an
// identical callback returns the stored order without publishing.
func (l *OrderLifecycle) recordPaid(ctx context.Context, o *models.Order, cb models.PaymentCallback, now time.Time) (*models.Order, error) {
	for attempt := 1; ; attempt++ {
		next := o.Payment
		next.Status = models.PaymentSucceeded
		next.ChargeID = cb.ProviderPaymentRef
		next.ErrorMessage = ""
		next.UpdatedAt = now
		patch := store.PaymentPatch{
			Payment:      next,
			Expect:       models.InFlightPaymentStatuses,
			ExpectStatus: []models.OrderStatus{o.Status},
		}
		if o.Status == models.OrderPending {
			patch.Status = models.OrderConfirmed
		}

		updated, err := l.Orders.UpdatePayment(ctx, o.ID, patch)
		if err == nil {
			log.Printf("payment verified order=%s charge=%s status=%s", o.ID.Hex(), cb.ProviderPaymentRef, updated.Status)
			l.publish(EventOrderPaid, updated)
			return updated, nil
		}
		if !errors.Is(err, store.ErrStale) {
			return nil, err
		}
		current, err := l.Orders.FindByID(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if !current.Payment.Status.In(models.InFlightPaymentStatuses) {
			return settled(current, cb)
		}
		if current.Payment.ReferenceID != cb.ProviderOrderRef || attempt == writeAttempts {
			return nil, apperr.Conflict("order payment changed concurrently")
		}
		o = current
	}
}

// settled decides a callback for an order whose payment is no longer in
// flight.
func settled(o *models.Order, cb models.PaymentCallback) (*models.Order, error) {
	switch o.Payment.Status {
	case models.PaymentSucceeded:
		if o.Payment.ReferenceID == cb.ProviderOrderRef && o.Payment.ChargeID == cb.ProviderPaymentRef {
			return o, nil
		}
		return nil, apperr.Conflict("order is already paid")
	case models.PaymentCODPending:
		return nil, apperr.Conflict("order is cash on delivery")
	case models.PaymentFailed:
		return nil, apperr.Conflict("payment failed, create a new payment intent")
	default:
		return nil, apperr.Conflict("no payment in progress for this order")
	}
}

// CashOnDelivery confirms the order with a cod_pending payment. It never
// calls the gateway.
func (l *OrderLifecycle) CashOnDelivery(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	o, err := l.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Payment.Status == models.PaymentCODPending {
		return o, nil
	}
	if err := startable(o); err != nil {
		return nil, err
	}

	now := l.now()
	updated, err := l.Orders.UpdatePayment(ctx, id, store.PaymentPatch{
		Payment: models.Payment{
			Provider:  models.ProviderCOD,
			Status:    models.PaymentCODPending,
			Currency:  l.DefaultCurrency,
			Amount:    o.TotalAmount,
			Method:    "cash",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Status:       models.OrderConfirmed,
		Expect:       models.StartablePaymentStatuses,
		ExpectStatus: []models.OrderStatus{models.OrderPending},
	})
	if errors.Is(err, store.ErrStale) {
		current, ferr := l.Orders.FindByID(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		if current.Payment.Status == models.PaymentCODPending {
			return current, nil
		}
		if err := startable(current); err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("order payment changed concurrently")
	}
	if err != nil {
		return nil, err
	}
	log.Printf("order confirmed as cash on delivery id=%s", id.Hex())
	l.publish(EventOrderCOD, updated)
	return updated, nil
}

// SetStatus is the admin override. Any status may be set except out of a
// terminal one.
func (l *OrderLifecycle) SetStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, apperr.Invalid("status", "must be one of "+joinStatuses())
	}
	for attempt := 1; ; attempt++ {
		o, err := l.Orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if o.Status == next {
			return o, nil
		}
		if o.Status.Terminal() {
			return nil, apperr.Conflict("order is already " + string(o.Status))
		}

		updated, err := l.Orders.UpdateStatus(ctx, id, o.Status, next, l.now())
		if errors.Is(err, store.ErrStale) {
			if attempt == writeAttempts {
				return nil, apperr.Conflict("order status changed concurrently")
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Printf("order status changed id=%s from=%s to=%s", id.Hex(), o.Status, next)
		l.publish(EventOrderStatusChange, updated)
		return updated, nil
	}
}

// startable rejects orders that may not begin a new payment.
func startable(o *models.Order) error {
	if o.Status != models.OrderPending {
		return apperr.Conflict("order is " + string(o.Status))
	}
	if !o.Payment.Status.In(models.StartablePaymentStatuses) {
		return apperr.Conflict("payment is " + string(o.Payment.Status))
	}
	return nil
}

func (l *OrderLifecycle) gatewayTimeout() time.Duration {
	if l.GatewayTimeout <= 0 {
		return payment.DefaultTimeout
	}
	return l.GatewayTimeout
}

func parseOrderID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid("orderId", "is not a valid order id")
	}
	return id, nil
}

func joinStatuses() string {
	s := make([]string, len(models.OrderStatuses))
	for i, st := range models.OrderStatuses {
		s[i] = string(st)
	}
	return strings.Join(s, ", ")
}
