package controllers

import (
	"errors"
	"net/http"

	"chocobliss/apperr"
	"chocobliss/models"
	"chocobliss/services"
)

// PaymentController exposes the checkout payment flow.
type PaymentController struct {
	Lifecycle *services.OrderLifecycle
}

func NewPaymentController(lifecycle *services.OrderLifecycle) *PaymentController {
	return &PaymentController{Lifecycle: lifecycle}
}

type orderRef struct {
	OrderID  string `json:"orderId"`
	Currency string `json:"currency"`
}

func (b orderRef) validate() error {
	if b.OrderID == "" {
		return apperr.Invalid("orderId", "is required")
	}
	return nil
}

// CreatePaymentOrder opens a provider payment for an existing order
func (pc *PaymentController) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var body orderRef
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	intent, err := pc.Lifecycle.CreatePaymentIntent(r.Context(), body.OrderID, body.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

type verifyResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	OrderID string        `json:"orderId,omitempty"`
	Order   *models.Order `json:"order,omitempty"`
	Kind    string        `json:"kind,omitempty"`
}

// VerifyPayment settles the checkout callback
func (pc *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var cb models.PaymentCallback
	if err := decodeJSON(w, r, &cb); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := pc.Lifecycle.VerifyPayment(r.Context(), cb)
	if errors.Is(err, apperr.ErrSignatureMismatch) {
		writeJSON(w, apperr.HTTPStatus(err), verifyResponse{
			Message: "Payment verification failed",
			Kind:    apperr.Kind(err),
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Success: true,
		Message: "Payment verified successfully",
		OrderID: order.ID.Hex(),
		Order:   order,
	})
}

type codResponse struct {
	Message string             `json:"message"`
	OrderID string             `json:"orderId"`
	Payment models.Payment     `json:"payment"`
	Status  models.OrderStatus `json:"status"`
}

// CashOnDelivery confirms an order for payment on delivery
func (pc *PaymentController) CashOnDelivery(w http.ResponseWriter, r *http.Request) {
	var body orderRef
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := pc.Lifecycle.CashOnDelivery(r.Context(), body.OrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codResponse{
		Message: "Order set to Cash on Delivery",
		OrderID: order.ID.Hex(),
		Payment: order.Payment,
		Status:  order.Status,
	})
}
