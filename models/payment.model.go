package models

import "time"

type PaymentProvider string

const (
	ProviderRazorpay PaymentProvider = "razorpay"
	ProviderPaypal   PaymentProvider = "paypal"
	ProviderStripe   PaymentProvider = "stripe"
	ProviderCOD      PaymentProvider = "cod"
)

type PaymentStatus string

const (
	PaymentNotInitiated          PaymentStatus = "not_initiated"
	PaymentRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentRequiresAction        PaymentStatus = "requires_action"
	PaymentProcessing            PaymentStatus = "processing"
	PaymentSucceeded             PaymentStatus = "succeeded"
	PaymentFailed                PaymentStatus = "failed"
	PaymentRefunded              PaymentStatus = "refunded"
	PaymentCODPending            PaymentStatus = "cod_pending"
)

// InFlightPaymentStatuses are the states a provider callback may still resolve.
var InFlightPaymentStatuses = []PaymentStatus{
	PaymentRequiresPaymentMethod, PaymentRequiresAction, PaymentProcessing,
}

// StartablePaymentStatuses are the states from which a new intent or COD may be set up.
var StartablePaymentStatuses = []PaymentStatus{
	PaymentNotInitiated, PaymentRequiresPaymentMethod, PaymentFailed,
}

// In reports whether s is one of set.
func (s PaymentStatus) In(set []PaymentStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Payment is the payment sub-record embedded in an order
type Payment struct {
	Provider     PaymentProvider `bson:"provider,omitempty" json:"provider,omitempty"`
	Status       PaymentStatus   `bson:"status" json:"status"`
	Currency     string          `bson:"currency,omitempty" json:"currency,omitempty"`
	Amount       float64         `bson:"amount,omitempty" json:"amount,omitempty"`
	ReferenceID  string          `bson:"referenceId,omitempty" json:"referenceId,omitempty"`
	ChargeID     string          `bson:"chargeId,omitempty" json:"chargeId,omitempty"`
	Method       string          `bson:"method,omitempty" json:"method,omitempty"`
	ErrorMessage string          `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt    time.Time       `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time       `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// PaymentCallback is the verification payload posted after checkout.
// Both the generic names and the Razorpay checkout names are accepted.
type PaymentCallback struct {
	OrderID            string `json:"orderId"`
	ProviderOrderRef   string `json:"providerOrderRef"`
	ProviderPaymentRef string `json:"providerPaymentRef"`
	Signature          string `json:"signature"`
	Amount             *int64 `json:"amount,omitempty"`

	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"razorpay_signature,omitempty"`
}

// Normalize folds the Razorpay field names into the generic ones.
func (c PaymentCallback) Normalize() PaymentCallback {
	if c.ProviderOrderRef == "" {
		c.ProviderOrderRef = c.RazorpayOrderID
	}
	if c.ProviderPaymentRef == "" {
		c.ProviderPaymentRef = c.RazorpayPaymentID
	}
	if c.Signature == "" {
		c.Signature = c.RazorpaySignature
	}
	return c
}
