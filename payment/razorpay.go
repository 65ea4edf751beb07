// Package payment is the only code that talks to the payment provider.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chocobliss/apperr"
	"chocobliss/models"
)

const (
	DefaultBaseURL = "https://api.razorpay.com"
	DefaultTimeout = 10 * time.Second
)

// IntentRequest describes the payment the provider should expect.
type IntentRequest struct {
	Amount   float64
	Currency string
	OrderID  string
	Notes    map[string]string
}

// Intent is the provider-side payment order.
type Intent struct {
	ProviderOrderRef string `json:"orderId"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
	HTTP      *http.Client
}

// Razorpay creates orders through the Razorpay REST API and verifies
// checkout callbacks.
type Razorpay struct {
	keyID   string
	secret  string
	baseURL string
	http    *http.Client
}

func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Razorpay{
		keyID:   cfg.KeyID,
		secret:  cfg.KeySecret,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
	}
}

// PublicKey is the key id handed to the checkout widget.
func (r *Razorpay) PublicKey() string { return r.keyID }

type createOrderReq struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Error    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateIntent registers a payment order with the provider. It fails with
// ErrInvalidAmount before any network call when the amount is not positive,
// and with ErrProviderUnavailable for any transport or API failure.
func (r *Razorpay) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	minor, err := models.ToMinor(req.Amount)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", apperr.ErrInvalidAmount, err)
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "INR"
	}

	body, err := json.Marshal(createOrderReq{
		Amount:   minor,
		Currency: currency,
		Receipt:  "order_" + req.OrderID,
		Notes:    req.Notes,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("encode razorpay order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", apperr.ErrProviderUnavailable, err)
	}
	httpReq.SetBasicAuth(r.keyID, r.secret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %w", apperr.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Intent{}, fmt.Errorf("%w: read response: %v", apperr.ErrProviderUnavailable, err)
	}
	var out createOrderResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return Intent{}, fmt.Errorf("%w: status %d: decode response: %v", apperr.ErrProviderUnavailable, resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(string(raw))
		if out.Error != nil {
			msg = out.Error.Code + " " + out.Error.Description
		}
		return Intent{}, fmt.Errorf("%w: status %d: %s", apperr.ErrProviderUnavailable, resp.StatusCode, msg)
	}
	if out.ID == "" {
		return Intent{}, fmt.Errorf("%w: empty order id", apperr.ErrProviderUnavailable)
	}
	if out.Currency == "" {
		out.Currency = currency
	}
	return Intent{ProviderOrderRef: out.ID, Amount: out.Amount, Currency: out.Currency}, nil
}

// VerifyCallback checks a checkout callback signature with the key secret.
func (r *Razorpay) VerifyCallback(orderRef, paymentRef, signature string) bool {
	return VerifySignature(orderRef, paymentRef, signature, r.secret)
}
