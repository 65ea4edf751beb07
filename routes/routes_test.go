package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chocobliss/controllers"
	"chocobliss/middleware"
	"chocobliss/models"
	"chocobliss/payment"
	"chocobliss/services"
	"chocobliss/store"
	"chocobliss/utils"
)

const rzpSecret = "rzp_test_secret"

type testApp struct {
	srv       *httptest.Server
	set       store.Set
	tokens    *utils.TokenIssuer
	feed      *controllers.OrderFeed
	providerN *atomic.Int32
	imagesDir string
}

// fakeRazorpay answers POST /v1/orders the way the provider does.
func fakeRazorpay(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       fmt.Sprintf("order_rzp_%d", n),
			"amount":   body.Amount,
			"currency": body.Currency,
			"status":   "created",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	calls := &atomic.Int32{}
	provider := fakeRazorpay(t, calls)
	set := store.NewMemorySet()
	tokens := utils.NewTokenIssuer("jwt-test", time.Hour)
	auth := middleware.NewAuth(tokens)

	gateway := payment.NewRazorpay(payment.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: rzpSecret, BaseURL: provider.URL})
	lifecycle := services.NewOrderLifecycle(set.Orders, set.Catalog, gateway)
	feed := controllers.NewOrderFeed()
	lifecycle.Subscribe(feed)

	imagesDir := t.TempDir()
	handler := NewHandler(Controllers{
		Users:    controllers.NewUserController(set.Users, tokens),
		Products: controllers.NewProductController(set.Catalog),
		Cart:     controllers.NewCartController(set.Catalog),
		Orders:   controllers.NewOrderController(lifecycle),
		Payments: controllers.NewPaymentController(lifecycle),
		Admin:    controllers.NewAdminController(set.Catalog, imagesDir),
		Feed:     feed,
	}, auth, imagesDir)

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		feed.Close()
		srv.Close()
	})
	return &testApp{srv: srv, set: set, tokens: tokens, feed: feed, providerN: calls, imagesDir: imagesDir}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := a.set.Users.Create(context.Background(), &models.User{
		Name: "Admin", Email: fmt.Sprintf("admin-%d@dschocobliss.in", time.Now().UnixNano()),
		Password: string(hash), Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	tok, err := a.tokens.Generate(u.ID.Hex(), u.Email, u.Role)
	require.NoError(t, err)
	return tok
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type errResp struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

// pistaDraft orders two Medium Pista Kunafa at the fixture price.
func pistaDraft() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"name":  "Asha Rao",
			"email": "asha@example.com",
			"phone": "9876543210",
			"address": map[string]any{
				"street": "12 MG Road", "city": "Bengaluru", "state": "Karnataka", "pincode": "560001",
			},
		},
		"items": []map[string]any{
			{"product": store.FixtureProductID(1).Hex(), "option": "Medium", "quantity": 2, "price": 279},
		},
		"totalAmount": 558,
	}
}

type createdOrder struct {
	Message string       `json:"message"`
	OrderID string       `json:"orderId"`
	Order   models.Order `json:"order"`
}

func (a *testApp) placeOrder(t *testing.T) createdOrder {
	t.Helper()
	resp, raw := a.do(t, http.MethodPost, "/api/orders", "", pistaDraft())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[createdOrder](t, raw)
}

func TestHealthAndNotFound(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp, raw := app.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "D's Choco Bliss API is running!", decode[map[string]string](t, raw)["message"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, raw = app.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", decode[map[string]string](t, raw)["error"])
}

func TestProducts(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp, raw := app.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]models.Product](t, raw)
	assert.Len(t, all, len(store.FixtureProducts()))

	_, raw = app.do(t, http.MethodGet, "/api/products?category=Kunafa%20Special", "", nil)
	for _, p := range decode[[]models.Product](t, raw) {
		assert.Equal(t, "Kunafa Special", p.Category)
	}

	_, raw = app.do(t, http.MethodGet, "/api/products?featured=true&category=all", "", nil)
	featured := decode[[]models.Product](t, raw)
	assert.Len(t, featured, len(all)-1)

	_, raw = app.do(t, http.MethodGet, "/api/products/categories/list", "", nil)
	assert.Contains(t, decode[[]string](t, raw), "Classic Chocolate Bars")

	resp, raw = app.do(t, http.MethodGet, "/api/products/"+store.FixtureProductID(1).Hex(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Pista Kunafa", decode[models.Product](t, raw).Name)

	resp, _ = app.do(t, http.MethodGet, "/api/products/not-a-real-id", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	draft := pistaDraft()
	draft["totalAmount"] = 600
	resp, raw := app.do(t, http.MethodPost, "/api/orders", "", draft)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errResp](t, raw)
	assert.Equal(t, "validation", body.Kind)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "totalAmount", body.Details[0].Field)

	draft = pistaDraft()
	draft["customer"].(map[string]any)["email"] = "not-an-email"
	resp, raw = app.do(t, http.MethodPost, "/api/orders", "", draft)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "customer.email", decode[errResp](t, raw).Details[0].Field)

	resp, _ = app.do(t, http.MethodPost, "/api/orders", "", "{broken")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	orders, err := app.set.Orders.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOnlinePaymentFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	placed := app.placeOrder(t)
	assert.Equal(t, "Order placed successfully!", placed.Message)
	assert.Equal(t, models.OrderPending, placed.Order.Status)
	assert.Equal(t, models.PaymentNotInitiated, placed.Order.Payment.Status)

	resp, raw := app.do(t, http.MethodPost, "/api/payments/create-order", "", map[string]any{"orderId": placed.OrderID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	intent := decode[services.CheckoutIntent](t, raw)
	assert.Equal(t, "order_rzp_1", intent.ProviderOrderRef)
	assert.Equal(t, int64(55800), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "rzp_test_key", intent.Key)

	cb := map[string]any{
		"orderId":             placed.OrderID,
		"razorpay_order_id":   intent.ProviderOrderRef,
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  payment.Sign(intent.ProviderOrderRef, "pay_123", rzpSecret),
		"amount":              intent.Amount,
	}
	for i := 0; i < 2; i++ {
		resp, raw = app.do(t, http.MethodPost, "/api/payments/verify-payment", "", cb)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		body := decode[map[string]any](t, raw)
		assert.Equal(t, true, body["success"])
	}

	resp, raw = app.do(t, http.MethodGet, "/api/orders/"+placed.OrderID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order := decode[models.OrderDetail](t, raw)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, models.PaymentSucceeded, order.Payment.Status)
	assert.Equal(t, "pay_123", order.Payment.ChargeID)
	assert.Equal(t, 558.0, order.Payment.Amount)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, "Pista Kunafa", order.Items[0].Product.Name)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int32(1), app.providerN.Load())
}

func TestVerifyPayment_Tampered(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	placed := app.placeOrder(t)

	_, raw := app.do(t, http.MethodPost, "/api/payments/create-order", "", map[string]any{"orderId": placed.OrderID})
	intent := decode[services.CheckoutIntent](t, raw)

	resp, raw := app.do(t, http.MethodPost, "/api/payments/verify-payment", "", map[string]any{
		"orderId":            placed.OrderID,
		"providerOrderRef":   intent.ProviderOrderRef,
		"providerPaymentRef": "pay_123",
		"signature":          payment.Sign(intent.ProviderOrderRef, "pay_124", rzpSecret),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, raw)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "signature_mismatch", body["kind"])

	_, raw = app.do(t, http.MethodGet, "/api/orders/"+placed.OrderID, "", nil)
	order := decode[models.OrderDetail](t, raw)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentFailed, order.Payment.Status)
}

func TestCashOnDelivery(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	placed := app.placeOrder(t)

	resp, raw := app.do(t, http.MethodPost, "/api/payments/cod", "", map[string]any{"orderId": placed.OrderID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	body := decode[struct {
		Message string             `json:"message"`
		Payment models.Payment     `json:"payment"`
		Status  models.OrderStatus `json:"status"`
	}](t, raw)
	assert.Equal(t, "Order set to Cash on Delivery", body.Message)
	assert.Equal(t, models.PaymentCODPending, body.Payment.Status)
	assert.Equal(t, models.ProviderCOD, body.Payment.Provider)
	assert.Equal(t, models.OrderConfirmed, body.Status)
	assert.Zero(t, app.providerN.Load())

	resp, raw = app.do(t, http.MethodPost, "/api/payments/create-order", "", map[string]any{"orderId": placed.OrderID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", decode[errResp](t, raw).Kind)

	resp, _ = app.do(t, http.MethodPost, "/api/payments/cod", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.do(t, http.MethodPost, "/api/payments/cod", "", map[string]any{"orderId": "650000000000000000009999"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminOrders(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	placed := app.placeOrder(t)
	admin := app.adminToken(t)

	resp, _ := app.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userTok, err := app.tokens.Generate("650000000000000000000abc", "u@example.com", models.RoleUser)
	require.NoError(t, err)
	resp, _ = app.do(t, http.MethodGet, "/api/orders", userTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := app.do(t, http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[[]models.OrderDetail](t, raw)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Items, 1)
	require.NotNil(t, listed[0].Items[0].Product)
	assert.Equal(t, store.FixtureProductID(1), listed[0].Items[0].Product.ID)

	path := "/api/orders/" + placed.OrderID + "/status"
	resp, raw = app.do(t, http.MethodPatch, path, admin, map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	order := decode[models.Order](t, raw)
	assert.Equal(t, models.OrderDelivered, order.Status)
	assert.NotNil(t, order.DeliveryDate)

	resp, _ = app.do(t, http.MethodPatch, path, admin, map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = app.do(t, http.MethodPatch, path, admin, map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	signup := map[string]any{"name": "Asha", "email": "Asha@Example.com", "password": "secret1", "phone": "9876543210"}
	resp, raw := app.do(t, http.MethodPost, "/api/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[map[string]any](t, raw)
	assert.NotEmpty(t, created["token"])
	assert.NotContains(t, string(raw), "password")

	resp, raw = app.do(t, http.MethodPost, "/api/auth/signup", "", signup)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email", decode[errResp](t, raw).Details[0].Field)

	resp, raw = app.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{"name": "A", "email": "x", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, decode[errResp](t, raw).Details, 3)

	resp, raw = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decode[errResp](t, raw).Error)

	resp, raw = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, raw)
	assert.NotNil(t, login.User.LastLogin)

	resp, raw = app.do(t, http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "asha@example.com")

	resp, raw = app.do(t, http.MethodPut, "/api/auth/profile", login.Token, map[string]any{
		"name": "Asha Rao", "address": map[string]string{"city": "Mysuru"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	profile := decode[struct {
		User models.User `json:"user"`
	}](t, raw)
	assert.Equal(t, "Asha Rao", profile.User.Name)
	assert.Equal(t, "9876543210", profile.User.Phone)
	assert.Equal(t, "Mysuru", profile.User.Address.City)

	resp, _ = app.do(t, http.MethodPost, "/api/auth/change-password", login.Token, map[string]string{"currentPassword": "nope", "newPassword": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = app.do(t, http.MethodPost, "/api/auth/change-password", login.Token, map[string]string{"currentPassword": "secret1", "newPassword": "secret2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = app.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartQuote(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp, raw := app.do(t, http.MethodPost, "/api/cart/quote", "", map[string]any{
		"items": []map[string]any{
			{"product": store.FixtureProductID(1).Hex(), "option": "Small", "quantity": 3},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	q := decode[models.Quote](t, raw)
	assert.Equal(t, 237.0, q.TotalAmount)

	resp, _ = app.do(t, http.MethodPost, "/api/cart/quote", "", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminProducts(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	admin := app.adminToken(t)

	resp, raw := app.do(t, http.MethodGet, "/api/admin/products", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Product](t, raw)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Name, list[i].Name)
	}

	resp, raw = app.do(t, http.MethodPost, "/api/admin/products", admin, map[string]any{
		"name": "Hazelnut Praline", "category": "Filling Chocolates", "description": "Praline centre",
		"options": []map[string]any{{"name": "Box of 6", "price": 450}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[struct {
		Product models.Product `json:"product"`
	}](t, raw).Product
	assert.True(t, created.InStock)
	assert.Equal(t, models.DefaultProductImage, created.Image)

	resp, _ = app.do(t, http.MethodPost, "/api/admin/products", admin, map[string]any{
		"name": "Bad", "category": "Candles", "description": "x", "options": []map[string]any{{"name": "One", "price": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	path := "/api/admin/products/" + created.ID.Hex()
	resp, raw = app.do(t, http.MethodPut, path, admin, map[string]any{"inStock": false, "featured": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decode[struct {
		Product models.Product `json:"product"`
	}](t, raw).Product
	assert.False(t, updated.InStock)
	assert.True(t, updated.Featured)
	assert.Equal(t, "Hazelnut Praline", updated.Name)

	// Out-of-stock products cannot be ordered.
	draft := pistaDraft()
	draft["items"] = []map[string]any{{"product": created.ID.Hex(), "option": "Box of 6", "quantity": 1, "price": 450}}
	draft["totalAmount"] = 450
	resp, _ = app.do(t, http.MethodPost, "/api/orders", "", draft)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.do(t, http.MethodPut, "/api/admin/products/"+store.FixtureProductID(999).Hex(), admin, map[string]any{"featured": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartImage(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAdminProductImage(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	admin := app.adminToken(t)
	url := app.srv.URL + "/api/admin/products/" + store.FixtureProductID(1).Hex() + "/image"

	upload := func(filename, contentType string) (*http.Response, []byte) {
		body, ct := multipartImage(t, filename, contentType, []byte("\x89PNG fake"))
		req, err := http.NewRequest(http.MethodPut, url, body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Authorization", "Bearer "+admin)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out bytes.Buffer
		_, _ = out.ReadFrom(resp.Body)
		return resp, out.Bytes()
	}

	resp, raw := upload("Pista Kunafa (New).PNG", "image/png")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	p := decode[struct {
		Product models.Product `json:"product"`
	}](t, raw).Product
	assert.Equal(t, "/images/products/pista-kunafa-new.png", p.Image)

	_, err := os.Stat(filepath.Join(app.imagesDir, "products", "pista-kunafa-new.png"))
	require.NoError(t, err)

	resp, raw = app.do(t, http.MethodGet, "/images/products/pista-kunafa-new.png", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(raw), "\x89PNG"))

	resp, _ = upload("notes.txt", "text/plain")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminOrderFeed(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	admin := app.adminToken(t)

	wsURL := "ws" + strings.TrimPrefix(app.srv.URL, "http") + "/api/admin/orders/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?access_token="+admin, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return app.feed.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	placed := app.placeOrder(t)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev services.OrderEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, services.EventOrderCreated, ev.Type)
	assert.Equal(t, placed.OrderID, ev.Order.ID.Hex())
}
