package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"chocobliss/controllers"
	"chocobliss/middleware"
)

// Controllers bundles the handlers mounted under /api.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
	Admin    *controllers.AdminController
	Feed     *controllers.OrderFeed
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, auth *middleware.Auth, imagesDir string) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)

	// Auth routes
	api.HandleFunc("/auth/signup", c.Users.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", c.Users.Login).Methods(http.MethodPost)
	account := api.PathPrefix("/auth").Subrouter()
	account.Use(auth.RequireAuth)
	account.HandleFunc("/profile", c.Users.GetProfile).Methods(http.MethodGet)
	account.HandleFunc("/profile", c.Users.UpdateProfile).Methods(http.MethodPut)
	account.HandleFunc("/change-password", c.Users.ChangePassword).Methods(http.MethodPost)
	account.HandleFunc("/logout", c.Users.Logout).Methods(http.MethodPost)

	// Product routes
	api.HandleFunc("/products", c.Products.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/categories/list", c.Products.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", c.Products.GetProductByID).Methods(http.MethodGet)

	// Cart routes
	api.HandleFunc("/cart/quote", c.Cart.Quote).Methods(http.MethodPost)

	// Order routes
	api.Handle("/orders", auth.OptionalAuth(http.HandlerFunc(c.Orders.CreateOrder))).Methods(http.MethodPost)
	api.Handle("/orders", adminOnly(auth, c.Orders.GetOrders)).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", c.Orders.GetOrder).Methods(http.MethodGet)
	api.Handle("/orders/{id}/status", adminOnly(auth, c.Orders.UpdateOrderStatus)).Methods(http.MethodPatch)

	// Payment routes
	api.HandleFunc("/payments/create-order", c.Payments.CreatePaymentOrder).Methods(http.MethodPost)
	api.HandleFunc("/payments/verify-payment", c.Payments.VerifyPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/cod", c.Payments.CashOnDelivery).Methods(http.MethodPost)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireAuth)
	admin.Use(middleware.AdminOnly)
	admin.HandleFunc("/products", c.Admin.GetProducts).Methods(http.MethodGet)
	admin.HandleFunc("/products", c.Admin.CreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}/image", c.Admin.UpdateProductImage).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", c.Admin.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/orders/ws", c.Feed.Serve).Methods(http.MethodGet)

	// Static product images
	router.PathPrefix("/images/").Handler(http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir))))

	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
}

// NewHandler builds the router and wraps it with CORS and request logging.
func NewHandler(c Controllers, auth *middleware.Auth, imagesDir string) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c, auth, imagesDir)
	return middleware.Logging(middleware.CORS(router))
}

func adminOnly(auth *middleware.Auth, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(middleware.AdminOnly(h))
}
