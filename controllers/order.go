// controllers/order.go
package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"chocobliss/models"
	"chocobliss/services"
)

// OrderController handles order-related requests
type OrderController struct {
	Lifecycle *services.OrderLifecycle
}

// NewOrderController creates a new OrderController
func NewOrderController(lifecycle *services.OrderLifecycle) *OrderController {
	return &OrderController{Lifecycle: lifecycle}
}

type createOrderResponse struct {
	Message string        `json:"message"`
	OrderID string        `json:"orderId"`
	Order   *models.Order `json:"order"`
}

// CreateOrder places a new order from a checkout submission. It does not
// require a signed-in user.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var draft models.OrderDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := oc.Lifecycle.Create(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{
		Message: "Order placed successfully!",
		OrderID: order.ID.Hex(),
		Order:   order,
	})
}

// GetOrders lists every order, newest first, with item products filled in
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Lifecycle.ListDetail(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := oc.Lifecycle.GetDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateOrderStatus is the admin status override
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := oc.Lifecycle.SetStatus(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
