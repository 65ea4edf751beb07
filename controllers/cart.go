package controllers

import (
	"net/http"

	"chocobliss/models"
	"chocobliss/services"
	"chocobliss/store"
)

// CartController prices client-side carts. The server keeps no cart state.
type CartController struct {
	Catalog store.CatalogStore
}

// NewCartController creates a new CartController
func NewCartController(catalog store.CatalogStore) *CartController {
	return &CartController{Catalog: catalog}
}

// Quote returns current prices and subtotals for the posted cart
func (cc *CartController) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.CartQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	quote, err := services.QuoteCart(r.Context(), cc.Catalog, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
