package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/apperr"
	"chocobliss/store"
)

// ProductController handles the public catalog
type ProductController struct {
	Catalog store.CatalogStore
}

// NewProductController creates a new ProductController
func NewProductController(catalog store.CatalogStore) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetProducts lists products, optionally filtered by category and featured
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := pc.Catalog.FindByFilter(r.Context(), store.ProductFilter{
		Category:     q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductByID returns a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := pc.Catalog.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// GetCategories returns the distinct categories in the catalog
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := pc.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func productID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("product")
	}
	return id, nil
}
