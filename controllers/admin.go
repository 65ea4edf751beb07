package controllers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"chocobliss/apperr"
	"chocobliss/models"
	"chocobliss/store"
)

const maxImageBytes = 5 << 20

// AdminController handles catalog administration
type AdminController struct {
	Catalog   store.CatalogStore
	ImagesDir string
	Now       func() time.Time
}

func NewAdminController(catalog store.CatalogStore, imagesDir string) *AdminController {
	return &AdminController{Catalog: catalog, ImagesDir: imagesDir, Now: time.Now}
}

type productResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

// GetProducts lists the whole catalog by name
func (ac *AdminController) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := ac.Catalog.FindByFilter(r.Context(), store.ProductFilter{SortByName: true})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct adds a product to the catalog
func (ac *AdminController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var draft models.ProductDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.Validate(draft); err != nil {
		writeError(w, r, err)
		return
	}

	p := draft.Product(ac.Now().UTC())
	created, err := ac.Catalog.Create(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, productResponse{Message: "Product created successfully", Product: created})
}

// UpdateProduct applies a partial update
func (ac *AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var update models.ProductUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.Validate(update); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := ac.Catalog.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse{Message: "Product updated successfully", Product: product})
}

// UpdateProductImage stores an uploaded image and points the product at it
func (ac *AdminController) UpdateProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := ac.Catalog.FindByID(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, r, apperr.Invalid("image", "upload must be a multipart form under 5MB"))
		return
	}
	file, handler, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, apperr.Invalid("image", "no image file provided"))
		return
	}
	defer file.Close()

	if handler.Size > maxImageBytes {
		writeError(w, r, apperr.Invalid("image", "must be at most 5MB"))
		return
	}
	if !strings.HasPrefix(handler.Header.Get("Content-Type"), "image/") {
		writeError(w, r, apperr.Invalid("image", "only image files are allowed"))
		return
	}
	name := cleanFilename(handler.Filename)
	if name == "" || strings.Trim(name, ".") == "" {
		writeError(w, r, apperr.Invalid("image", "filename is not usable"))
		return
	}

	uploadPath := filepath.Join(ac.ImagesDir, "products")
	if err := os.MkdirAll(uploadPath, 0o755); err != nil {
		writeError(w, r, fmt.Errorf("create upload directory: %w", err))
		return
	}
	dst, err := os.Create(filepath.Join(uploadPath, name))
	if err != nil {
		writeError(w, r, fmt.Errorf("create image file: %w", err))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, r, fmt.Errorf("save image: %w", err))
		return
	}

	image := "/images/products/" + name
	product, err := ac.Catalog.Update(r.Context(), id, models.ProductUpdate{Image: &image})
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("product image updated id=%s image=%s", id.Hex(), image)
	writeJSON(w, http.StatusOK, productResponse{Message: "Product image updated successfully", Product: product})
}

var (
	spaceRun    = regexp.MustCompile(`\s+`)
	unsafeChars = regexp.MustCompile(`[^a-z0-9.-]`)
)

// cleanFilename lowercases, turns whitespace into dashes and drops anything
// outside [a-z0-9.-].
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ToLower(name)
	name = spaceRun.ReplaceAllString(name, "-")
	return unsafeChars.ReplaceAllString(name, "")
}
