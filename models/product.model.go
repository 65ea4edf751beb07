package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the closed set of catalog categories.
var Categories = []string{
	"Kunafa Special",
	"Classic Chocolate Bars",
	"Signature Blends",
	"Inspired Bars",
	"Premium Chocolate",
	"Special Bar",
	"Filling Chocolates",
}

// ValidCategory reports whether c is a known catalog category.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

const DefaultProductImage = "/images/placeholder-chocolate.jpg"

// ProductOption is a purchasable size or variant of a product
type ProductOption struct {
	Name        string  `bson:"name" json:"name" validate:"required"`
	Price       float64 `bson:"price" json:"price" validate:"gt=0"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
}

// Product represents a catalog product
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	Options     []ProductOption    `bson:"options" json:"options"`
	Featured    bool               `bson:"featured" json:"featured"`
	InStock     bool               `bson:"inStock" json:"inStock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Option returns the named option of the product.
func (p *Product) Option(name string) (ProductOption, bool) {
	for _, o := range p.Options {
		if o.Name == name {
			return o, true
		}
	}
	return ProductOption{}, false
}

// ProductDraft is the admin payload for creating a product.
type ProductDraft struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required,category"`
	Description string          `json:"description" validate:"required"`
	Image       string          `json:"image"`
	Options     []ProductOption `json:"options" validate:"required,min=1,dive"`
	Featured    bool            `json:"featured"`
	InStock     *bool           `json:"inStock"`
}

// ProductUpdate is a partial admin update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Category    *string          `json:"category" validate:"omitempty,category"`
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Image       *string          `json:"image"`
	Options     *[]ProductOption `json:"options" validate:"omitempty,min=1,dive"`
	Featured    *bool            `json:"featured"`
	InStock     *bool            `json:"inStock"`
}

// Product builds the product document for a validated draft.
func (d ProductDraft) Product(now time.Time) Product {
	p := Product{
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Image:       d.Image,
		Options:     d.Options,
		Featured:    d.Featured,
		InStock:     true,
		CreatedAt:   now,
	}
	if p.Image == "" {
		p.Image = DefaultProductImage
	}
	if d.InStock != nil {
		p.InStock = *d.InStock
	}
	return p
}

// Apply copies the non-nil fields of u onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Options != nil {
		p.Options = *u.Options
	}
	if u.Featured != nil {
		p.Featured = *u.Featured
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
}
