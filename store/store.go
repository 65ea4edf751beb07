// Package store holds the persistence contracts for orders, the product
// catalog and users, with a Mongo-backed and an in-memory implementation of
// each. A Set is chosen once at startup.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/models"
)

// ErrStale is returned by a conditional write when the order exists but no
// longer matches the state the write was guarded on.
var ErrStale = errors.New("store: order state changed concurrently")

// PaymentPatch replaces an order's payment sub-record. When Expect is
// non-empty the write only applies while payment.status is one of Expect,
// and when ExpectStatus is non-empty only while the order status is one of
// ExpectStatus. A non-empty Status also moves the order status in the same
// write.
type PaymentPatch struct {
	Payment      models.Payment
	Status       models.OrderStatus
	Expect       []models.PaymentStatus
	ExpectStatus []models.OrderStatus
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// UpdateStatus moves the order from one status to another. It returns
	// ErrStale when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (*models.Order, error)
	UpdatePayment(ctx context.Context, id primitive.ObjectID, patch PaymentPatch) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
}

// ProductFilter narrows a catalog listing. An empty Category or "all"
// means any category.
type ProductFilter struct {
	Category     string
	FeaturedOnly bool
	SortByName   bool
}

type CatalogStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByFilter(ctx context.Context, f ProductFilter) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// Set bundles the stores the server runs on.
type Set struct {
	Orders  OrderStore
	Catalog CatalogStore
	Users   UserStore
	Backend string
}

func categoryFilter(c string) string {
	if c == "all" {
		return ""
	}
	return c
}
