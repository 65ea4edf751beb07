package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/apperr"
	"chocobliss/models"
)

// GetDetail is Get with item products resolved.
func (l *OrderLifecycle) GetDetail(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	o, err := l.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out, err := l.Detail(ctx, []models.Order{*o})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListDetail is List with item products resolved.
func (l *OrderLifecycle) ListDetail(ctx context.Context) ([]models.OrderDetail, error) {
	orders, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	return l.Detail(ctx, orders)
}

// Detail resolves each item's product from the catalog. Every product is
// looked up once per call. Without a catalog all products stay nil.
func (l *OrderLifecycle) Detail(ctx context.Context, orders []models.Order) ([]models.OrderDetail, error) {
	products := map[primitive.ObjectID]*models.Product{}
	out := make([]models.OrderDetail, len(orders))
	for i, o := range orders {
		d := models.OrderDetail{Order: o, Items: make([]models.OrderItemDetail, len(o.Items))}
		for j, it := range o.Items {
			p, ok := products[it.Product]
			if !ok && l.Catalog != nil {
				found, err := l.Catalog.FindByID(ctx, it.Product)
				switch {
				case errors.Is(err, apperr.ErrNotFound):
				case err != nil:
					return nil, fmt.Errorf("resolve product %s: %w", it.Product.Hex(), err)
				default:
					p = found
				}
				products[it.Product] = p
			}
			d.Items[j] = models.OrderItemDetail{OrderItem: it, Product: p}
		}
		out[i] = d
	}
	return out, nil
}
