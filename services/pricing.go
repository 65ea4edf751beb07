package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/apperr"
	"chocobliss/models"
	"chocobliss/store"
)

// QuoteCart prices a client-local cart against the catalog.
func QuoteCart(ctx context.Context, catalog store.CatalogStore, req models.CartQuoteRequest) (*models.Quote, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	verr := &apperr.ValidationError{}
	quote := &models.Quote{Items: make([]models.QuoteLine, 0, len(req.Items))}
	total := decimal.Zero
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		id, _ := primitive.ObjectIDFromHex(item.Product)
		p, err := catalog.FindByID(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			verr.Add(field+".product", "product does not exist")
			continue
		}
		if err != nil {
			return nil, err
		}
		opt, ok := p.Option(item.Option)
		if !ok {
			verr.Add(field+".option", "product has no option "+item.Option)
			continue
		}
		line := models.LineTotal(opt.Price, item.Quantity)
		total = total.Add(line)
		quote.Items = append(quote.Items, models.QuoteLine{
			Product:  p.ID.Hex(),
			Name:     p.Name,
			Option:   opt.Name,
			Quantity: item.Quantity,
			Price:    opt.Price,
			Subtotal: models.Float(line),
			InStock:  p.InStock,
		})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	quote.TotalAmount = models.Float(total)
	return quote, nil
}

// checkAgainstCatalog verifies that every draft line names an in-stock
// product and option and carries the catalog's current price.
func checkAgainstCatalog(ctx context.Context, catalog store.CatalogStore, d *models.OrderDraft) error {
	verr := &apperr.ValidationError{}
	for i, item := range d.Items {
		field := fmt.Sprintf("items[%d]", i)
		id, _ := primitive.ObjectIDFromHex(item.Product)
		p, err := catalog.FindByID(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			verr.Add(field+".product", "product does not exist")
			continue
		}
		if err != nil {
			return err
		}
		if !p.InStock {
			verr.Add(field+".product", p.Name+" is out of stock")
			continue
		}
		opt, ok := p.Option(item.Option)
		if !ok {
			verr.Add(field+".option", "product has no option "+item.Option)
			continue
		}
		if !models.SameAmount(decimal.NewFromFloat(opt.Price), decimal.NewFromFloat(*item.Price)) {
			verr.Add(field+".price", fmt.Sprintf("must equal the current price %.2f", opt.Price))
		}
	}
	return verr.OrNil()
}
