package store

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/models"
)

const unsplash = "https://images.unsplash.com/"

// FixtureProductID returns the stable id of the n-th fixture product (1-based).
func FixtureProductID(n int) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(fmt.Sprintf("65000000000000000000%04x", n))
	if err != nil {
		panic(err)
	}
	return id
}

// FixtureProducts is the catalog served when no live store is connected.
func FixtureProducts() []models.Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []models.Product{
		{
			Name:        "Pista Kunafa",
			Category:    "Kunafa Special",
			Description: "Delicious kunafa with pistachio filling wrapped in premium chocolate",
			Featured:    true,
			Image:       unsplash + "photo-1606313564200-e75d5e30476c?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Small", Price: 79, Description: "Perfect for a single serving"},
				{Name: "Medium", Price: 279, Description: "Great for sharing"},
				{Name: "Large", Price: 299, Description: "Family size"},
			},
		},
		{
			Name:        "Biscoff Kunafa",
			Category:    "Kunafa Special",
			Description: "Rich kunafa with Biscoff spread and premium chocolate coating",
			Featured:    true,
			Image:       unsplash + "photo-1558618047-3c8c76ca7d13?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Medium", Price: 349, Description: "Great for sharing"},
				{Name: "Large", Price: 599, Description: "Family size"},
			},
		},
		{
			Name:        "Plain Dark Chocolate Bar",
			Category:    "Classic Chocolate Bars",
			Description: "Pure dark chocolate bar with rich cocoa flavor",
			Featured:    true,
			Image:       unsplash + "photo-1511381939415-e44015466834?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Small", Price: 30, Description: "50g bar"},
				{Name: "Medium", Price: 70, Description: "100g bar"},
				{Name: "Large", Price: 100, Description: "150g bar"},
			},
		},
		{
			Name:        "Plain Milk Chocolate Bar",
			Category:    "Classic Chocolate Bars",
			Description: "Creamy milk chocolate bar with smooth texture",
			Featured:    true,
			Image:       unsplash + "photo-1578985545062-69928b1d9587?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Small", Price: 35, Description: "50g bar"},
				{Name: "Medium", Price: 75, Description: "100g bar"},
				{Name: "Large", Price: 105, Description: "150g bar"},
			},
		},
		{
			Name:        "Plain White Chocolate Bar",
			Category:    "Classic Chocolate Bars",
			Description: "Rich white chocolate bar with vanilla flavor",
			Image:       unsplash + "photo-1571019613454-1cb2f99b2d8b?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Small", Price: 40, Description: "50g bar"},
				{Name: "Medium", Price: 85, Description: "100g bar"},
				{Name: "Large", Price: 120, Description: "150g bar"},
			},
		},
		{
			Name:        "Marvel Double",
			Category:    "Signature Blends",
			Description: "Double layer chocolate with unique flavor combination",
			Featured:    true,
			Image:       unsplash + "photo-1549007994-cb92caebd54b?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Medium", Price: 139, Description: "100g bar"},
				{Name: "Large", Price: 210, Description: "150g bar"},
			},
		},
		{
			Name:        "Bounty Bar",
			Category:    "Inspired Bars",
			Description: "Coconut-filled chocolate bar inspired by the classic",
			Featured:    true,
			Image:       unsplash + "photo-1606312619070-d48b4c652a52?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "2 Pcs", Price: 130, Description: "2 pieces pack"},
				{Name: "5 Pcs", Price: 249, Description: "5 pieces pack"},
			},
		},
		{
			Name:        "Truffle Chocolate",
			Category:    "Premium Chocolate",
			Description: "Premium truffle chocolate with rich ganache center",
			Featured:    true,
			Image:       unsplash + "photo-1571019613454-1cb2f99b2d8b?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "3 Pcs", Price: 179, Description: "3 truffles"},
				{Name: "5 Pcs", Price: 249, Description: "5 truffles"},
			},
		},
		{
			Name:        "Nutty Temptation",
			Category:    "Special Bar",
			Description: "Irresistible chocolate with mixed nuts",
			Featured:    true,
			Image:       unsplash + "photo-1588195538326-c5b1e9f80a1b?auto=format&fit=crop&w=500&q=80",
			Options: []models.ProductOption{
				{Name: "Small", Price: 140, Description: "75g bar"},
				{Name: "Medium", Price: 209, Description: "125g bar"},
			},
		},
	}
	for i := range products {
		products[i].ID = FixtureProductID(i + 1)
		products[i].InStock = true
		products[i].CreatedAt = base.Add(time.Duration(len(products)-i) * time.Minute)
	}
	return products
}
