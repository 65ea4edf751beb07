package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chocobliss/apperr"
	"chocobliss/models"
)

// NewMongoSet returns stores backed by the collections of db.
func NewMongoSet(db *mongo.Database) Set {
	return Set{
		Orders:  NewMongoOrderStore(db),
		Catalog: NewMongoCatalogStore(db),
		Users:   NewMongoUserStore(db),
		Backend: "mongo",
	}
}

// EnsureIndexes creates the indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "orderDate", Value: -1}},
	}); err != nil {
		return fmt.Errorf("orders index: %w", err)
	}
	if _, err := db.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "featured", Value: 1}},
	}); err != nil {
		return fmt.Errorf("products index: %w", err)
	}
	return nil
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// MongoOrderStore keeps orders in the "orders" collection
type MongoOrderStore struct {
	Collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{Collection: db.Collection("orders")}
}

func (s *MongoOrderStore) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	cp := *o
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if _, err := s.Collection.InsertOne(ctx, cp); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &cp, nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	set := bson.M{"status": to}
	if to == models.OrderDelivered {
		set["deliveryDate"] = at
	}
	var o models.Order
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, returnAfter).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrStale(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &o, nil
}

// UpdatePayment is a single conditional write: the guards and the new
// values are applied atomically by the server.
func (s *MongoOrderStore) UpdatePayment(ctx context.Context, id primitive.ObjectID, patch PaymentPatch) (*models.Order, error) {
	filter := bson.M{"_id": id}
	if len(patch.Expect) > 0 {
		filter["payment.status"] = bson.M{"$in": patch.Expect}
	}
	if len(patch.ExpectStatus) > 0 {
		filter["status"] = bson.M{"$in": patch.ExpectStatus}
	}
	set := bson.M{"payment": patch.Payment}
	if patch.Status != "" {
		set["status"] = patch.Status
	}

	var o models.Order
	err := s.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, returnAfter).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrStale(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order payment: %w", err)
	}
	return &o, nil
}

// missOrStale tells a missing order from a guard that did not match.
func (s *MongoOrderStore) missOrStale(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.Collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count order: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("order")
	}
	return ErrStale
}

func (s *MongoOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	cursor, err := s.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var o models.Order
		if err := cursor.Decode(&o); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("orders cursor: %w", err)
	}
	return orders, nil
}

// MongoCatalogStore keeps products in the "products" collection
type MongoCatalogStore struct {
	Collection *mongo.Collection
}

func NewMongoCatalogStore(db *mongo.Database) *MongoCatalogStore {
	return &MongoCatalogStore{Collection: db.Collection("products")}
}

func (s *MongoCatalogStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("product")
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (s *MongoCatalogStore) FindByFilter(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if c := categoryFilter(f.Category); c != "" {
		query["category"] = c
	}
	if f.FeaturedOnly {
		query["featured"] = true
	}
	sortBy := bson.D{{Key: "createdAt", Value: -1}}
	if f.SortByName {
		sortBy = bson.D{{Key: "name", Value: 1}}
	}

	cursor, err := s.Collection.Find(ctx, query, options.Find().SetSort(sortBy))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (s *MongoCatalogStore) ListCategories(ctx context.Context) ([]string, error) {
	values, err := s.Collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MongoCatalogStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	cp := *p
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if _, err := s.Collection.InsertOne(ctx, cp); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &cp, nil
}

func (s *MongoCatalogStore) Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error) {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.Options != nil {
		set["options"] = *u.Options
	}
	if u.Featured != nil {
		set["featured"] = *u.Featured
	}
	if u.InStock != nil {
		set["inStock"] = *u.InStock
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	var p models.Product
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("product")
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &p, nil
}

// MongoUserStore keeps users in the "users" collection
type MongoUserStore struct {
	Collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{Collection: db.Collection("users")}
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	cp := *u
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if _, err := s.Collection.InsertOne(ctx, cp); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("user already exists with this email")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &cp, nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.Collection.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	if p.Name != "" {
		set["name"] = p.Name
	}
	if p.Phone != "" {
		set["phone"] = p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	var u models.User
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) setField(ctx context.Context, id primitive.ObjectID, field string, value any) error {
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("update user %s: %w", field, err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (s *MongoUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.setField(ctx, id, "password", hash)
}

func (s *MongoUserStore) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return s.setField(ctx, id, "lastLogin", at)
}
