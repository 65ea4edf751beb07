package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chocobliss/apperr"
	"chocobliss/models"
)

// NewMemorySet returns in-process stores with the catalog seeded from
// the built-in fixtures.
func NewMemorySet() Set {
	return Set{
		Orders:  NewMemoryOrderStore(),
		Catalog: NewMemoryCatalogStore(FixtureProducts()),
		Users:   NewMemoryUserStore(),
		Backend: "memory",
	}
}

type MemoryOrderStore struct {
	mu sync.RWMutex
	m  map[primitive.ObjectID]*models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{m: make(map[primitive.ObjectID]*models.Order)}
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		cp.DeliveryDate = &d
	}
	return &cp
}

func (s *MemoryOrderStore) Create(_ context.Context, o *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneOrder(o)
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	s.m[cp.ID] = cp
	return cloneOrder(cp), nil
}

func (s *MemoryOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("order")
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("order")
	}
	if o.Status != from {
		return nil, ErrStale
	}
	o.Status = to
	if to == models.OrderDelivered {
		o.DeliveryDate = &at
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStore) UpdatePayment(_ context.Context, id primitive.ObjectID, patch PaymentPatch) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("order")
	}
	if len(patch.Expect) > 0 && !o.Payment.Status.In(patch.Expect) {
		return nil, ErrStale
	}
	if len(patch.ExpectStatus) > 0 && !o.Status.In(patch.ExpectStatus) {
		return nil, ErrStale
	}
	o.Payment = patch.Payment
	if patch.Status != "" {
		o.Status = patch.Status
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStore) ListAll(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.m))
	for _, o := range s.m {
		out = append(out, *cloneOrder(o))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

type MemoryCatalogStore struct {
	mu sync.RWMutex
	m  map[primitive.ObjectID]*models.Product
}

func NewMemoryCatalogStore(seed []models.Product) *MemoryCatalogStore {
	s := &MemoryCatalogStore{m: make(map[primitive.ObjectID]*models.Product, len(seed))}
	for i := range seed {
		p := cloneProduct(&seed[i])
		s.m[p.ID] = p
	}
	return s
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	cp.Options = append([]models.ProductOption(nil), p.Options...)
	return &cp
}

func (s *MemoryCatalogStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("product")
	}
	return cloneProduct(p), nil
}

func (s *MemoryCatalogStore) FindByFilter(_ context.Context, f ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category := categoryFilter(f.Category)
	out := make([]models.Product, 0, len(s.m))
	for _, p := range s.m {
		if category != "" && p.Category != category {
			continue
		}
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, *cloneProduct(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.SortByName {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryCatalogStore) ListCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range s.m {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryCatalogStore) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneProduct(p)
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	s.m[cp.ID] = cp
	return cloneProduct(cp), nil
}

func (s *MemoryCatalogStore) Update(_ context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("product")
	}
	u.Apply(p)
	return cloneProduct(p), nil
}

type MemoryUserStore struct {
	mu      sync.RWMutex
	m       map[primitive.ObjectID]*models.User
	byEmail map[string]primitive.ObjectID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		m:       make(map[primitive.ObjectID]*models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, apperr.Conflict("user already exists with this email")
	}
	cp := cloneUser(u)
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	s.m[cp.ID] = cp
	s.byEmail[cp.Email] = cp.ID
	return cloneUser(cp), nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return cloneUser(u), nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return cloneUser(s.m[id]), nil
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Phone != "" {
		u.Phone = p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	return cloneUser(u), nil
}

func (s *MemoryUserStore) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Password = hash
	return nil
}

func (s *MemoryUserStore) TouchLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.LastLogin = &at
	return nil
}
