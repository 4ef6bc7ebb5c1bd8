package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

var errStore = errors.New("store unavailable")

type plainHasher struct{ compares int }

func (h *plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (h *plainHasher) Compare(hash, password string) error {
	h.compares++
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	nextID  int
	findErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *user
	clone.ID = fmt.Sprintf("u%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

type stubCategoryRepo struct {
	items  map[string]*domain.Category
	finds  int
	nextID int
}

func newStubCategoryRepo(cats ...*domain.Category) *stubCategoryRepo {
	r := &stubCategoryRepo{items: make(map[string]*domain.Category)}
	for _, c := range cats {
		clone := *c
		r.items[c.ID] = &clone
	}
	return r
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.items {
		if existing.Name == c.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	r.nextID++
	clone := *c
	clone.ID = fmt.Sprintf("c%d", r.nextID)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id string) (*domain.Category, error) {
	r.finds++
	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) List(_ context.Context, _ ports.Page) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.items))
	for _, c := range r.items {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	if _, ok := r.items[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	clone := *c
	r.items[c.ID] = &clone
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.items, id)
	return nil
}

type stubProductRepo struct {
	mu         sync.Mutex
	items      map[string]*domain.Product
	finds      int
	lastSearch ports.ProductSearchParams
	releases   map[string]int
	nextID     int
}

func newStubProductRepo(products ...*domain.Product) *stubProductRepo {
	r := &stubProductRepo{items: make(map[string]*domain.Product), releases: make(map[string]int)}
	for _, p := range products {
		clone := *p
		r.items[p.ID] = &clone
	}
	return r
}

func (r *stubProductRepo) get(id string) (*domain.Product, error) {
	p, ok := r.items[id]
	if !ok || p.Deleted {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("p%d", r.nextID)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, _ ports.Page) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.items {
		if !p.Deleted {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ListByCategory(_ context.Context, categoryID string, _ ports.Page) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.items {
		if !p.Deleted && p.InCategory(categoryID) {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Search(_ context.Context, params ports.ProductSearchParams, _ ports.Page) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSearch = params
	return nil, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.get(p.ID); err != nil {
		return err
	}
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.get(id)
	if err != nil {
		return err
	}
	p.Deleted = true
	return nil
}

func (r *stubProductRepo) ReserveStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.get(id)
	if err != nil {
		return err
	}
	if p.Stock < qty {
		return domain.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *stubProductRepo) ReleaseStock(ctx context.Context, id string, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += qty
	r.releases[id] += qty
	return nil
}

func (r *stubProductRepo) stock(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Stock
}

type stubOrderRepo struct {
	mu        sync.Mutex
	items     map[string]*domain.Order
	createErr error
	nextID    int
	// onCreate runs before Create stores the order.
	onCreate func()
	// readGate, when set, holds every FindByID caller until all of them
	// have read the order.
	readGate *sync.WaitGroup
}

func newStubOrderRepo(orders ...*domain.Order) *stubOrderRepo {
	r := &stubOrderRepo{items: make(map[string]*domain.Order)}
	for _, o := range orders {
		clone := *o
		r.items[o.ID] = &clone
	}
	return r
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if r.onCreate != nil {
		r.onCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *o
	clone.ID = fmt.Sprintf("o%d", r.nextID)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	o, ok := r.items[id]
	var clone domain.Order
	if ok {
		clone = *o
	}
	r.mu.Unlock()

	if r.readGate != nil {
		r.readGate.Done()
		r.readGate.Wait()
	}
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &clone, nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID string, _ ports.Page) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.items {
		if o.UserID == userID {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = ts
	return nil
}

func (r *stubOrderRepo) status(id string) domain.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Status
}

type recordingQueue struct {
	mu            sync.Mutex
	notifications []domain.OrderNotification
}

func (q *recordingQueue) Enqueue(n domain.OrderNotification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notifications = append(q.notifications, n)
}

// mapCache stores values as-is; Get copies them back through a type switch.
type mapCache struct {
	mu      sync.Mutex
	values  map[string]any
	deleted []string
	getErr  error
}

func newMapCache() *mapCache { return &mapCache{values: make(map[string]any)} }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Category:
		*d = *v.(*domain.Category)
	case *domain.Product:
		*d = *v.(*domain.Product)
	}
	return true, nil
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}
