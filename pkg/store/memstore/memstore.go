// Package memstore is an in-memory store implementation used by tests. A
// store-wide mutex held for the duration of a transaction plays the role of
// the database's row locks, and a snapshot taken at transaction start is
// restored on error so failed transactions leave no partial writes.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

type data struct {
	users    map[string]models.User
	products map[string]models.Product
	orders   map[string]models.Order
	saved    map[string]map[string]bool // user id -> set of product ids
}

func newData() *data {
	return &data{
		users:    make(map[string]models.User),
		products: make(map[string]models.Product),
		orders:   make(map[string]models.Order),
		saved:    make(map[string]map[string]bool),
	}
}

func (d *data) clone() *data {
	c := newData()
	for id, u := range d.users {
		c.users[id] = copyUser(u)
	}
	for id, p := range d.products {
		c.products[id] = p
	}
	for id, o := range d.orders {
		c.orders[id] = copyOrder(o)
	}
	for uid, set := range d.saved {
		s := make(map[string]bool, len(set))
		for pid := range set {
			s[pid] = true
		}
		c.saved[uid] = s
	}
	return c
}

func copyUser(u models.User) models.User {
	if u.Preference != nil {
		pref := *u.Preference
		u.Preference = &pref
	}
	u.SavedProducts = nil
	u.Orders = nil
	return u
}

func copyOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

type Store struct {
	mu   sync.RWMutex
	data *data

	// tx marks a transaction-scoped view; the mutex is already held.
	tx bool
}

func New() *Store {
	return &Store{data: newData()}
}

func (s *Store) rlock() {
	if !s.tx {
		s.mu.RLock()
	}
}

func (s *Store) runlock() {
	if !s.tx {
		s.mu.RUnlock()
	}
}

func (s *Store) wlock() {
	if !s.tx {
		s.mu.Lock()
	}
}

func (s *Store) wunlock() {
	if !s.tx {
		s.mu.Unlock()
	}
}

func (s *Store) Users() store.UserStore       { return &userStore{s} }
func (s *Store) Products() store.ProductStore { return &productStore{s} }
func (s *Store) Orders() store.OrderStore     { return &orderStore{s} }

func (s *Store) Transaction(ctx context.Context, fn func(store.Store) error) error {
	if s.tx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	txView := &Store{data: s.data, tx: true}
	if err := fn(txView); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// userStore

type userStore struct {
	s *Store
}

func (us *userStore) Create(ctx context.Context, user *models.User) error {
	us.s.wlock()
	defer us.s.wunlock()
	for _, existing := range us.s.data.users {
		if existing.Email == user.Email {
			return apperr.Conflictf("user %s already exists", user.Email)
		}
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	if user.Preference != nil {
		user.Preference.UserID = user.ID
		stamp(&user.Preference.CreatedAt, &user.Preference.UpdatedAt)
	}
	us.s.data.users[user.ID] = copyUser(*user)
	return nil
}

func (us *userStore) Get(ctx context.Context, id string) (*models.User, error) {
	us.s.rlock()
	defer us.s.runlock()
	u, ok := us.s.data.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user %s not found", id)
	}
	cp := copyUser(u)
	return &cp, nil
}

func (us *userStore) List(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	us.s.rlock()
	defer us.s.runlock()
	users := make([]models.User, 0, len(us.s.data.users))
	for _, u := range us.s.data.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if filter.Order == store.OrderOldest {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return paginate(users, filter.Offset, filter.Limit), nil
}

func (us *userStore) Update(ctx context.Context, user *models.User) error {
	us.s.wlock()
	defer us.s.wunlock()
	if _, ok := us.s.data.users[user.ID]; !ok {
		return apperr.NotFoundf("user %s not found", user.ID)
	}
	user.UpdatedAt = time.Now().UTC()
	us.s.data.users[user.ID] = copyUser(*user)
	return nil
}

func (us *userStore) Delete(ctx context.Context, id string) error {
	us.s.wlock()
	defer us.s.wunlock()
	if _, ok := us.s.data.users[id]; !ok {
		return apperr.NotFoundf("user %s not found", id)
	}
	delete(us.s.data.users, id)
	delete(us.s.data.saved, id)
	return nil
}

func (us *userStore) Exists(ctx context.Context, id string) (bool, error) {
	us.s.rlock()
	defer us.s.runlock()
	_, ok := us.s.data.users[id]
	return ok, nil
}

func (us *userStore) SavedProducts(ctx context.Context, userID string) ([]models.Product, error) {
	us.s.rlock()
	defer us.s.runlock()
	products := make([]models.Product, 0)
	for pid := range us.s.data.saved[userID] {
		if p, ok := us.s.data.products[pid]; ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (us *userStore) IsProductSaved(ctx context.Context, userID, productID string) (bool, error) {
	us.s.rlock()
	defer us.s.runlock()
	return us.s.data.saved[userID][productID], nil
}

func (us *userStore) SaveProduct(ctx context.Context, userID, productID string) error {
	us.s.wlock()
	defer us.s.wunlock()
	if us.s.data.saved[userID] == nil {
		us.s.data.saved[userID] = make(map[string]bool)
	}
	us.s.data.saved[userID][productID] = true
	return nil
}

func (us *userStore) UnsaveProduct(ctx context.Context, userID, productID string) error {
	us.s.wlock()
	defer us.s.wunlock()
	delete(us.s.data.saved[userID], productID)
	return nil
}

// productStore

type productStore struct {
	s *Store
}

func (ps *productStore) Create(ctx context.Context, product *models.Product) error {
	ps.s.wlock()
	defer ps.s.wunlock()
	stamp(&product.CreatedAt, &product.UpdatedAt)
	ps.s.data.products[product.ID] = *product
	return nil
}

func (ps *productStore) Get(ctx context.Context, id string) (*models.Product, error) {
	ps.s.rlock()
	defer ps.s.runlock()
	p, ok := ps.s.data.products[id]
	if !ok {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	cp := p
	return &cp, nil
}

func (ps *productStore) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	ps.s.rlock()
	defer ps.s.runlock()
	products := make([]models.Product, 0, len(ps.s.data.products))
	for _, p := range ps.s.data.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch filter.Order {
		case store.OrderOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case store.OrderPriceLowest:
			return a.Price < b.Price
		case store.OrderPriceHighest:
			return a.Price > b.Price
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return paginate(products, filter.Offset, filter.Limit), nil
}

func (ps *productStore) Update(ctx context.Context, product *models.Product) error {
	ps.s.wlock()
	defer ps.s.wunlock()
	if _, ok := ps.s.data.products[product.ID]; !ok {
		return apperr.NotFoundf("product %s not found", product.ID)
	}
	product.UpdatedAt = time.Now().UTC()
	ps.s.data.products[product.ID] = *product
	return nil
}

func (ps *productStore) Delete(ctx context.Context, id string) error {
	ps.s.wlock()
	defer ps.s.wunlock()
	if _, ok := ps.s.data.products[id]; !ok {
		return apperr.NotFoundf("product %s not found", id)
	}
	delete(ps.s.data.products, id)
	return nil
}

func (ps *productStore) GetForUpdate(ctx context.Context, ids []string) ([]models.Product, error) {
	ps.s.rlock()
	defer ps.s.runlock()
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := ps.s.data.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (ps *productStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	ps.s.wlock()
	defer ps.s.wunlock()
	p, ok := ps.s.data.products[id]
	if !ok {
		return apperr.NotFoundf("product %s not found", id)
	}
	if p.Stock < quantity {
		return apperr.InsufficientStockf("insufficient stock for product %s", id)
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	ps.s.data.products[id] = p
	return nil
}

// orderStore

type orderStore struct {
	s *Store
}

func (os *orderStore) Create(ctx context.Context, order *models.Order) error {
	os.s.wlock()
	defer os.s.wunlock()
	stamp(&order.CreatedAt, &order.UpdatedAt)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		stamp(&order.Items[i].CreatedAt, &order.Items[i].UpdatedAt)
	}
	os.s.data.orders[order.ID] = copyOrder(*order)
	return nil
}

func (os *orderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	os.s.rlock()
	defer os.s.runlock()
	o, ok := os.s.data.orders[id]
	if !ok {
		return nil, apperr.NotFoundf("order %s not found", id)
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (os *orderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	os.s.rlock()
	defer os.s.runlock()
	orders := make([]models.Order, 0)
	for _, o := range os.s.data.orders {
		if o.UserID == userID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (os *orderStore) Update(ctx context.Context, order *models.Order) error {
	os.s.wlock()
	defer os.s.wunlock()
	existing, ok := os.s.data.orders[order.ID]
	if !ok {
		return apperr.NotFoundf("order %s not found", order.ID)
	}
	existing.UserID = order.UserID
	existing.UpdatedAt = time.Now().UTC()
	os.s.data.orders[order.ID] = existing
	return nil
}

func (os *orderStore) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	os.s.wlock()
	defer os.s.wunlock()
	o, ok := os.s.data.orders[item.OrderID]
	if !ok {
		return apperr.NotFoundf("order %s not found", item.OrderID)
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i].ProductID = item.ProductID
			o.Items[i].UnitPrice = item.UnitPrice
			o.Items[i].Quantity = item.Quantity
			o.Items[i].UpdatedAt = time.Now().UTC()
			os.s.data.orders[item.OrderID] = o
			return nil
		}
	}
	return apperr.NotFoundf("order item %s not found", item.ID)
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
