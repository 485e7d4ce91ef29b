// Package memstore keeps users, products and orders in process memory.
// It satisfies the repository interfaces for local runs without Postgres.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"socks-bot/internal/domain"
	"socks-bot/internal/repository"
)

// Store holds every record behind one lock so order placement is atomic
type Store struct {
	mu sync.Mutex

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64
	nextItemID    int64

	users    map[int64]*domain.User // keyed by telegram id
	products map[int64]*domain.Product
	orders   []*domain.Order

	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:    make(map[int64]*domain.User),
		products: make(map[int64]*domain.Product),
		now:      time.Now,
	}
}

// Users returns the store as a UserRepository
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Products returns the store as a ProductRepository
func (s *Store) Products() repository.ProductRepository { return (*productRepo)(s) }

// Orders returns the store as an OrderRepository
func (s *Store) Orders() repository.OrderRepository { return (*orderRepo)(s) }

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

type userRepo Store

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.TelegramID]; ok {
		return repository.ErrUserAlreadyExists
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.RegisteredAt = s.now()
	s.users[user.TelegramID] = copyUser(user)
	return nil
}

func (r *userRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[telegramID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.TelegramID]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.Username = user.Username
	stored.FirstName = user.FirstName
	stored.Email = user.Email
	stored.Phone = user.Phone
	stored.Role = user.Role
	return nil
}

func (r *userRepo) Delete(ctx context.Context, telegramID int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[telegramID]
	if !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, telegramID)

	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.UserID != u.ID {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	return nil
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type productRepo Store

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createLocked(product)
	return nil
}

func (s *Store) createLocked(product *domain.Product) {
	if product.Name == "" {
		product.Name = domain.DefaultProductName
	}
	s.nextProductID++
	product.ID = s.nextProductID
	s.products[product.ID] = copyProduct(product)
}

func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	s.products[product.ID] = copyProduct(product)
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	for _, o := range s.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return repository.ErrProductInUse
			}
		}
	}
	delete(s.products, id)
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (r *productRepo) ListAvailable(ctx context.Context, filter domain.CatalogFilter) ([]*domain.Product, error) {
	return (*Store)(r).listProducts(func(p *domain.Product) bool {
		if p.Stock <= 0 {
			return false
		}
		if filter.Size != nil && p.Size != *filter.Size {
			return false
		}
		if filter.Material != nil && p.Material != *filter.Material {
			return false
		}
		return true
	}), nil
}

func (r *productRepo) List(ctx context.Context) ([]*domain.Product, error) {
	return (*Store)(r).listProducts(func(*domain.Product) bool { return true }), nil
}

func (s *Store) listProducts(keep func(*domain.Product) bool) []*domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := []*domain.Product{}
	for _, p := range s.products {
		if keep(p) {
			products = append(products, copyProduct(p))
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (r *productRepo) Upsert(ctx context.Context, product *domain.Product) (bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" {
		product.Name = domain.DefaultProductName
	}

	var match *domain.Product
	for _, p := range s.products {
		if p.Size == product.Size && p.Material == product.Material && p.Color == product.Color {
			if match == nil || p.ID < match.ID {
				match = p
			}
		}
	}

	if match == nil {
		s.createLocked(product)
		return true, nil
	}

	match.Name = product.Name
	match.Price = product.Price
	match.Stock = product.Stock
	product.ID = match.ID
	return false, nil
}

type orderRepo Store

func (r *orderRepo) PlaceOrder(ctx context.Context, userID, productID int64, quantity int) (*domain.Order, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if p.Stock < quantity {
		return nil, repository.ErrOutOfStock
	}
	p.Stock -= quantity

	var telegramID int64
	for _, u := range s.users {
		if u.ID == userID {
			telegramID = u.TelegramID
			break
		}
	}

	s.nextOrderID++
	s.nextItemID++
	order := &domain.Order{
		ID:         s.nextOrderID,
		UserID:     userID,
		TelegramID: telegramID,
		CreatedAt:  s.now(),
		Items: []*domain.OrderItem{{
			ID:        s.nextItemID,
			OrderID:   s.nextOrderID,
			ProductID: productID,
			Quantity:  quantity,
		}},
	}
	s.orders = append(s.orders, order)

	return s.copyOrderLocked(order), nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return (*Store)(r).listOrders(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return (*Store)(r).listOrders(func(*domain.Order) bool { return true }), nil
}

func (s *Store) listOrders(keep func(*domain.Order) bool) []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []*domain.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if keep(s.orders[i]) {
			orders = append(orders, s.copyOrderLocked(s.orders[i]))
		}
	}
	return orders
}

func (s *Store) copyOrderLocked(o *domain.Order) *domain.Order {
	c := *o
	c.Items = make([]*domain.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		ic := *item
		if p, ok := s.products[item.ProductID]; ok {
			ic.Product = copyProduct(p)
		}
		c.Items = append(c.Items, &ic)
	}
	return &c
}
