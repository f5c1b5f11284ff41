package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maputoimporthub/storefront/internal/domain"
)

// MemoryStore keeps everything in maps guarded by one mutex. Listing orders
// follow insertion order. It backs unit tests and can run the service
// without Postgres.
type MemoryStore struct {
	mu sync.Mutex

	products   map[string]*domain.Product
	productIDs []string

	orders   map[string]*domain.Order
	orderIDs []string

	cartItems   map[string]*domain.CartItem
	cartItemIDs []string

	admins map[string]*domain.AdminUser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]*domain.Product),
		orders:    make(map[string]*domain.Order),
		cartItems: make(map[string]*domain.CartItem),
		admins:    make(map[string]*domain.AdminUser),
	}
}

func copyProduct(p *domain.Product) *domain.Product {
	cp := *p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	if p.Specifications != nil {
		cp.Specifications = make(map[string]string, len(p.Specifications))
		for k, v := range p.Specifications {
			cp.Specifications[k] = v
		}
	}
	return &cp
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

func (s *MemoryStore) GetProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.Product, 0, len(s.productIDs))
	for _, id := range s.productIDs {
		products = append(products, *copyProduct(s.products[id]))
	}
	return products, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(p), nil
}

func (s *MemoryStore) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var products []domain.Product
	for _, id := range s.productIDs {
		if p := s.products[id]; p.Category == category {
			products = append(products, *copyProduct(p))
		}
	}
	return products, nil
}

func (s *MemoryStore) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var products []domain.Product
	for _, id := range s.productIDs {
		p := s.products[id]
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			products = append(products, *copyProduct(p))
		}
	}
	return products, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, np NewProduct) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := np.Status
	if status == "" {
		status = domain.ProductStatusActive
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:             uuid.New().String(),
		Name:           np.Name,
		Description:    np.Description,
		Category:       np.Category,
		PriceMZN:       np.PriceMZN,
		PriceUSD:       np.PriceUSD,
		Stock:          np.Stock,
		Images:         np.Images,
		Specifications: np.Specifications,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.products[p.ID] = copyProduct(p)
	s.productIDs = append(s.productIDs, p.ID)
	// The returned product must not alias the caller's Images and
	// Specifications either.
	return copyProduct(p), nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.PriceMZN != nil {
		p.PriceMZN = *upd.PriceMZN
	}
	if upd.PriceUSD != nil {
		p.PriceUSD = *upd.PriceUSD
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.Images != nil {
		p.Images = append([]string(nil), (*upd.Images)...)
	}
	if upd.Specifications != nil {
		specs := make(map[string]string, len(*upd.Specifications))
		for k, v := range *upd.Specifications {
			specs[k] = v
		}
		p.Specifications = specs
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	p.UpdatedAt = time.Now().UTC()

	return copyProduct(p), nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	for i, pid := range s.productIDs {
		if pid == id {
			s.productIDs = append(s.productIDs[:i], s.productIDs[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) UpdateProductStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	return s.UpdateProduct(ctx, id, ProductUpdate{Stock: &stock})
}

func (s *MemoryStore) GetOrders(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		orders = append(orders, *copyOrder(s.orders[id]))
	}
	return orders, nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, no NewOrder) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := &domain.Order{
		ID:                 uuid.New().String(),
		CustomerName:       no.CustomerName,
		CustomerEmail:      no.CustomerEmail,
		CustomerPhone:      no.CustomerPhone,
		CustomerCompany:    no.CustomerCompany,
		DeliveryAddress:    no.DeliveryAddress,
		DeliveryCity:       no.DeliveryCity,
		DeliveryPostalCode: no.DeliveryPostalCode,
		DeliveryOption:     no.DeliveryOption,
		PaymentMethod:      no.PaymentMethod,
		Items:              append([]domain.OrderItem(nil), no.Items...),
		TotalMZN:           no.TotalMZN,
		TotalUSD:           no.TotalUSD,
		Status:             domain.OrderStatusPending,
		Notes:              no.Notes,
		CreatedAt:          time.Now().UTC(),
	}
	s.orders[o.ID] = copyOrder(o)
	s.orderIDs = append(s.orderIDs, o.ID)
	return o, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	return copyOrder(o), nil
}

func (s *MemoryStore) GetCartItems(ctx context.Context, sessionID string) ([]domain.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []domain.CartEntry
	for _, id := range s.cartItemIDs {
		item := s.cartItems[id]
		if item.SessionID != sessionID {
			continue
		}
		// Lines whose product has been deleted are omitted rather than
		// returned half-populated.
		p, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, domain.CartEntry{CartItem: *item, Product: *copyProduct(p)})
	}
	return entries, nil
}

func (s *MemoryStore) AddToCart(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.cartItemIDs {
		item := s.cartItems[id]
		if item.SessionID == sessionID && item.ProductID == productID {
			item.Quantity += quantity
			cp := *item
			return &cp, nil
		}
	}

	item := &domain.CartItem{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	s.cartItems[item.ID] = item
	s.cartItemIDs = append(s.cartItemIDs, item.ID)
	cp := *item
	return &cp, nil
}

func (s *MemoryStore) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[id]
	if !ok {
		return nil, nil
	}

	if quantity <= 0 {
		s.removeCartItemLocked(id)
		return nil, nil
	}

	item.Quantity = quantity
	cp := *item
	return &cp, nil
}

func (s *MemoryStore) RemoveFromCart(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[id]; !ok {
		return false, nil
	}
	s.removeCartItemLocked(id)
	return true, nil
}

func (s *MemoryStore) ClearCart(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.cartItemIDs[:0]
	for _, id := range s.cartItemIDs {
		if s.cartItems[id].SessionID == sessionID {
			delete(s.cartItems, id)
			continue
		}
		remaining = append(remaining, id)
	}
	s.cartItemIDs = remaining
	return true, nil
}

func (s *MemoryStore) removeCartItemLocked(id string) {
	delete(s.cartItems, id)
	for i, cid := range s.cartItemIDs {
		if cid == id {
			s.cartItemIDs = append(s.cartItemIDs[:i], s.cartItemIDs[i+1:]...)
			return
		}
	}
}

func (s *MemoryStore) GetAdminUser(ctx context.Context, email string) (*domain.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// PutAdminUser seeds a credential. The Postgres backend gets its admin from
// a migration; this is the memory-store equivalent.
func (s *MemoryStore) PutAdminUser(email, password, name string) *domain.AdminUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &domain.AdminUser{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  password,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.admins[email] = a
	cp := *a
	return &cp
}
