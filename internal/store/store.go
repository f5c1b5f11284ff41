// Package store defines the repository contract shared by the storefront's
// services and its two backends: an in-memory map store and Postgres. The
// checkout pipeline, catalog, cart, and reports all read and write through
// this interface, so both backends must expose identical semantics.
package store

import (
	"context"

	"github.com/maputoimporthub/storefront/internal/domain"
)

// NewProduct carries the fields an admin supplies when creating a product.
type NewProduct struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	PriceMZN       int64             `json:"price_mzn"`
	PriceUSD       string            `json:"price_usd"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	Status         string            `json:"status"`
}

// ProductUpdate is a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Category       *string            `json:"category"`
	PriceMZN       *int64             `json:"price_mzn"`
	PriceUSD       *string            `json:"price_usd"`
	Stock          *int               `json:"stock"`
	Images         *[]string          `json:"images"`
	Specifications *map[string]string `json:"specifications"`
	Status         *string            `json:"status"`
}

// NewOrder carries a checkout payload: customer and delivery details plus
// the frozen line-item snapshot and totals. The store persists the snapshot
// verbatim.
type NewOrder struct {
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	CustomerCompany    string
	DeliveryAddress    string
	DeliveryCity       string
	DeliveryPostalCode string
	DeliveryOption     string
	PaymentMethod      string
	Items              []domain.OrderItem
	TotalMZN           int64
	TotalUSD           string
	Notes              string
}

// Store is the single shared mutable resource of the system. Implementations
// must serialize each individual read-modify-write operation, but are not
// required to serialize across a caller's read-then-write window; the
// checkout pipeline's stock deduction relies on exactly that (documented)
// looseness.
//
// Lookups return (nil, nil) when the entity does not exist.
type Store interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p NewProduct) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	UpdateProductStock(ctx context.Context, id string, stock int) (*domain.Product, error)

	GetOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, o NewOrder) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)

	GetCartItems(ctx context.Context, sessionID string) ([]domain.CartEntry, error)
	AddToCart(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (*domain.CartItem, error)
	RemoveFromCart(ctx context.Context, id string) (bool, error)
	ClearCart(ctx context.Context, sessionID string) (bool, error)

	GetAdminUser(ctx context.Context, email string) (*domain.AdminUser, error)
}
