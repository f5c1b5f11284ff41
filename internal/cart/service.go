// Package cart implements the server-side cart: per-session line items with
// merge-on-add semantics and totals derived from live product prices.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	store store.Store

	// One lock per session id serializes mutations from concurrent tabs
	// sharing a session, so merges never lose an update within a session.
	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

func NewService(st store.Store) *Service {
	return &Service{
		store:    st,
		sessions: make(map[string]*sync.Mutex),
	}
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[sessionID] = lock
	}
	return lock
}

// AddItem merges quantity into the session's line for the product, creating
// the line on first add. Stock is not checked here; availability is only
// ever enforced against the authoritative product record at checkout.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	return s.store.AddToCart(ctx, sessionID, productID, quantity)
}

func (s *Service) Items(ctx context.Context, sessionID string) ([]domain.CartEntry, error) {
	return s.store.GetCartItems(ctx, sessionID)
}

// UpdateQuantity sets a line to exactly the given quantity; zero or negative
// removes the line. Returns (nil, nil) when the line was removed or absent.
func (s *Service) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartItem, error) {
	return s.store.UpdateCartItemQuantity(ctx, id, quantity)
}

func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	return s.store.RemoveFromCart(ctx, id)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.ClearCart(ctx, sessionID); err != nil {
		return err
	}

	// A cleared session is finished with its cart; dropping the lock entry
	// keeps the map from growing with every shopper session. A later add
	// for the same id simply recreates it.
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

type Totals struct {
	TotalItems int    `json:"total_items"`
	TotalMZN   int64  `json:"total_mzn"`
	TotalUSD   string `json:"total_usd"`
}

// TotalsFor sums the session's lines at current product prices. Nothing is
// frozen until checkout turns the cart into an order snapshot.
func (s *Service) TotalsFor(ctx context.Context, sessionID string) (*Totals, error) {
	entries, err := s.store.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ComputeTotals(entries), nil
}

func ComputeTotals(entries []domain.CartEntry) *Totals {
	t := &Totals{}
	for _, e := range entries {
		t.TotalItems += e.Quantity
		t.TotalMZN += e.Product.PriceMZN * int64(e.Quantity)
	}
	t.TotalUSD = domain.MZNToUSD(t.TotalMZN)
	return t
}
