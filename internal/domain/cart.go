package domain

import "time"

// CartItem is a live line in a shopper's cart. At most one exists per
// (session, product) pair; adds merge into the existing line.
type CartItem struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// CartEntry is a cart item with its product resolved, the shape the cart
// endpoints return. Totals are derived from the live product price, not a
// snapshot.
type CartEntry struct {
	CartItem
	Product Product `json:"product"`
}
