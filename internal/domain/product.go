package domain

import "time"

// ProductStatus is a free-text label; "active" is the default and the only
// value the storefront itself assigns.
const ProductStatusActive = "active"

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	PriceMZN       int64             `json:"price_mzn"`
	PriceUSD       string            `json:"price_usd"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	Status         string            `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
