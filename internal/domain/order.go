package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the recognized order statuses. Status
// updates reject anything else.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

const (
	DeliveryStandard = "standard"
	DeliveryPickup   = "pickup"
)

const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentMpesa    = "mpesa"
)

func ValidDeliveryOption(o string) bool {
	return o == DeliveryStandard || o == DeliveryPickup
}

func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentTransfer || m == PaymentMpesa
}

// OrderItem is a frozen snapshot of a product line at order time. Later
// product edits never change it.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceMZN    int64  `json:"price_mzn"`
	PriceUSD    string `json:"price_usd"`
	Quantity    int    `json:"quantity"`
	TotalMZN    int64  `json:"total_mzn"`
	TotalUSD    string `json:"total_usd"`
}

type Order struct {
	ID                 string      `json:"id"`
	CustomerName       string      `json:"customer_name"`
	CustomerEmail      string      `json:"customer_email"`
	CustomerPhone      string      `json:"customer_phone"`
	CustomerCompany    string      `json:"customer_company,omitempty"`
	DeliveryAddress    string      `json:"delivery_address"`
	DeliveryCity       string      `json:"delivery_city"`
	DeliveryPostalCode string      `json:"delivery_postal_code,omitempty"`
	DeliveryOption     string      `json:"delivery_option"`
	PaymentMethod      string      `json:"payment_method"`
	Items              []OrderItem `json:"items"`
	TotalMZN           int64       `json:"total_mzn"`
	TotalUSD           string      `json:"total_usd"`
	Status             OrderStatus `json:"status"`
	Notes              string      `json:"notes,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}
