package domain

import "time"

type OrderCreatedEvent struct {
	OrderID       string      `json:"order_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	Items         []OrderItem `json:"items"`
	TotalMZN      int64       `json:"total_mzn"`
	Timestamp     time.Time   `json:"timestamp"`
}
