// Package checkout converts a submitted cart into a persisted order and
// deducts inventory. It is the only writer of orders and the only caller of
// stock deduction.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

// EventPublisher emits domain events after an order is committed. A nil
// publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Pipeline struct {
	store     store.Store
	publisher EventPublisher
	logger    *slog.Logger
}

func NewPipeline(st store.Store, publisher EventPublisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:     st,
		publisher: publisher,
		logger:    logger,
	}
}

// OrderRequest is the full checkout payload: one atomic call, no server-held
// checkout session. Items and totals are the snapshot the shopper saw; the
// pipeline persists them verbatim and never recomputes against current
// prices, so an admin price edit mid-checkout cannot drift the committed
// total.
type OrderRequest struct {
	SessionID          string             `json:"session_id,omitempty"`
	CustomerName       string             `json:"customer_name"`
	CustomerEmail      string             `json:"customer_email"`
	CustomerPhone      string             `json:"customer_phone"`
	CustomerCompany    string             `json:"customer_company,omitempty"`
	DeliveryAddress    string             `json:"delivery_address"`
	DeliveryCity       string             `json:"delivery_city"`
	DeliveryPostalCode string             `json:"delivery_postal_code,omitempty"`
	DeliveryOption     string             `json:"delivery_option"`
	PaymentMethod      string             `json:"payment_method"`
	Items              []domain.OrderItem `json:"items"`
	TotalMZN           int64              `json:"total_mzn"`
	TotalUSD           string             `json:"total_usd"`
	Notes              string             `json:"notes,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.Field
	}
	return "invalid order request: " + strings.Join(fields, ", ")
}

func validate(req OrderRequest) *ValidationError {
	var fields []FieldError
	add := func(field, message string) {
		fields = append(fields, FieldError{Field: field, Message: message})
	}

	if len(strings.TrimSpace(req.CustomerName)) < 2 {
		add("customer_name", "must be at least 2 characters")
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		add("customer_email", "must be a valid email address")
	}
	if len(strings.TrimSpace(req.CustomerPhone)) < 8 {
		add("customer_phone", "must be at least 8 characters")
	}
	if len(strings.TrimSpace(req.DeliveryAddress)) < 5 {
		add("delivery_address", "must be at least 5 characters")
	}
	if strings.TrimSpace(req.DeliveryCity) == "" {
		add("delivery_city", "is required")
	}
	if !domain.ValidDeliveryOption(req.DeliveryOption) {
		add("delivery_option", "must be one of: standard, pickup")
	}
	if !domain.ValidPaymentMethod(req.PaymentMethod) {
		add("payment_method", "must be one of: cash, transfer, mpesa")
	}
	if len(req.Items) == 0 {
		add("items", "must not be empty")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			add("items", "quantities must be positive integers")
			break
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Submit runs the two-effect transaction: persist the order, then deduct
// stock line by line in submission order. The underlying store gives no
// cross-entity atomicity, so a failure during deduction leaves the order
// persisted with only a subset of deductions applied; that partial state is
// documented behavior and is not rolled back. Stock is written as
// read-minus-quantity without an availability re-check, so concurrent
// checkouts on one product can race and drive stock negative.
func (p *Pipeline) Submit(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	if verr := validate(req); verr != nil {
		return nil, verr
	}

	order, err := p.store.CreateOrder(ctx, store.NewOrder{
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		CustomerCompany:    req.CustomerCompany,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryCity:       req.DeliveryCity,
		DeliveryPostalCode: req.DeliveryPostalCode,
		DeliveryOption:     req.DeliveryOption,
		PaymentMethod:      req.PaymentMethod,
		Items:              req.Items,
		TotalMZN:           req.TotalMZN,
		TotalUSD:           req.TotalUSD,
		Notes:              req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	for _, item := range order.Items {
		product, err := p.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("deduct stock for %s: %w", item.ProductID, err)
		}
		if product == nil {
			// Ordered product no longer exists; the line stays on the order
			// but deducts nothing.
			p.logger.Warn("skipping stock deduction for missing product",
				"order_id", order.ID, "product_id", item.ProductID)
			continue
		}
		if _, err := p.store.UpdateProductStock(ctx, item.ProductID, product.Stock-item.Quantity); err != nil {
			return nil, fmt.Errorf("deduct stock for %s: %w", item.ProductID, err)
		}
	}

	if req.SessionID != "" {
		if _, err := p.store.ClearCart(ctx, req.SessionID); err != nil {
			p.logger.Error("failed to clear cart after checkout", "error", err,
				"order_id", order.ID, "session_id", req.SessionID)
		}
	}

	if p.publisher != nil {
		event := domain.OrderCreatedEvent{
			OrderID:       order.ID,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			Items:         order.Items,
			TotalMZN:      order.TotalMZN,
			Timestamp:     order.CreatedAt,
		}
		if err := p.publisher.Publish(ctx, order.ID, event); err != nil {
			p.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	p.logger.Info("order submitted", "order_id", order.ID,
		"total_mzn", order.TotalMZN, "items", len(order.Items))
	return order, nil
}

// UpdateStatus moves an order between the recognized statuses. Unrecognized
// values are rejected rather than stored.
func (p *Pipeline) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "status", Message: "must be one of: pending, completed, cancelled"},
		}}
	}
	return p.store.UpdateOrderStatus(ctx, id, status)
}
