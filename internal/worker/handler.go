// Package worker processes order.created events: it prepares the WhatsApp
// follow-up for the sales team and raises low stock alerts.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/notify"
	"github.com/maputoimporthub/storefront/internal/reports"
)

type OrderHandler struct {
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewOrderHandler(apiURL string, client *http.Client, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		apiURL:     apiURL,
		httpClient: client,
		logger:     logger,
	}
}

// Handle decodes an order created event, logs the WhatsApp follow-up link
// for the sales team and checks each ordered product's remaining stock.
func (h *OrderHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event",
		"order_id", event.OrderID,
		"customer_name", event.CustomerName,
		"total_mzn", event.TotalMZN,
	)

	order, err := h.fetchOrder(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order %s: %w", event.OrderID, err)
	}

	msg := notify.OrderMessage(order.Items, &notify.CustomerInfo{
		Name:    order.CustomerName,
		Phone:   order.CustomerPhone,
		Address: order.DeliveryAddress,
	})

	h.logger.Info("order follow-up ready",
		"order_id", order.ID,
		"customer_phone", order.CustomerPhone,
		"whatsapp_url", notify.URL(msg, ""),
	)

	h.checkStockLevels(ctx, order)
	return nil
}

func (h *OrderHandler) fetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.apiURL+"/api/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront api returned status %d", resp.StatusCode)
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// checkStockLevels warns for each ordered product whose stock fell below the
// reorder threshold. Lookup failures are logged and skipped so one missing
// product never blocks the rest of the alerts.
func (h *OrderHandler) checkStockLevels(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		product, err := h.fetchProduct(ctx, item.ProductID)
		if err != nil {
			h.logger.Warn("could not check stock level",
				"product_id", item.ProductID,
				"order_id", order.ID,
				"error", err,
			)
			continue
		}
		if product == nil {
			continue
		}

		if product.Stock < reports.LowStockThreshold {
			h.logger.Warn("product below reorder threshold",
				"product_id", product.ID,
				"product_name", product.Name,
				"stock", product.Stock,
				"threshold", reports.LowStockThreshold,
			)
		}
	}
}

func (h *OrderHandler) fetchProduct(ctx context.Context, productID string) (*domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.apiURL+"/api/products/"+productID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront api returned status %d", resp.StatusCode)
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &product, nil
}
