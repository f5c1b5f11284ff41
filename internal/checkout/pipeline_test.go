package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedProduct(t *testing.T, st *store.MemoryStore, name string, priceMZN int64, stock int) *domain.Product {
	t.Helper()
	p, err := st.CreateProduct(context.Background(), store.NewProduct{
		Name:        name,
		Description: name,
		Category:    "Construção",
		PriceMZN:    priceMZN,
		PriceUSD:    domain.MZNToUSD(priceMZN),
		Stock:       stock,
	})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return p
}

func lineFor(p *domain.Product, quantity int) domain.OrderItem {
	total := p.PriceMZN * int64(quantity)
	return domain.OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		PriceMZN:    p.PriceMZN,
		PriceUSD:    p.PriceUSD,
		Quantity:    quantity,
		TotalMZN:    total,
		TotalUSD:    domain.MZNToUSD(total),
	}
}

func validRequest(items ...domain.OrderItem) OrderRequest {
	var total int64
	for _, item := range items {
		total += item.TotalMZN
	}
	return OrderRequest{
		CustomerName:    "Maria Santos",
		CustomerEmail:   "maria@example.com",
		CustomerPhone:   "258841234567",
		DeliveryAddress: "Av. Julius Nyerere 100",
		DeliveryCity:    "Maputo",
		DeliveryOption:  domain.DeliveryStandard,
		PaymentMethod:   domain.PaymentCash,
		Items:           items,
		TotalMZN:        total,
		TotalUSD:        domain.MZNToUSD(total),
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := make(map[string]string)
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	return fields
}

func TestPipeline_Validation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	pipeline := NewPipeline(st, nil, testLogger())
	p := seedProduct(t, st, "Cimento", 800, 100)

	cases := []struct {
		name   string
		mutate func(*OrderRequest)
		field  string
	}{
		{"short name", func(r *OrderRequest) { r.CustomerName = "M" }, "customer_name"},
		{"bad email", func(r *OrderRequest) { r.CustomerEmail = "not-an-email" }, "customer_email"},
		{"short phone", func(r *OrderRequest) { r.CustomerPhone = "1234567" }, "customer_phone"},
		{"short address", func(r *OrderRequest) { r.DeliveryAddress = "Av." }, "delivery_address"},
		{"empty city", func(r *OrderRequest) { r.DeliveryCity = "  " }, "delivery_city"},
		{"unknown delivery option", func(r *OrderRequest) { r.DeliveryOption = "drone" }, "delivery_option"},
		{"unknown payment method", func(r *OrderRequest) { r.PaymentMethod = "bitcoin" }, "payment_method"},
		{"no items", func(r *OrderRequest) { r.Items = nil }, "items"},
		{"non-positive quantity", func(r *OrderRequest) { r.Items[0].Quantity = 0 }, "items"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(lineFor(p, 1))
			tc.mutate(&req)

			_, err := pipeline.Submit(ctx, req)
			fields := fieldErrors(t, err)
			if _, ok := fields[tc.field]; !ok {
				t.Errorf("expected a %s field error, got %v", tc.field, fields)
			}

			// Fail-fast: a rejected request must leave no partial state.
			orders, _ := st.GetOrders(ctx)
			if len(orders) != 0 {
				t.Errorf("expected no orders after rejection, got %d", len(orders))
			}
			fresh, _ := st.GetProduct(ctx, p.ID)
			if fresh.Stock != 100 {
				t.Errorf("expected stock untouched at 100, got %d", fresh.Stock)
			}
		})
	}
}

func TestPipeline_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts stock per line", func(t *testing.T) {
		st := store.NewMemoryStore()
		pipeline := NewPipeline(st, nil, testLogger())
		p := seedProduct(t, st, "Cimento", 800, 10)

		order, err := pipeline.Submit(ctx, validRequest(lineFor(p, 3)))
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected pending status, got %s", order.Status)
		}

		fresh, _ := st.GetProduct(ctx, p.ID)
		if fresh.Stock != 7 {
			t.Errorf("expected stock 7 after order of 3, got %d", fresh.Stock)
		}
	})

	t.Run("trusts the submitted totals verbatim", func(t *testing.T) {
		st := store.NewMemoryStore()
		pipeline := NewPipeline(st, nil, testLogger())
		p := seedProduct(t, st, "Cimento", 800, 10)

		req := validRequest(lineFor(p, 1))
		req.TotalMZN = 123 // deliberately not 800
		req.TotalUSD = domain.MZNToUSD(123)

		order, err := pipeline.Submit(ctx, req)
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if order.TotalMZN != 123 {
			t.Errorf("expected submitted total preserved (123), got %d", order.TotalMZN)
		}
	})

	t.Run("skips missing products without failing the order", func(t *testing.T) {
		st := store.NewMemoryStore()
		pipeline := NewPipeline(st, nil, testLogger())
		p := seedProduct(t, st, "Cimento", 800, 10)

		ghost := domain.OrderItem{
			ProductID: "deleted-product", ProductName: "Gone",
			PriceMZN: 50, PriceUSD: domain.MZNToUSD(50),
			Quantity: 2, TotalMZN: 100, TotalUSD: domain.MZNToUSD(100),
		}

		order, err := pipeline.Submit(ctx, validRequest(ghost, lineFor(p, 2)))
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if len(order.Items) != 2 {
			t.Errorf("expected both lines kept on the order, got %d", len(order.Items))
		}

		fresh, _ := st.GetProduct(ctx, p.ID)
		if fresh.Stock != 8 {
			t.Errorf("expected stock 8, got %d", fresh.Stock)
		}
	})

	t.Run("stock can go negative under oversell", func(t *testing.T) {
		st := store.NewMemoryStore()
		pipeline := NewPipeline(st, nil, testLogger())
		p := seedProduct(t, st, "Cimento", 800, 2)

		if _, err := pipeline.Submit(ctx, validRequest(lineFor(p, 5))); err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		fresh, _ := st.GetProduct(ctx, p.ID)
		if fresh.Stock != -3 {
			t.Errorf("expected stock -3 (no availability re-check), got %d", fresh.Stock)
		}
	})

	t.Run("clears the session cart after checkout", func(t *testing.T) {
		st := store.NewMemoryStore()
		pipeline := NewPipeline(st, nil, testLogger())
		p := seedProduct(t, st, "Cimento", 200, 5)
		if _, err := st.AddToCart(ctx, "sess-1", p.ID, 2); err != nil {
			t.Fatalf("add to cart failed: %v", err)
		}

		req := validRequest(lineFor(p, 2))
		req.SessionID = "sess-1"

		order, err := pipeline.Submit(ctx, req)
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		if order.Items[0].TotalMZN != 400 {
			t.Errorf("expected line total 400, got %d", order.Items[0].TotalMZN)
		}
		fresh, _ := st.GetProduct(ctx, p.ID)
		if fresh.Stock != 3 {
			t.Errorf("expected stock 3, got %d", fresh.Stock)
		}
		entries, _ := st.GetCartItems(ctx, "sess-1")
		if len(entries) != 0 {
			t.Errorf("expected empty cart after checkout, got %d lines", len(entries))
		}
	})

	t.Run("publishes an order created event", func(t *testing.T) {
		st := store.NewMemoryStore()
		pub := &capturePublisher{}
		pipeline := NewPipeline(st, pub, testLogger())
		p := seedProduct(t, st, "Cimento", 800, 10)

		order, err := pipeline.Submit(ctx, validRequest(lineFor(p, 1)))
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}

		if len(pub.events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(pub.events))
		}
		event, ok := pub.events[0].(domain.OrderCreatedEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", pub.events[0])
		}
		if event.OrderID != order.ID {
			t.Errorf("expected event for order %s, got %s", order.ID, event.OrderID)
		}
	})
}

// failingStore fails the nth stock update to exercise partial-failure
// semantics.
type failingStore struct {
	store.Store
	failAfter int
	updates   int
}

func (f *failingStore) UpdateProductStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	f.updates++
	if f.updates > f.failAfter {
		return nil, errors.New("storage failure")
	}
	return f.Store.UpdateProductStock(ctx, id, stock)
}

func TestPipeline_PartialDeductionNotRolledBack(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	pipeline := NewPipeline(&failingStore{Store: st, failAfter: 1}, nil, testLogger())

	p1 := seedProduct(t, st, "Cimento", 800, 10)
	p2 := seedProduct(t, st, "Tijolo", 25, 10)

	_, err := pipeline.Submit(ctx, validRequest(lineFor(p1, 2), lineFor(p2, 2)))
	if err == nil {
		t.Fatal("expected a failure from the second deduction")
	}

	// The order stays committed with only the first deduction applied.
	orders, _ := st.GetOrders(ctx)
	if len(orders) != 1 {
		t.Fatalf("expected the order to remain persisted, got %d orders", len(orders))
	}
	if orders[0].Status != domain.OrderStatusPending {
		t.Errorf("expected order still pending, got %s", orders[0].Status)
	}

	fresh1, _ := st.GetProduct(ctx, p1.ID)
	if fresh1.Stock != 8 {
		t.Errorf("expected first product deducted to 8, got %d", fresh1.Stock)
	}
	fresh2, _ := st.GetProduct(ctx, p2.ID)
	if fresh2.Stock != 10 {
		t.Errorf("expected second product untouched at 10, got %d", fresh2.Stock)
	}
}

func TestPipeline_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	pipeline := NewPipeline(st, nil, testLogger())
	p := seedProduct(t, st, "Cimento", 800, 10)

	order, err := pipeline.Submit(ctx, validRequest(lineFor(p, 1)))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	t.Run("accepts recognized statuses", func(t *testing.T) {
		updated, err := pipeline.UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Status != domain.OrderStatusCompleted {
			t.Errorf("expected completed, got %s", updated.Status)
		}
	})

	t.Run("rejects unrecognized statuses", func(t *testing.T) {
		_, err := pipeline.UpdateStatus(ctx, order.ID, "shipped")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

type capturePublisher struct {
	events []any
}

func (c *capturePublisher) Publish(ctx context.Context, key string, event any) error {
	c.events = append(c.events, event)
	return nil
}
