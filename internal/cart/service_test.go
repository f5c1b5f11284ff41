package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

func newTestProduct(t *testing.T, st *store.MemoryStore, name string, priceMZN int64, stock int) *domain.Product {
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

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown product", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		_, err := svc.AddItem(ctx, "sess-1", "no-such-product", 1)
		if !errors.Is(err, ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("merges into one line under concurrent adds", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewService(st)
		p := newTestProduct(t, st, "Cimento", 800, 100)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.AddItem(ctx, "sess-1", p.ID, 1); err != nil {
					t.Errorf("add failed: %v", err)
				}
			}()
		}
		wg.Wait()

		entries, err := svc.Items(ctx, "sess-1")
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 line, got %d", len(entries))
		}
		if entries[0].Quantity != 20 {
			t.Errorf("expected quantity 20, got %d", entries[0].Quantity)
		}
	})
}

func TestService_Totals(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st)

	p1 := newTestProduct(t, st, "Cimento", 100, 100)
	p2 := newTestProduct(t, st, "Tijolo", 50, 100)

	if _, err := svc.AddItem(ctx, "sess-1", p1.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem(ctx, "sess-1", p2.ID, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	totals, err := svc.TotalsFor(ctx, "sess-1")
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}

	if totals.TotalItems != 5 {
		t.Errorf("expected 5 total items, got %d", totals.TotalItems)
	}
	if totals.TotalMZN != 350 {
		t.Errorf("expected 350 MZN, got %d", totals.TotalMZN)
	}
	// 350 / 64 = 5.46875, rounded to 2 decimals.
	if totals.TotalUSD != "5.47" {
		t.Errorf("expected 5.47 USD, got %s", totals.TotalUSD)
	}
}

func TestService_TotalsFloatWithLivePrices(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st)

	p := newTestProduct(t, st, "Cimento", 100, 100)
	if _, err := svc.AddItem(ctx, "sess-1", p.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	newPrice := int64(150)
	if _, err := st.UpdateProduct(ctx, p.ID, store.ProductUpdate{PriceMZN: &newPrice}); err != nil {
		t.Fatalf("price update failed: %v", err)
	}

	totals, err := svc.TotalsFor(ctx, "sess-1")
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}
	if totals.TotalMZN != 300 {
		t.Errorf("expected cart total to track live price (300), got %d", totals.TotalMZN)
	}
}

func TestService_ClearReleasesSessionLock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st)

	p := newTestProduct(t, st, "Cimento", 100, 100)
	if _, err := svc.AddItem(ctx, "sess-1", p.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	svc.mu.Lock()
	_, held := svc.sessions["sess-1"]
	svc.mu.Unlock()
	if !held {
		t.Fatal("expected a lock entry for the active session")
	}

	if err := svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	svc.mu.Lock()
	_, held = svc.sessions["sess-1"]
	svc.mu.Unlock()
	if held {
		t.Error("expected the session's lock entry to be dropped after clear")
	}

	// The session can start over.
	if _, err := svc.AddItem(ctx, "sess-1", p.ID, 1); err != nil {
		t.Fatalf("add after clear failed: %v", err)
	}
	entries, err := svc.Items(ctx, "sess-1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Quantity != 1 {
		t.Errorf("unexpected cart after re-add: %+v", entries)
	}
}
