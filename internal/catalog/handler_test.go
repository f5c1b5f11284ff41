package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewHandler(st, slog.New(slog.NewTextHandler(io.Discard, nil))), st
}

func seedProduct(t *testing.T, st *store.MemoryStore, name, category string, priceMZN int64, stock int) *domain.Product {
	t.Helper()
	p, err := st.CreateProduct(context.Background(), store.NewProduct{
		Name:        name,
		Description: name + " imported",
		Category:    category,
		PriceMZN:    priceMZN,
		PriceUSD:    domain.MZNToUSD(priceMZN),
		Stock:       stock,
	})
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func decodeProducts(t *testing.T, rec *httptest.ResponseRecorder) []domain.Product {
	t.Helper()
	var products []domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode products: %v", err)
	}
	return products
}

func TestHandler_HandleList(t *testing.T) {
	handler, st := newTestHandler(t)
	seedProduct(t, st, "Cimento Portland", "Construção", 800, 100)
	seedProduct(t, st, "Sofá 3 Lugares", "Móveis", 12000, 8)

	t.Run("no filter returns everything", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := len(decodeProducts(t, rec)); got != 2 {
			t.Errorf("expected 2 products, got %d", got)
		}
	})

	t.Run("category filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/products?category=Móveis", nil))

		products := decodeProducts(t, rec)
		if len(products) != 1 || products[0].Name != "Sofá 3 Lugares" {
			t.Errorf("unexpected products: %+v", products)
		}
	})

	t.Run("search filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/products?search=cimento", nil))

		products := decodeProducts(t, rec)
		if len(products) != 1 || products[0].Name != "Cimento Portland" {
			t.Errorf("unexpected products: %+v", products)
		}
	})

	t.Run("category takes precedence over search", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/products?category=Móveis&search=cimento", nil))

		products := decodeProducts(t, rec)
		if len(products) != 1 || products[0].Category != "Móveis" {
			t.Errorf("unexpected products: %+v", products)
		}
	})
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates with derived USD price", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		body := `{"name":"Cimento","description":"CP-II 50kg","category":"Construção","price_mzn":800,"stock":15}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var p domain.Product
		if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
			t.Fatalf("failed to decode product: %v", err)
		}
		if p.ID == "" {
			t.Error("expected generated id")
		}
		if p.PriceUSD != "12.50" {
			t.Errorf("expected derived price 12.50, got %s", p.PriceUSD)
		}
		if p.Status != domain.ProductStatusActive {
			t.Errorf("expected default status active, got %s", p.Status)
		}
	})

	t.Run("rejects missing fields with details", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		body := `{"name":"","description":"x","category":"Construção","price_mzn":0,"stock":-1}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}

		var resp struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Details) != 3 {
			t.Errorf("expected 3 invalid fields, got %v", resp.Details)
		}
	})
}

func TestHandler_HandleUpdateStock(t *testing.T) {
	handler, st := newTestHandler(t)
	p := seedProduct(t, st, "Cimento", "Construção", 800, 15)
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/products/{id}/stock", handler.HandleUpdateStock)

	t.Run("sets the stock", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/products/"+p.ID+"/stock", strings.NewReader(`{"stock":40}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		fresh, _ := st.GetProduct(context.Background(), p.ID)
		if fresh.Stock != 40 {
			t.Errorf("expected stock 40, got %d", fresh.Stock)
		}
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/products/"+p.ID+"/stock", strings.NewReader(`{"stock":-1}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/products/nope/stock", strings.NewReader(`{"stock":1}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleDelete(t *testing.T) {
	handler, st := newTestHandler(t)
	p := seedProduct(t, st, "Cimento", "Construção", 800, 15)
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/products/{id}", handler.HandleDelete)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/"+p.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/"+p.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}
