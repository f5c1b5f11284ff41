// Package catalog serves the product collection: admin CRUD plus the
// read-side category and free-text queries the storefront browses with.
package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

type Handler struct {
	store  store.Store
	logger *slog.Logger
}

func NewHandler(st store.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  st,
		logger: logger,
	}
}

// HandleList applies at most one filter per call: category wins over search,
// and no filter returns everything.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		products []domain.Product
		err      error
	)

	switch {
	case r.URL.Query().Get("category") != "":
		products, err = h.store.GetProductsByCategory(r.Context(), r.URL.Query().Get("category"))
	case r.URL.Query().Get("search") != "":
		products, err = h.store.SearchProducts(r.Context(), r.URL.Query().Get("search"))
	default:
		products, err = h.store.GetProducts(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if products == nil {
		products = []domain.Product{}
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

func validateNewProduct(np store.NewProduct) []string {
	var invalid []string
	if strings.TrimSpace(np.Name) == "" {
		invalid = append(invalid, "name")
	}
	if strings.TrimSpace(np.Description) == "" {
		invalid = append(invalid, "description")
	}
	if strings.TrimSpace(np.Category) == "" {
		invalid = append(invalid, "category")
	}
	if np.PriceMZN <= 0 {
		invalid = append(invalid, "price_mzn")
	}
	if np.Stock < 0 {
		invalid = append(invalid, "stock")
	}
	return invalid
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var np store.NewProduct
	if err := json.NewDecoder(r.Body).Decode(&np); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if invalid := validateNewProduct(np); len(invalid) > 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid product data",
			"details": invalid,
		})
		return
	}

	if np.PriceUSD == "" {
		np.PriceUSD = domain.MZNToUSD(np.PriceMZN)
	}

	product, err := h.store.CreateProduct(r.Context(), np)
	if err != nil {
		h.logger.Error("failed to create product", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var upd store.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.PriceMZN != nil && *upd.PriceMZN <= 0 {
		h.writeError(w, http.StatusBadRequest, "price_mzn must be positive")
		return
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		h.writeError(w, http.StatusBadRequest, "stock must not be negative")
		return
	}

	// Keep the stored USD price in step with an MZN price change unless the
	// caller set it explicitly. Existing rows are not re-derived on read.
	if upd.PriceMZN != nil && upd.PriceUSD == nil {
		usd := domain.MZNToUSD(*upd.PriceMZN)
		upd.PriceUSD = &usd
	}

	product, err := h.store.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		h.logger.Error("failed to update product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("product updated", "product_id", product.ID)
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	deleted, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

type updateStockRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Stock == nil || *req.Stock < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid stock value")
		return
	}

	product, err := h.store.UpdateProductStock(r.Context(), id, *req.Stock)
	if err != nil {
		h.logger.Error("failed to update stock", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("stock updated", "product_id", id, "stock", product.Stock)
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
