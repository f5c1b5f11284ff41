package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

func (h *Handler) HandleSales(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := parseDate(r.URL.Query().Get("endDate"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	report, err := h.svc.Sales(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to generate sales report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to generate category report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.LowStock(r.Context())
	if err != nil {
		h.logger.Error("failed to list low stock products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// HandleExportSales streams the full (unbounded) sales report as CSV. The
// report is rendered before any byte is written so a failure still gets a
// JSON error envelope.
func (h *Handler) HandleExportSales(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Sales(r.Context(), nil, nil)
	if err != nil {
		h.logger.Error("failed to export sales report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var buf bytes.Buffer
	if err := WriteSalesCSV(&buf, report.Orders); err != nil {
		h.logger.Error("failed to render sales csv", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=sales_report.csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write csv response", "error", err)
	}
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
