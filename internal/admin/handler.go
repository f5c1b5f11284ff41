// Package admin gates the back-office endpoints behind a credential check.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Admin   adminInfo `json:"admin"`
}

type adminInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleLogin compares the password in plain text, matching the seeded
// credential store. Not production auth; a real deployment needs salted
// hashes here. The response never says whether the email or the password
// was wrong.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.store.GetAdminUser(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up admin user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user == nil || user.Password != req.Password {
		h.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.logger.Info("admin logged in", "email", user.Email)
	h.writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Admin:   adminInfo{ID: user.ID, Email: user.Email, Name: user.Name},
	})
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
