package store

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// Handler serves persisted snapshots.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store) *Handler {
	return &Handler{
		store:  store,
		logger: slog.Default().With("component", "analytics-store-handler"),
	}
}

// Snapshots serves GET ?limit=n, newest first.
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}
	snapshots, err := h.store.ListSnapshots(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing snapshots failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing snapshots failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
