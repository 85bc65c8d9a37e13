package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type HTTPHandler struct {
	svc Service
	log zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(svc Service, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log.With().Str("component", "history_http").Logger()}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/hands/recent", h.handleRecent)
	r.Get("/api/hands/{handID}/events", h.handleHandEvents)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	tableID := strings.TrimSpace(r.URL.Query().Get("table"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.svc.ListRecent(ctx, tableID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("query recent hands failed")
		writeError(w, http.StatusInternalServerError, "query recent hands failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (h *HTTPHandler) handleHandEvents(w http.ResponseWriter, r *http.Request) {
	handID := strings.TrimSpace(chi.URLParam(r, "handID"))
	if handID == "" {
		writeError(w, http.StatusBadRequest, "missing hand id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	events, err := h.svc.GetHandEvents(ctx, handID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "hand not found")
			return
		}
		h.log.Error().Err(err).Str("hand", handID).Msg("query hand events failed")
		writeError(w, http.StatusInternalServerError, "query hand events failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hand_id": handID,
		"events":  events,
	})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
