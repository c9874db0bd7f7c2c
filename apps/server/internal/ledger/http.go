package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

type HTTPHandler struct {
	ledger Service
}

type errorResponse struct {
	Error string `json:"error"`
}

type historyResponse struct {
	RoomCode string        `json:"room_code"`
	Items    []HistoryItem `json:"items"`
}

func NewHTTPHandler(ledgerService Service) *HTTPHandler {
	return &HTTPHandler{ledger: ledgerService}
}

func (h *HTTPHandler) RegisterRoutes(mux *httprouter.Router, prefix string) {
	mux.GET(prefix+"/api/history/:code", h.handleRecent)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	code := strings.TrimSpace(p.ByName("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing room code")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, code, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query history failed")
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{RoomCode: code, Items: items})
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
	if n > 100 {
		return 100
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
