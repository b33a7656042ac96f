package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mzjcars/stockdesk/internal/middleware"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/requests"
)

// RequestsHandler serves request tickets and their step progress.
type RequestsHandler struct {
	requests *requests.Service
}

// NewRequestsHandler creates a new requests handler
func NewRequestsHandler(requestsSvc *requests.Service) *RequestsHandler {
	return &RequestsHandler{requests: requestsSvc}
}

// Requests handles listing and creating request tickets.
func (h *RequestsHandler) Requests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RequestsHandler) list(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		request, err := h.requests.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, request)
		return
	}

	includeComplete := r.URL.Query().Get("all") == "true"
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	list, err := h.requests.List(r.Context(), includeComplete, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RequestsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in requests.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && in.CreatedBy == "" {
		in.CreatedBy = claims.Username
	}

	created, err := h.requests.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// advanceRequest names one row step to complete.
type advanceRequest struct {
	RequestID string             `json:"requestId"`
	RowIndex  int                `json:"rowIndex"`
	Step      models.RequestStep `json:"step"`
}

// Advance completes the named step on one row, in order.
func (h *RequestsHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated, err := h.requests.AdvanceRow(r.Context(), req.RequestID, req.RowIndex, req.Step)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
