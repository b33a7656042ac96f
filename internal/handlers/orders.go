package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/orders"
)

// OrdersHandler serves sales order paperwork progress.
type OrdersHandler struct {
	orders *orders.Service
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(ordersSvc *orders.Service) *OrdersHandler {
	return &OrdersHandler{orders: ordersSvc}
}

// Orders handles listing and creating sales orders.
func (h *OrdersHandler) Orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context(), r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var order models.SalesOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	created, err := h.orders.Create(r.Context(), order)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Advance moves one order forward one stage.
func (h *OrdersHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		http.Error(w, "orderId is required", http.StatusBadRequest)
		return
	}

	advanced, err := h.orders.Advance(r.Context(), req.OrderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advanced)
}
