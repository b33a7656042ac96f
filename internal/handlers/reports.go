package handlers

import (
	"net/http"

	"github.com/mzjcars/stockdesk/internal/reports"
	"github.com/mzjcars/stockdesk/internal/requests"
	"github.com/mzjcars/stockdesk/internal/stock"
)

// ReportsHandler serves the aggregation views over current stock.
type ReportsHandler struct {
	stock    *stock.Service
	requests *requests.Service
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(stockSvc *stock.Service, requestsSvc *requests.Service) *ReportsHandler {
	return &ReportsHandler{stock: stockSvc, requests: requestsSvc}
}

// Inventory returns stock grouped by car, variant, colors, year and location.
func (h *ReportsHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stock.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.GroupedInventory(state.Stock))
}

// Shortages lists combinations missing from one or more branch showrooms.
func (h *ReportsHandler) Shortages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stock.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.BranchShortages(state.Stock))
}

// Totals returns the live stock headline numbers.
func (h *ReportsHandler) Totals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stock.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.LiveStockTotals(state.Stock))
}

// Stats returns the dashboard counters.
func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stock.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	open, err := h.requests.List(r.Context(), false, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.Stats(*state, open))
}
