package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mzjcars/stockdesk/internal/middleware"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/stock"
)

// StockHandler serves the vehicle list, the move log and transfers.
type StockHandler struct {
	stock *stock.Service
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockSvc *stock.Service) *StockHandler {
	return &StockHandler{stock: stockSvc}
}

// Snapshot returns the full aggregate: vehicles, move log and version.
func (h *StockHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stock.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Vehicles handles adding and updating vehicle records.
func (h *StockHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.addVehicle(w, r)
	case http.MethodPut:
		h.updateVehicle(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StockHandler) addVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.VehicleRecord
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	created, err := h.stock.AddVehicle(r.Context(), vehicle)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *StockHandler) updateVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	var patch models.VehiclePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated, err := h.stock.UpdateVehicle(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// transferRequest is the batch transfer payload.
type transferRequest struct {
	VINs        []string              `json:"vins"`
	Destination models.Location       `json:"destination"`
	Options     stock.TransferOptions `json:"options"`
}

// Transfer moves a batch of VINs to one destination and reports the per-VIN
// outcomes.
func (h *StockHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := h.stock.Transfer(r.Context(), req.VINs, req.Destination, req.Options)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// approvalRequest flips one approval flag on a sold-pending move.
type approvalRequest struct {
	MoveID   string             `json:"moveId"`
	Kind     stock.ApprovalKind `json:"kind"`
	Approved bool               `json:"approved"`
	Notes    string             `json:"notes"`
}

// Approve sets or reverses the admin or finance approval on one move.
func (h *StockHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	actor := &models.User{Username: claims.Username, Role: claims.Role}
	move, err := h.stock.SetMoveApproval(r.Context(), req.MoveID, req.Kind, req.Approved, req.Notes, actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, move)
}
