package handlers

import (
	"net/http"

	"github.com/mzjcars/stockdesk/internal/export"
	"github.com/mzjcars/stockdesk/internal/stock"
	log "github.com/sirupsen/logrus"
)

// maxImportSize caps uploaded spreadsheets at 10 MB.
const maxImportSize = 10 << 20

// ExportHandler serves spreadsheet export and bulk import of the vehicle list.
type ExportHandler struct {
	stock *stock.Service
}

// NewExportHandler creates a new export handler
func NewExportHandler(stockSvc *stock.Service) *ExportHandler {
	return &ExportHandler{stock: stockSvc}
}

// Download streams the current vehicle list as an xlsx file.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stock.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stock.xlsx"`)
	if err := export.WriteStock(w, state.Stock); err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Failed to write stock export")
	}
}

// Upload bulk-adds vehicles from an uploaded xlsx file. Rows are validated
// individually; the response lists what was added and what was rejected.
func (h *ExportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	result, err := export.ReadStock(r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	added := make([]string, 0, len(result.Vehicles))
	for _, v := range result.Vehicles {
		if _, err := h.stock.AddVehicle(r.Context(), v); err != nil {
			writeServiceError(w, err)
			return
		}
		added = append(added, v.VIN)
	}

	log.WithFields(log.Fields{"added": len(added), "rejected": len(result.Rejected)}).Info("Stock import finished")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":    added,
		"rejected": result.Rejected,
	})
}
