package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mzjcars/stockdesk/internal/media"
)

// MediaHandler serves the photography tracker.
type MediaHandler struct {
	media *media.Service
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaSvc *media.Service) *MediaHandler {
	return &MediaHandler{media: mediaSvc}
}

// Specs handles listing and updating tracked visual specs.
func (h *MediaHandler) Specs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MediaHandler) list(w http.ResponseWriter, r *http.Request) {
	specs, err := h.media.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, specs)
}

func (h *MediaHandler) update(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key query parameter is required", http.StatusBadRequest)
		return
	}

	var patch media.SpecPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated, err := h.media.Update(r.Context(), key, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
