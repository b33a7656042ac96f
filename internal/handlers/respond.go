package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mzjcars/stockdesk/internal/stock"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the service error types onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *stock.ValidationError
	var nferr *stock.NotFoundError
	var perr *stock.PermissionError
	var rerr *stock.RemoteStoreError

	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.As(err, &nferr):
		http.Error(w, nferr.Error(), http.StatusNotFound)
	case errors.As(err, &perr):
		http.Error(w, perr.Error(), http.StatusForbidden)
	case errors.As(err, &rerr):
		log.WithFields(log.Fields{"op": rerr.Op, "error": rerr.Err}).Error("Store operation failed")
		http.Error(w, "Storage unavailable", http.StatusBadGateway)
	default:
		log.WithFields(log.Fields{"error": err}).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
