package requests

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/stock"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Notifier delivers templated WhatsApp messages for request lifecycle events.
type Notifier interface {
	SendTemplate(ctx context.Context, phoneNumber, templateName string, bodyParams []string) error
}

// Service manages photoshoot/move request tickets. Requests are their own
// document set, independent of the stock aggregate, linked to it by VIN only.
type Service struct {
	requests db.RequestCollection
	stock    *stock.Service
	notifier Notifier
}

// NewService creates a request service.
func NewService(requests db.RequestCollection, stockSvc *stock.Service) *Service {
	return &Service{requests: requests, stock: stockSvc}
}

// WithNotifier enables completion notifications. NOTIFY_PHONE names the
// recipient; without it no message is attempted.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// RowInput is one VIN in a new request, with the work kind asked for it.
type RowInput struct {
	VIN  string             `json:"vin"`
	Kind models.RequestKind `json:"kind"`
}

// CreateInput describes a new request ticket.
type CreateInput struct {
	Kind      models.RequestKind `json:"kind"`
	Rows      []RowInput         `json:"rows"`
	CreatedBy string             `json:"createdBy"`
}

// Create builds and stores a request. Car data on each row is a best-effort
// snapshot from current stock; VINs not in stock are accepted as typed and
// produce rows with empty car fields, never re-validated later.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Request, error) {
	if !models.IsValidRequestKind(in.Kind) {
		return nil, &stock.ValidationError{Reason: "unknown request kind"}
	}

	rows := make([]RowInput, 0, len(in.Rows))
	for _, r := range in.Rows {
		if r.VIN != "" {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, &stock.ValidationError{Reason: "at least one vin is required"}
	}

	state, err := s.stock.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byVIN := make(map[string]models.VehicleRecord, len(state.Stock))
	for _, v := range state.Stock {
		if _, ok := byVIN[v.VIN]; !ok {
			byVIN[v.VIN] = v
		}
	}

	req := models.Request{
		Kind:      in.Kind,
		Status:    models.RequestNew,
		Total:     len(rows),
		CreatedBy: in.CreatedBy,
	}
	for _, r := range rows {
		kind := r.Kind
		if kind == "" {
			kind = in.Kind
		}
		row := models.RequestRow{VIN: r.VIN, Kind: kind}
		if v, ok := byVIN[r.VIN]; ok {
			row.Car = v.Car
			row.Variant = v.Variant
			row.Location = v.Location
		}
		req.Rows = append(req.Rows, row)
		req.VINs = append(req.VINs, r.VIN)
	}

	id, err := s.requests.InsertRequest(ctx, req)
	if err != nil {
		return nil, &stock.RemoteStoreError{Op: "write", Err: err}
	}

	stored, err := s.requests.FindRequestByID(ctx, id)
	if err != nil {
		return nil, &stock.RemoteStoreError{Op: "read", Err: err}
	}

	log.WithFields(log.Fields{"request": id, "kind": in.Kind, "rows": len(rows)}).Info("Request created")
	return stored, nil
}

// Get returns one request by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Request, error) {
	req, err := s.requests.FindRequestByID(ctx, id)
	if err != nil {
		return nil, &stock.NotFoundError{Resource: "request", Key: id}
	}
	return req, nil
}

// List returns requests, optionally hiding completed ones.
func (s *Service) List(ctx context.Context, includeComplete bool, limit int64) ([]models.Request, error) {
	filter := bson.M{}
	if !includeComplete {
		filter["status"] = bson.M{"$ne": models.RequestComplete}
	}
	reqs, err := s.requests.FindRequests(ctx, filter, limit)
	if err != nil {
		return nil, &stock.RemoteStoreError{Op: "read", Err: err}
	}
	return reqs, nil
}

// AdvanceRow marks the given stage done on one row. Stages advance strictly
// in order. The ticket status follows the rows: it leaves "new" on the first
// advance and becomes "complete" exactly when every row is finished.
func (s *Service) AdvanceRow(ctx context.Context, requestID string, rowIndex int, step models.RequestStep) (*models.Request, error) {
	req, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, &stock.NotFoundError{Resource: "request", Key: requestID}
	}
	if rowIndex < 0 || rowIndex >= len(req.Rows) {
		return nil, &stock.ValidationError{Reason: "row index out of range"}
	}

	if err := advanceRow(&req.Rows[rowIndex].Steps, step); err != nil {
		return nil, err
	}

	if req.AllRowsFinished() {
		req.Status = models.RequestComplete
		now := time.Now()
		req.FinishedAt = &now
		s.notifyComplete(ctx, requestID, req)
	} else if req.Status == models.RequestNew {
		req.Status = models.RequestInProgress
	}

	if err := s.requests.UpdateRequest(ctx, requestID, *req); err != nil {
		return nil, &stock.RemoteStoreError{Op: "write", Err: err}
	}

	log.WithFields(log.Fields{
		"request": requestID,
		"row":     rowIndex,
		"step":    step,
		"status":  req.Status,
	}).Info("Request row advanced")
	return req, nil
}

func (s *Service) notifyComplete(ctx context.Context, requestID string, req *models.Request) {
	if s.notifier == nil {
		return
	}
	phone := os.Getenv("NOTIFY_PHONE")
	if phone == "" {
		return
	}
	params := []string{requestID, string(req.Kind), strconv.Itoa(req.Total)}
	if err := s.notifier.SendTemplate(ctx, phone, "request_complete", params); err != nil {
		log.WithFields(log.Fields{"request": requestID, "error": err}).Warn("Failed to send completion notification")
	}
}
