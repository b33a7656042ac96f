package orders

import (
	"context"

	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/stock"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Service tracks sales-order handover progress. Orders are cross-referenced to
// stock by VIN only; the stock aggregate is never touched from here.
type Service struct {
	orders db.OrderCollection
}

// NewService creates a sales order service.
func NewService(orders db.OrderCollection) *Service {
	return &Service{orders: orders}
}

// Create stores a new order at stage zero.
func (s *Service) Create(ctx context.Context, order models.SalesOrder) (*models.SalesOrder, error) {
	if order.OrderNo == "" {
		return nil, &stock.ValidationError{Reason: "order number is required"}
	}
	if order.VIN == "" {
		return nil, &stock.ValidationError{Reason: "vin is required"}
	}
	order.DoneCount = 0

	id, err := s.orders.InsertOrder(ctx, order)
	if err != nil {
		return nil, &stock.RemoteStoreError{Op: "write", Err: err}
	}
	stored, err := s.orders.FindOrderByID(ctx, id)
	if err != nil {
		return nil, &stock.RemoteStoreError{Op: "read", Err: err}
	}

	log.WithFields(log.Fields{"order": order.OrderNo, "vin": order.VIN}).Info("Sales order created")
	return stored, nil
}

// List returns orders, optionally restricted to one branch.
func (s *Service) List(ctx context.Context, branch string) ([]models.SalesOrder, error) {
	filter := bson.M{}
	if branch != "" {
		filter["branch"] = branch
	}
	orders, err := s.orders.FindOrders(ctx, filter)
	if err != nil {
		return nil, &stock.RemoteStoreError{Op: "read", Err: err}
	}
	return orders, nil
}

// Advance moves one order forward exactly one stage. Stages follow the same
// linear no-skip rule as request rows; a completed order cannot move.
func (s *Service) Advance(ctx context.Context, id string) (*models.SalesOrder, error) {
	order, err := s.orders.FindOrderByID(ctx, id)
	if err != nil {
		return nil, &stock.NotFoundError{Resource: "order", Key: id}
	}
	if order.IsComplete() {
		return nil, &stock.ValidationError{Reason: "order already complete"}
	}

	order.DoneCount++
	if err := s.orders.UpdateOrder(ctx, id, *order); err != nil {
		return nil, &stock.RemoteStoreError{Op: "write", Err: err}
	}

	log.WithFields(log.Fields{"order": order.OrderNo, "done": order.DoneCount}).Info("Sales order advanced")
	return order, nil
}
