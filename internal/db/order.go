package db

import (
	"context"
	"fmt"
	"time"

	"github.com/mzjcars/stockdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderCollection defines the interface for sales order operations.
type OrderCollection interface {
	InsertOrder(ctx context.Context, order models.SalesOrder) (string, error)
	FindOrderByID(ctx context.Context, id string) (*models.SalesOrder, error)
	FindOrders(ctx context.Context, filter bson.M) ([]models.SalesOrder, error)
	UpdateOrder(ctx context.Context, id string, order models.SalesOrder) error
}

// MongoOrderCollection implements OrderCollection for MongoDB.
type MongoOrderCollection struct {
	Collection *mongo.Collection
}

// InsertOrder inserts a sales order and returns its generated id.
func (c *MongoOrderCollection) InsertOrder(ctx context.Context, order models.SalesOrder) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	result, err := c.Collection.InsertOne(ctx, order)
	if err != nil {
		return "", err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// FindOrderByID finds a sales order by its ID.
func (c *MongoOrderCollection) FindOrderByID(ctx context.Context, id string) (*models.SalesOrder, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order ID: %w", err)
	}

	var order models.SalesOrder
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("order not found")
		}
		return nil, err
	}
	return &order, nil
}

// FindOrders queries sales orders, most recently updated first.
func (c *MongoOrderCollection) FindOrders(ctx context.Context, filter bson.M) ([]models.SalesOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.SalesOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder replaces a sales order by its ID.
func (c *MongoOrderCollection) UpdateOrder(ctx context.Context, id string, order models.SalesOrder) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid order ID: %w", err)
	}

	order.ID = objectID
	order.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, order)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order not found")
	}
	return nil
}
