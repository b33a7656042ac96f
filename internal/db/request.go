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

// RequestCollection defines the interface for request ticket operations.
type RequestCollection interface {
	InsertRequest(ctx context.Context, request models.Request) (string, error)
	FindRequestByID(ctx context.Context, id string) (*models.Request, error)
	FindRequests(ctx context.Context, filter bson.M, limit int64) ([]models.Request, error)
	UpdateRequest(ctx context.Context, id string, request models.Request) error
}

// MongoRequestCollection implements RequestCollection for MongoDB.
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRequest inserts a request ticket and returns its generated id.
func (c *MongoRequestCollection) InsertRequest(ctx context.Context, request models.Request) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()

	result, err := c.Collection.InsertOne(ctx, request)
	if err != nil {
		return "", err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// FindRequestByID finds a request by its ID.
func (c *MongoRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID: %w", err)
	}

	var request models.Request
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("request not found")
		}
		return nil, err
	}
	return &request, nil
}

// FindRequests queries request tickets, newest first.
func (c *MongoRequestCollection) FindRequests(ctx context.Context, filter bson.M, limit int64) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateRequest replaces a request by its ID.
func (c *MongoRequestCollection) UpdateRequest(ctx context.Context, id string, request models.Request) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid request ID: %w", err)
	}

	request.ID = objectID
	request.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, request)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("request not found")
	}
	return nil
}
