package db

import (
	"context"
	"fmt"
	"time"

	"github.com/mzjcars/stockdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaSpecCollection defines the interface for media spec operations.
type MediaSpecCollection interface {
	FindMediaSpecs(ctx context.Context) ([]models.MediaSpec, error)
	FindMediaSpecByKey(ctx context.Context, key string) (*models.MediaSpec, error)
	UpsertMediaSpec(ctx context.Context, spec models.MediaSpec) error
}

// MongoMediaSpecCollection implements MediaSpecCollection for MongoDB.
type MongoMediaSpecCollection struct {
	Collection *mongo.Collection
}

// FindMediaSpecs returns every tracked media spec.
func (c *MongoMediaSpecCollection) FindMediaSpecs(ctx context.Context) ([]models.MediaSpec, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var specs []models.MediaSpec
	if err := cursor.All(ctx, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// FindMediaSpecByKey finds a media spec by its composite key.
func (c *MongoMediaSpecCollection) FindMediaSpecByKey(ctx context.Context, key string) (*models.MediaSpec, error) {
	var spec models.MediaSpec
	err := c.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&spec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("media spec not found")
		}
		return nil, err
	}
	return &spec, nil
}

// UpsertMediaSpec writes a media spec, creating it when absent.
func (c *MongoMediaSpecCollection) UpsertMediaSpec(ctx context.Context, spec models.MediaSpec) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	spec.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": spec.Key}, spec, opts)
	return err
}
