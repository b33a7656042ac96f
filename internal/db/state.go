package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/mzjcars/stockdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrVersionConflict is returned by Replace when another writer replaced the
// aggregate since it was read.
var ErrVersionConflict = errors.New("stock state version conflict")

// StateCollection defines the interface for the stock aggregate document.
// The vehicle list and the move log are read and written as one unit; Replace
// is conditional on the version read, so racing writers get a conflict instead
// of a silent last-write-wins overwrite.
type StateCollection interface {
	Get(ctx context.Context) (*models.StockState, error)
	Replace(ctx context.Context, state models.StockState, expectedVersion int64) error
	Watch(ctx context.Context) (StateStream, error)
}

// StateStream delivers the full aggregate after every change.
type StateStream interface {
	Next(ctx context.Context) (*models.StockState, error)
	Close(ctx context.Context) error
}

// MongoStateCollection implements StateCollection for MongoDB.
type MongoStateCollection struct {
	Collection *mongo.Collection
}

// Get loads the aggregate document, initializing an empty one on first read.
func (c *MongoStateCollection) Get(ctx context.Context) (*models.StockState, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	var state models.StockState
	err := c.Collection.FindOne(ctx, bson.M{"_id": StateDocID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		state = models.StockState{ID: StateDocID, Stock: []models.VehicleRecord{}, Moves: []models.TransferRecord{}}
		if _, err := c.Collection.InsertOne(ctx, state); err != nil {
			return nil, fmt.Errorf("initialize stock state: %w", err)
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Replace writes the whole aggregate back, bumping the version. The filter
// matches the version that was read; zero matched documents means a concurrent
// writer got there first.
func (c *MongoStateCollection) Replace(ctx context.Context, state models.StockState, expectedVersion int64) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	state.ID = StateDocID
	state.Version = expectedVersion + 1

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": StateDocID, "version": expectedVersion}, state)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Watch opens a change stream on the aggregate document and returns the full
// document after each replacement.
func (c *MongoStateCollection) Watch(ctx context.Context) (StateStream, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"documentKey._id": StateDocID}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	cs, err := c.Collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("watch stock state: %w", err)
	}
	return &mongoStateStream{stream: cs}, nil
}

type mongoStateStream struct {
	stream *mongo.ChangeStream
}

func (s *mongoStateStream) Next(ctx context.Context) (*models.StockState, error) {
	if !s.stream.Next(ctx) {
		if err := s.stream.Err(); err != nil {
			return nil, err
		}
		return nil, context.Canceled
	}
	var event struct {
		FullDocument models.StockState `bson:"fullDocument"`
	}
	if err := s.stream.Decode(&event); err != nil {
		return nil, err
	}
	return &event.FullDocument, nil
}

func (s *mongoStateStream) Close(ctx context.Context) error {
	return s.stream.Close(ctx)
}
