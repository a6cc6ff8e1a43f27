package eventRepo

import (
	"context"
	"fmt"
	"time"

	"gatepass/database"
	"gatepass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoEventRepo is the MongoDB implementation of EventRepository.
type MongoEventRepo struct {
	coll *mongo.Collection
}

// NewMongoEventRepo creates a new MongoDB-backed event repository.
func NewMongoEventRepo() *MongoEventRepo {
	return &MongoEventRepo{
		coll: database.GetDatabase().Collection("events"),
	}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoEventRepo) GetByID(id string) (*models.Event, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var event models.Event
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&event); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch event with id %s: %w", id, err)
	}
	return &event, nil
}

func (r *MongoEventRepo) GetByListingID(listingID string) (*models.Event, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var event models.Event
	if err := r.coll.FindOne(ctx, bson.M{"listingId": listingID}).Decode(&event); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch event for listing %s: %w", listingID, err)
	}
	return &event, nil
}

func (r *MongoEventRepo) Create(event *models.Event) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *MongoEventRepo) Update(event *models.Event) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	event.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": event.ID}, bson.M{"$set": event})
	if err != nil {
		return fmt.Errorf("failed to update event with id %s: %w", event.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("event with id %s not found", event.ID)
	}
	return nil
}
