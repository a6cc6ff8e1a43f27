package auditRepo

import (
	"context"
	"fmt"
	"time"

	"gatepass/database"
	"gatepass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuditRepo is the MongoDB implementation of AuditRepository.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo creates a new MongoDB-backed audit repository.
func NewMongoAuditRepo() *MongoAuditRepo {
	return &MongoAuditRepo{
		coll: database.GetDatabase().Collection("checkin_attempts"),
	}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoAuditRepo) Create(attempt *models.CheckInAttempt) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	attempt.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, attempt); err != nil {
		return fmt.Errorf("failed to record check-in attempt: %w", err)
	}
	return nil
}

func (r *MongoAuditRepo) ListRecentByEvent(eventID string, limit int64) ([]models.CheckInAttempt, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for event %s: %w", eventID, err)
	}
	defer cursor.Close(ctx)

	var attempts []models.CheckInAttempt
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, fmt.Errorf("failed to decode attempts for event %s: %w", eventID, err)
	}
	return attempts, nil
}

func (r *MongoAuditRepo) StatsByEvent(eventID string) (*models.CheckInStats, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"eventId": eventID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalScans": bson.M{"$sum": 1},
			"successfulScans": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$result", models.ResultSuccess}}, 1, 0},
			}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats for event %s: %w", eventID, err)
	}
	defer cursor.Close(ctx)

	var rows []models.CheckInStats
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode stats for event %s: %w", eventID, err)
	}
	if len(rows) == 0 {
		return &models.CheckInStats{}, nil
	}
	stats := rows[0]
	stats.FailedScans = stats.TotalScans - stats.SuccessfulScans
	return &stats, nil
}
