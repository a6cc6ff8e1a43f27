package deviceRepo

import (
	"context"
	"fmt"
	"time"

	"gatepass/database"
	"gatepass/models"
	"gatepass/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoDeviceRepo is the MongoDB implementation of DeviceRepository.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new MongoDB-backed device repository.
// The fingerprint hash carries a unique index so one physical device
// cannot belong to two records.
func NewMongoDeviceRepo() *MongoDeviceRepo {
	repo := &MongoDeviceRepo{
		coll: database.GetDatabase().Collection("devices"),
	}
	repo.ensureIndexes()
	return repo
}

func (r *MongoDeviceRepo) ensureIndexes() {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"fingerprintHash": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		// Index creation failure is not fatal at startup; uniqueness is
		// also enforced by the get-or-create registration flow.
		utils.GetLogger().Warn("failed to create fingerprint index", zap.Error(err))
	}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoDeviceRepo) GetByID(id string) (*models.DeviceRegistration, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var device models.DeviceRegistration
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch device with id %s: %w", id, err)
	}
	return &device, nil
}

func (r *MongoDeviceRepo) GetByFingerprint(fingerprintHash string) (*models.DeviceRegistration, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var device models.DeviceRegistration
	if err := r.coll.FindOne(ctx, bson.M{"fingerprintHash": fingerprintHash}).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch device by fingerprint: %w", err)
	}
	return &device, nil
}

func (r *MongoDeviceRepo) ListActiveByUser(userID string) ([]models.DeviceRegistration, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"userId": userID, "isActive": true}
	opts := options.Find().SetSort(bson.M{"registeredAt": -1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var devices []models.DeviceRegistration
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode devices for user %s: %w", userID, err)
	}
	return devices, nil
}

func (r *MongoDeviceRepo) Create(device *models.DeviceRegistration) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	device.RegisteredAt = now
	device.LastSeenAt = now
	device.IsActive = true

	if _, err := r.coll.InsertOne(ctx, device); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *MongoDeviceRepo) Update(device *models.DeviceRegistration) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	device.LastSeenAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": device.ID}, bson.M{"$set": device})
	if err != nil {
		return fmt.Errorf("failed to update device with id %s: %w", device.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("device with id %s not found", device.ID)
	}
	return nil
}

// Deactivate soft-deletes a device. Devices are never hard-deleted while
// tickets reference them.
func (r *MongoDeviceRepo) Deactivate(id, userID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "userId": userID}
	update := bson.M{"$set": bson.M{"isActive": false}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate device with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("device with id %s not found", id)
	}
	return nil
}
