package ticketRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatepass/database"
	"gatepass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTicketRepo is the MongoDB implementation of TicketRepository.
// It also holds the audit collection: a successful check-in writes the
// ticket mutation and its audit record in one transaction.
type MongoTicketRepo struct {
	coll      *mongo.Collection
	auditColl *mongo.Collection
}

// NewMongoTicketRepo creates a new MongoDB-backed ticket repository.
func NewMongoTicketRepo() *MongoTicketRepo {
	return &MongoTicketRepo{
		coll:      database.GetDatabase().Collection("tickets"),
		auditColl: database.GetDatabase().Collection("checkin_attempts"),
	}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoTicketRepo) GetByID(id string) (*models.Ticket, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var ticket models.Ticket
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch ticket with id %s: %w", id, err)
	}
	return &ticket, nil
}

func (r *MongoTicketRepo) GetByEventAndUser(eventID, userID string) (*models.Ticket, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var ticket models.Ticket
	filter := bson.M{"eventId": eventID, "userId": userID}
	if err := r.coll.FindOne(ctx, filter).Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch ticket for event %s and user %s: %w", eventID, userID, err)
	}
	return &ticket, nil
}

func (r *MongoTicketRepo) ListByUser(userID, status string) ([]models.Ticket, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"registeredAt": -1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode tickets for user %s: %w", userID, err)
	}
	return tickets, nil
}

func (r *MongoTicketRepo) ListCheckedIn(eventID string) ([]models.Ticket, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"eventId": eventID, "checkedInAt": bson.M{"$ne": nil}}
	opts := options.Find().SetSort(bson.M{"checkedInAt": -1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-in tickets for event %s: %w", eventID, err)
	}
	defer cursor.Close(ctx)

	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode checked-in tickets for event %s: %w", eventID, err)
	}
	return tickets, nil
}

func (r *MongoTicketRepo) Create(ticket *models.Ticket) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	ticket.RegisteredAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *MongoTicketRepo) CountByStatus(eventID, status string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"eventId": eventID, "status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for event %s: %w", eventID, err)
	}
	return count, nil
}

func (r *MongoTicketRepo) CountCheckedIn(eventID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"eventId": eventID, "checkedInAt": bson.M{"$ne": nil}}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count checked-in tickets for event %s: %w", eventID, err)
	}
	return count, nil
}

// errTicketNotEligible aborts the check-in transaction when the
// conditional update matched nothing; it never leaves this file.
var errTicketNotEligible = errors.New("ticket not eligible for check-in")

// CheckIn performs the single permitted mutation of a ticket. The filter
// requires the ticket to be active and not yet checked in, so the update
// succeeds for at most one concurrent caller. The success audit record
// is inserted in the same transaction: a checked-in ticket without an
// audit row (or the reverse) cannot be observed.
func (r *MongoTicketRepo) CheckIn(ticketID, staffID, deviceID string, at time.Time, attempt *models.CheckInAttempt) (bool, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return false, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":          ticketID,
			"status":      models.TicketStatusActive,
			"checkedInAt": nil,
		}
		update := bson.M{"$set": bson.M{
			"checkedInAt": at,
			"checkedInBy": staffID,
		}}
		if deviceID != "" {
			update["$set"].(bson.M)["checkInDeviceId"] = deviceID
		}

		result, err := r.coll.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("check-in update failed: %w", err)
		}
		if result.ModifiedCount == 0 {
			return errTicketNotEligible
		}

		attempt.CreatedAt = time.Now()
		if _, err := r.auditColl.InsertOne(sc, attempt); err != nil {
			return fmt.Errorf("insert audit record failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, errTicketNotEligible) {
			return false, nil
		}
		return false, fmt.Errorf("check-in transaction failed for ticket %s: %w", ticketID, err)
	}

	return true, nil
}
