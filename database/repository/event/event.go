package eventRepo

import "gatepass/models"

// EventRepository defines methods for event data access.
type EventRepository interface {
	// GetByID retrieves an event by its unique ID.
	GetByID(id string) (*models.Event, error)
	// GetByListingID retrieves the event attached to a listing (1:1).
	GetByListingID(listingID string) (*models.Event, error)
	// Create inserts a new event record.
	Create(event *models.Event) error
	// Update modifies an existing event record.
	Update(event *models.Event) error
}
