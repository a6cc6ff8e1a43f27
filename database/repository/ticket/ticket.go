package ticketRepo

import (
	"time"

	"gatepass/models"
)

// TicketRepository defines methods for ticket data access.
type TicketRepository interface {
	// GetByID retrieves a ticket by its unique ID.
	GetByID(id string) (*models.Ticket, error)
	// GetByEventAndUser retrieves the ticket for an (event, user) pair.
	GetByEventAndUser(eventID, userID string) (*models.Ticket, error)
	// ListByUser retrieves a user's tickets with the given status.
	ListByUser(userID, status string) ([]models.Ticket, error)
	// ListCheckedIn retrieves checked-in tickets for an event, most recent first.
	ListCheckedIn(eventID string) ([]models.Ticket, error)
	// Create inserts a new ticket record.
	Create(ticket *models.Ticket) error
	// CountByStatus counts tickets for an event with the given status.
	CountByStatus(eventID, status string) (int64, error)
	// CountCheckedIn counts checked-in tickets for an event.
	CountCheckedIn(eventID string) (int64, error)
	// CheckIn marks a ticket as checked in and appends the success audit
	// record in the same transaction. The update is conditional on the
	// ticket still being active and not yet checked in, so concurrent
	// attempts collapse to exactly one winner. Returns false when the
	// condition did not match; on error neither write is persisted.
	CheckIn(ticketID, staffID, deviceID string, at time.Time, attempt *models.CheckInAttempt) (bool, error)
}
