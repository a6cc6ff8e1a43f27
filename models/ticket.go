package models

import "time"

// Ticket status values.
const (
	TicketStatusActive    = "active"
	TicketStatusCancelled = "cancelled"
	TicketStatusSuspended = "suspended"
)

// Ticket represents a verified user's right to attend one event.
// Exactly one ticket exists per (event, user) pair. Tickets are never
// deleted; they are retained for audit.
type Ticket struct {
	ID      string `bson:"id" json:"id"`
	EventID string `bson:"eventId" json:"eventId"`
	UserID  string `bson:"userId" json:"userId"`

	// ServerToken is a cryptographically random secret used as a
	// tamper-evident anchor. Never transmitted to any client.
	ServerToken string `bson:"serverToken" json:"-"`

	Status string `bson:"status" json:"status"`

	RegisteredAt       time.Time `bson:"registeredAt" json:"registeredAt"`
	RegisteredDeviceID string    `bson:"registeredDeviceId,omitempty" json:"registeredDeviceId,omitempty"`

	// Check-in tracking. CheckedInAt is set at most once.
	CheckedInAt     *time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	CheckInDeviceID string     `bson:"checkInDeviceId,omitempty" json:"checkInDeviceId,omitempty"`
	CheckedInBy     string     `bson:"checkedInBy,omitempty" json:"checkedInBy,omitempty"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IsCheckedIn reports whether the ticket has already been used.
func (t *Ticket) IsCheckedIn() bool {
	return t.CheckedInAt != nil
}
