package auditRepo

import "gatepass/models"

// AuditRepository is the append-only store for check-in attempts.
// There are intentionally no update or delete methods.
type AuditRepository interface {
	// Create appends one immutable attempt record.
	Create(attempt *models.CheckInAttempt) error
	// ListRecentByEvent retrieves the most recent attempts for an event.
	ListRecentByEvent(eventID string, limit int64) ([]models.CheckInAttempt, error)
	// StatsByEvent aggregates total/successful/failed scan counts.
	StatsByEvent(eventID string) (*models.CheckInStats, error)
}
