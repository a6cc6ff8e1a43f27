package models

import "time"

// Check-in attempt result codes. Closed enumeration; every audit record
// carries exactly one of these.
const (
	ResultSuccess          = "success"
	ResultInvalidToken     = "invalid_token"
	ResultExpiredToken     = "expired_token"
	ResultAlreadyCheckedIn = "already_checked_in"
	ResultInvalidDevice    = "invalid_device"
	ResultTicketCancelled  = "ticket_cancelled"
	ResultUserNotVerified  = "user_not_verified"
	ResultCheckInClosed    = "check_in_closed"
	ResultEventAtCapacity  = "event_at_capacity"
	ResultUnknownError     = "unknown_error"
)

// CheckInAttempt is an immutable audit record of one validation attempt.
// Records both successful and failed attempts; never updated or deleted.
type CheckInAttempt struct {
	ID string `bson:"id" json:"id"`

	// What was scanned (truncated for safety).
	ScannedData string `bson:"scannedData" json:"scannedData"`

	// Who/what performed the scan.
	ScannerUserID   string `bson:"scannerUserId" json:"scannerUserId"`
	ScannerDeviceID string `bson:"scannerDeviceId,omitempty" json:"scannerDeviceId,omitempty"`

	// What was found. TicketID is empty when the token never resolved.
	TicketID string `bson:"ticketId,omitempty" json:"ticketId,omitempty"`
	EventID  string `bson:"eventId,omitempty" json:"eventId,omitempty"`

	Result        string `bson:"result" json:"result"`
	ResultMessage string `bson:"resultMessage" json:"resultMessage"`

	// Location data (optional).
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`

	// Request metadata.
	IPAddress string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// CheckInStats aggregates scan outcomes for one event.
type CheckInStats struct {
	TotalScans      int64 `bson:"totalScans" json:"totalScans"`
	SuccessfulScans int64 `bson:"successfulScans" json:"successfulScans"`
	FailedScans     int64 `bson:"failedScans" json:"failedScans"`
}
