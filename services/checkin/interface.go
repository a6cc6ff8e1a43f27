package checkin

// ScanRequest carries everything a staff scan submits for validation.
type ScanRequest struct {
	RawToken      string
	ScannerUserID string
	// DeviceFingerprint is the opaque fingerprint hash of the attendee
	// device presented at the gate; empty when none was captured.
	DeviceFingerprint string
	Latitude          *float64
	Longitude         *float64
	IPAddress         string
	UserAgent         string
}

// CheckInResult is the terminal outcome of one scan. Every scan yields
// exactly one result and exactly one audit record.
type CheckInResult struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code"`
	Message string `json:"message"`

	AttendeeName  string `json:"attendeeName,omitempty"`
	AttendeeEmail string `json:"attendeeEmail,omitempty"`
	EventTitle    string `json:"eventTitle,omitempty"`
}

// CheckInService is the entry point of the check-in security subsystem.
type CheckInService interface {
	// IssueToken generates a fresh QR token for a ticket after verifying
	// ownership and ticket state.
	IssueToken(ticketID, requestingUserID string) (*IssuedToken, error)
	// ValidateAndCheckIn runs the full scan pipeline: token validation,
	// replay guarding, business rules, the atomic ticket mutation and
	// the unconditional audit record.
	ValidateAndCheckIn(req ScanRequest) *CheckInResult
}
