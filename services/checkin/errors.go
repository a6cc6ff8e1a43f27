package checkin

import (
	"fmt"

	"gatepass/models"
)

// Code identifies one terminal check-in failure. The set is closed;
// every rejection maps to exactly one code.
type Code string

const (
	CodeRateLimitExceeded        Code = "rate_limit_exceeded"
	CodeScannerRateLimitExceeded Code = "scanner_rate_limit_exceeded"
	CodeInvalidToken             Code = "invalid_token"
	CodeTokenExpired             Code = "expired_token"
	CodeTokenAlreadyUsed         Code = "token_already_used"
	CodeTicketCancelled          Code = "ticket_cancelled"
	CodeAlreadyCheckedIn         Code = "already_checked_in"
	CodeCheckInClosed            Code = "check_in_closed"
	CodeUserNotVerified          Code = "user_not_verified"
	CodeInvalidDevice            Code = "invalid_device"
	CodeEventAtCapacity          Code = "event_at_capacity"
	CodeUnknownError             Code = "unknown_error"
)

// Error is a typed, recoverable-by-caller check-in failure. These are
// expected conditions; none should crash the process.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed check-in error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the failure code from an error, or unknown_error for
// anything outside the taxonomy.
func CodeOf(err error) Code {
	if ce, ok := err.(*Error); ok {
		return ce.Code
	}
	return CodeUnknownError
}

// AuditResult maps a failure code to the closed audit result enumeration.
// Replayed tokens and scanner throttling are recorded as invalid_token,
// matching how they surface to the scanning client.
func (c Code) AuditResult() string {
	switch c {
	case CodeTokenExpired:
		return models.ResultExpiredToken
	case CodeInvalidToken, CodeTokenAlreadyUsed, CodeScannerRateLimitExceeded, CodeRateLimitExceeded:
		return models.ResultInvalidToken
	case CodeTicketCancelled:
		return models.ResultTicketCancelled
	case CodeAlreadyCheckedIn:
		return models.ResultAlreadyCheckedIn
	case CodeCheckInClosed:
		return models.ResultCheckInClosed
	case CodeUserNotVerified:
		return models.ResultUserNotVerified
	case CodeInvalidDevice:
		return models.ResultInvalidDevice
	case CodeEventAtCapacity:
		return models.ResultEventAtCapacity
	default:
		return models.ResultUnknownError
	}
}
