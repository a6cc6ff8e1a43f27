package ticket

import (
	"errors"
	"time"

	auditRepo "gatepass/database/repository/audit"
	deviceRepo "gatepass/database/repository/device"
	eventRepo "gatepass/database/repository/event"
	ticketRepo "gatepass/database/repository/ticket"
	userRepo "gatepass/database/repository/user"
	"gatepass/models"
	"gatepass/services/checkin"

	"github.com/hibiken/asynq"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrUserNotVerified    = errors.New("user verification required")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoEventForListing  = errors.New("this listing does not have check-in enabled")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrEventAtCapacity    = errors.New("event is at capacity")
	ErrDeviceOwnedByOther = errors.New("device registered to another user")
	ErrNotAuthorized      = errors.New("not authorized for this event")
	ErrEventNotFound      = errors.New("event not found")
)

// RegistrationRequest carries the optional device enrollment details
// submitted when registering for an event.
type RegistrationRequest struct {
	DeviceFingerprint string `json:"deviceFingerprint,omitempty"`
	DeviceName        string `json:"deviceName,omitempty"`
	DeviceType        string `json:"deviceType,omitempty"`
	PushToken         string `json:"pushToken,omitempty"`
}

// TicketView is the client-facing projection of a ticket.
type TicketView struct {
	TicketID        string     `json:"ticketId"`
	EventID         string     `json:"eventId"`
	EventTitle      string     `json:"eventTitle"`
	Location        string     `json:"location"`
	Status          string     `json:"status"`
	RegisteredAt    time.Time  `json:"registeredAt"`
	CheckInOpensAt  time.Time  `json:"checkInOpensAt"`
	CheckInClosesAt time.Time  `json:"checkInClosesAt"`
	IsCheckedIn     bool       `json:"isCheckedIn"`
	CheckedInAt     *time.Time `json:"checkedInAt,omitempty"`
}

// Attendee is one checked-in entry of the host roster.
type Attendee struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

// AttendeeReport is the host-facing roster for an event.
type AttendeeReport struct {
	EventTitle      string     `json:"eventTitle"`
	TotalRegistered int64      `json:"totalRegistered"`
	TotalCheckedIn  int64      `json:"totalCheckedIn"`
	Attendees       []Attendee `json:"attendees"`
}

// AttemptView is one recent scan in the host activity feed.
type AttemptView struct {
	Timestamp time.Time `json:"timestamp"`
	Result    string    `json:"result"`
	Scanner   string    `json:"scanner"`
	TicketID  string    `json:"ticketId,omitempty"`
}

// StatsReport is the host-facing scan statistics for an event.
type StatsReport struct {
	EventTitle     string               `json:"eventTitle"`
	Stats          *models.CheckInStats `json:"stats"`
	RecentActivity []AttemptView        `json:"recentActivity"`
}

// TicketService covers registration, device management and host reports.
type TicketService interface {
	RegisterForEvent(userID, listingID string, req RegistrationRequest) (*TicketView, error)
	GetMyTickets(userID string) ([]TicketView, error)
	RegisterDevice(userID, deviceName, deviceType, pushToken string, characteristics map[string]string) (*models.DeviceRegistration, error)
	GetMyDevices(userID string) ([]models.DeviceRegistration, error)
	RemoveDevice(userID, deviceID string) error
	GetAttendees(hostID, eventID string) (*AttendeeReport, error)
	GetStats(hostID, eventID string) (*StatsReport, error)
}

// DefaultTicketService is the production implementation.
type DefaultTicketService struct {
	Events  eventRepo.EventRepository
	Tickets ticketRepo.TicketRepository
	Devices deviceRepo.DeviceRepository
	Users   userRepo.UserRepository
	Audit   auditRepo.AuditRepository
	Hasher  *checkin.FingerprintHasher
	// Queue is optional; reminder scheduling is best effort.
	Queue *asynq.Client
	// ReminderLead is how long before check-in opens the reminder fires.
	ReminderLead time.Duration
}
