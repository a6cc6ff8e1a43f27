package checkin

import (
	"fmt"
	"time"

	ticketRepo "gatepass/database/repository/ticket"
	userRepo "gatepass/database/repository/user"
	"gatepass/models"
)

// Validator runs the ordered business-rule checks for one check-in
// attempt. The first failing check wins; the order is fixed so staff
// always see the most specific diagnostic.
type Validator struct {
	Users   userRepo.UserRepository
	Tickets ticketRepo.TicketRepository

	// Now is swappable for window tests.
	Now func() time.Time
}

// NewValidator builds a validator over the given repositories.
func NewValidator(users userRepo.UserRepository, tickets ticketRepo.TicketRepository) *Validator {
	return &Validator{Users: users, Tickets: tickets, Now: time.Now}
}

// ValidateCheckIn applies all business rules for a check-in attempt.
// device is the scanning-side device registration, nil when none was
// presented. Returns nil when the ticket may be checked in.
func (v *Validator) ValidateCheckIn(ticket *models.Ticket, event *models.Event, device *models.DeviceRegistration) error {
	if ticket.Status != models.TicketStatusActive {
		return NewError(CodeTicketCancelled, "Ticket is not active")
	}

	if ticket.IsCheckedIn() {
		return NewError(CodeAlreadyCheckedIn, "Already checked in")
	}

	if !event.IsCheckInOpen(v.Now()) {
		return NewError(CodeCheckInClosed, "Check-in is not open for this event")
	}

	holder, err := v.Users.GetByID(ticket.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up ticket holder %s: %w", ticket.UserID, err)
	}
	if holder == nil {
		// A missing profile is indistinguishable from an unverified one.
		return NewError(CodeUserNotVerified, "User verification required")
	}
	if !holder.IsVerified {
		return NewError(CodeUserNotVerified, "User verification required")
	}

	if event.RequireDeviceRegistration && device != nil {
		if !event.AllowMultipleDevices {
			// Strict matching: check-in must come from the device bound
			// at registration.
			if ticket.RegisteredDeviceID == "" {
				return NewError(CodeInvalidDevice, "Device registration required")
			}
			if device.ID != ticket.RegisteredDeviceID {
				return NewError(CodeInvalidDevice, "Check-in must be from registered device")
			}
		} else {
			// Any of the ticket holder's registered devices is allowed.
			if device.UserID != ticket.UserID {
				return NewError(CodeInvalidDevice, "Device not registered to ticket holder")
			}
		}
	}

	if event.MaxAttendees > 0 {
		count, err := v.Tickets.CountCheckedIn(event.ID)
		if err != nil {
			return fmt.Errorf("failed to count checked-in attendees for event %s: %w", event.ID, err)
		}
		if count >= int64(event.MaxAttendees) {
			return NewError(CodeEventAtCapacity, "Event is at capacity")
		}
	}

	return nil
}
