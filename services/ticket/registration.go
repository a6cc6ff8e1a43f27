package ticket

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"gatepass/models"
	"gatepass/services/tasks"
	"gatepass/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// newServerToken generates the ticket's secret anchor: 48 bytes of
// entropy, never transmitted to any client.
func newServerToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate server token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RegisterForEvent registers a verified user for the event attached to a
// listing. Exactly one ticket may exist per (event, user) pair.
func (s *DefaultTicketService) RegisterForEvent(userID, listingID string, req RegistrationRequest) (*TicketView, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsVerified {
		return nil, ErrUserNotVerified
	}

	event, err := s.Events.GetByListingID(listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve event: %w", err)
	}
	if event == nil {
		return nil, ErrNoEventForListing
	}

	existing, err := s.Tickets.GetByEventAndUser(event.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	if event.MaxAttendees > 0 {
		registered, err := s.Tickets.CountByStatus(event.ID, models.TicketStatusActive)
		if err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		if registered >= int64(event.MaxAttendees) {
			return nil, ErrEventAtCapacity
		}
	}

	var deviceID string
	if req.DeviceFingerprint != "" && event.RequireDeviceRegistration {
		device, err := s.enrollDevice(userID, req)
		if err != nil {
			return nil, err
		}
		deviceID = device.ID
	}

	serverToken, err := newServerToken()
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		ID:                 uuid.NewString(),
		EventID:            event.ID,
		UserID:             userID,
		ServerToken:        serverToken,
		Status:             models.TicketStatusActive,
		RegisteredDeviceID: deviceID,
	}
	if err := s.Tickets.Create(ticket); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("user registered for event",
		zap.String("userId", userID),
		zap.String("eventId", event.ID),
		zap.String("ticketId", ticket.ID))

	s.scheduleReminder(user.ID, event)

	view := toView(ticket, event)
	return &view, nil
}

// enrollDevice resolves or creates the device registration for the
// fingerprint. A fingerprint already owned by another user is rejected.
func (s *DefaultTicketService) enrollDevice(userID string, req RegistrationRequest) (*models.DeviceRegistration, error) {
	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = models.DeviceTypeWeb
	}
	fingerprintHash := s.Hasher.Hash(map[string]string{
		"device_id":   req.DeviceFingerprint,
		"user_id":     userID,
		"device_type": deviceType,
	})

	device, err := s.Devices.GetByFingerprint(fingerprintHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up device: %w", err)
	}
	if device != nil {
		if device.UserID != userID {
			return nil, ErrDeviceOwnedByOther
		}
		return device, nil
	}

	deviceName := req.DeviceName
	if deviceName == "" {
		deviceName = "Unknown Device"
	}
	device = &models.DeviceRegistration{
		ID:              uuid.NewString(),
		UserID:          userID,
		DeviceType:      deviceType,
		DeviceName:      deviceName,
		FingerprintHash: fingerprintHash,
		PushToken:       req.PushToken,
	}
	if err := s.Devices.Create(device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *DefaultTicketService) scheduleReminder(userID string, event *models.Event) {
	if s.Queue == nil {
		return
	}
	fireAt := event.CheckInOpensAt.Add(-s.ReminderLead)
	if fireAt.Before(time.Now()) {
		return
	}

	payload := models.ReminderPayload{
		UserID:     userID,
		EventID:    event.ID,
		EventTitle: event.Title,
		OpensAt:    event.CheckInOpensAt,
	}
	task, opts, err := tasks.NewReminderTask(payload, fireAt)
	if err != nil {
		utils.GetLogger().Warn("failed to build reminder task", zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task, opts...); err != nil {
		utils.GetLogger().Warn("failed to enqueue reminder task", zap.Error(err))
	}
}

// GetMyTickets returns the user's active tickets, newest first.
func (s *DefaultTicketService) GetMyTickets(userID string) ([]TicketView, error) {
	tickets, err := s.Tickets.ListByUser(userID, models.TicketStatusActive)
	if err != nil {
		return nil, err
	}

	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		event, err := s.Events.GetByID(tickets[i].EventID)
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}
		views = append(views, toView(&tickets[i], event))
	}
	return views, nil
}

func toView(t *models.Ticket, e *models.Event) TicketView {
	return TicketView{
		TicketID:        t.ID,
		EventID:         e.ID,
		EventTitle:      e.Title,
		Location:        e.Location,
		Status:          t.Status,
		RegisteredAt:    t.RegisteredAt,
		CheckInOpensAt:  e.CheckInOpensAt,
		CheckInClosesAt: e.CheckInClosesAt,
		IsCheckedIn:     t.IsCheckedIn(),
		CheckedInAt:     t.CheckedInAt,
	}
}
