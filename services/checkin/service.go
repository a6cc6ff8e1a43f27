package checkin

import (
	"context"
	"sync"
	"time"

	auditRepo "gatepass/database/repository/audit"
	deviceRepo "gatepass/database/repository/device"
	eventRepo "gatepass/database/repository/event"
	ticketRepo "gatepass/database/repository/ticket"
	userRepo "gatepass/database/repository/user"
	"gatepass/models"
	"gatepass/services/notification"
	"gatepass/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxScannedDataLen = 500

// DefaultCheckInService is the production implementation of CheckInService.
type DefaultCheckInService struct {
	Codec     *Codec
	Validator *Validator
	Tickets   ticketRepo.TicketRepository
	Events    eventRepo.EventRepository
	Devices   deviceRepo.DeviceRepository
	Users     userRepo.UserRepository
	Audit     auditRepo.AuditRepository
	// Notifier is optional; push failures never fail a check-in.
	Notifier notification.NotificationService

	// eventLocks serializes the capacity check and ticket mutation per
	// event, so concurrent accepts cannot overshoot max_attendees.
	eventLocks sync.Map

	// Now is swappable for tests.
	Now func() time.Time
}

// NewDefaultCheckInService wires the check-in pipeline together.
func NewDefaultCheckInService(
	codec *Codec,
	validator *Validator,
	tickets ticketRepo.TicketRepository,
	events eventRepo.EventRepository,
	devices deviceRepo.DeviceRepository,
	users userRepo.UserRepository,
	audit auditRepo.AuditRepository,
	notifier notification.NotificationService,
) *DefaultCheckInService {
	return &DefaultCheckInService{
		Codec:     codec,
		Validator: validator,
		Tickets:   tickets,
		Events:    events,
		Devices:   devices,
		Users:     users,
		Audit:     audit,
		Notifier:  notifier,
		Now:       time.Now,
	}
}

// IssueToken generates a fresh QR token after verifying that the ticket
// belongs to the requesting user and is still usable.
func (s *DefaultCheckInService) IssueToken(ticketID, requestingUserID string) (*IssuedToken, error) {
	ticket, err := s.Tickets.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.UserID != requestingUserID {
		return nil, NewError(CodeInvalidToken, "Ticket not found")
	}
	if ticket.Status != models.TicketStatusActive {
		return nil, NewError(CodeTicketCancelled, "Ticket is not active")
	}
	if ticket.IsCheckedIn() {
		return nil, NewError(CodeAlreadyCheckedIn, "Ticket already used")
	}

	holder, err := s.Users.GetByID(ticket.UserID)
	if err != nil {
		return nil, err
	}
	if holder == nil || !holder.IsVerified {
		return nil, NewError(CodeUserNotVerified, "User verification required")
	}

	return s.Codec.Issue(context.Background(), ticket.ID, requestingUserID)
}

// ValidateAndCheckIn runs the full scan pipeline. Every attempt,
// including ones whose token never resolves to a ticket, produces one
// immutable audit record; unexpected faults are converted to
// unknown_error rather than propagating past this entry point.
func (s *DefaultCheckInService) ValidateAndCheckIn(req ScanRequest) (result *CheckInResult) {
	logger := utils.GetLogger()
	ctx := context.Background()

	attempt := &models.CheckInAttempt{
		ID:            uuid.NewString(),
		ScannedData:   truncate(req.RawToken, maxScannedDataLen),
		ScannerUserID: req.ScannerUserID,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("check-in validation panic", zap.Any("error", r))
			attempt.Result = models.ResultUnknownError
			attempt.ResultMessage = "Unexpected validation failure"
			s.record(attempt)
			result = &CheckInResult{
				Success: false,
				Code:    CodeUnknownError,
				Message: "Check-in failed: unexpected error",
			}
		}
	}()

	ticketID, err := s.Codec.Validate(ctx, req.RawToken, req.ScannerUserID)
	if err != nil {
		return s.reject(attempt, err)
	}

	ticket, err := s.Tickets.GetByID(ticketID)
	if err != nil {
		return s.reject(attempt, err)
	}
	if ticket == nil {
		// Data inconsistency: the token verified but its ticket is gone.
		// Surfaced as invalid_token, logged distinctly for forensics.
		logger.Warn("valid token resolved to missing ticket",
			zap.String("ticketId", ticketID),
			zap.String("scannerUserId", req.ScannerUserID))
		return s.reject(attempt, NewError(CodeInvalidToken, "Invalid ticket"))
	}

	attempt.TicketID = ticket.ID
	attempt.EventID = ticket.EventID

	event, err := s.Events.GetByID(ticket.EventID)
	if err != nil {
		return s.reject(attempt, err)
	}
	if event == nil {
		logger.Warn("ticket references missing event",
			zap.String("ticketId", ticket.ID),
			zap.String("eventId", ticket.EventID))
		return s.reject(attempt, NewError(CodeInvalidToken, "Invalid ticket"))
	}

	var device *models.DeviceRegistration
	if req.DeviceFingerprint != "" {
		device, err = s.Devices.GetByFingerprint(req.DeviceFingerprint)
		if err != nil {
			return s.reject(attempt, err)
		}
		if device != nil {
			attempt.ScannerDeviceID = device.ID
		} else if event.RequireDeviceRegistration {
			return s.reject(attempt, NewError(CodeInvalidDevice, "Device not registered"))
		}
	}

	// Serialize the rules and the mutation per event so capacity holds
	// under concurrent scans.
	mu := s.lockFor(event.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.Validator.ValidateCheckIn(ticket, event, device); err != nil {
		return s.reject(attempt, err)
	}

	deviceID := ""
	if device != nil {
		deviceID = device.ID
	}

	// The success audit record is committed together with the ticket
	// mutation; a check-in with no audit trail cannot be reported.
	attempt.Result = models.ResultSuccess
	attempt.ResultMessage = "Successfully checked in"
	won, err := s.Tickets.CheckIn(ticket.ID, req.ScannerUserID, deviceID, s.Now(), attempt)
	if err != nil {
		return s.reject(attempt, err)
	}
	if !won {
		// A racing scan checked the ticket in between validation and the
		// conditional write.
		return s.reject(attempt, NewError(CodeAlreadyCheckedIn, "Already checked in"))
	}

	result = &CheckInResult{
		Success:    true,
		Code:       "",
		Message:    "Check-in successful",
		EventTitle: event.Title,
	}
	if holder, err := s.Users.GetByID(ticket.UserID); err == nil && holder != nil {
		result.AttendeeName = holder.FullName
		result.AttendeeEmail = holder.Email
	}

	logger.Info("attendee checked in",
		zap.String("ticketId", ticket.ID),
		zap.String("eventId", event.ID),
		zap.String("scannerUserId", req.ScannerUserID))

	s.notifySuccess(ctx, ticket, event)
	return result
}

// reject records the failed attempt and converts the error to a result.
// Errors outside the taxonomy are logged with context and surfaced as a
// generic failure.
func (s *DefaultCheckInService) reject(attempt *models.CheckInAttempt, err error) *CheckInResult {
	code := CodeOf(err)
	message := "Check-in failed"
	if ce, ok := err.(*Error); ok {
		message = ce.Message
	} else {
		utils.GetLogger().Error("unexpected check-in failure",
			zap.String("ticketId", attempt.TicketID),
			zap.String("scannerUserId", attempt.ScannerUserID),
			zap.Error(err))
	}

	attempt.Result = code.AuditResult()
	attempt.ResultMessage = message
	s.record(attempt)

	return &CheckInResult{Success: false, Code: code, Message: message}
}

func (s *DefaultCheckInService) record(attempt *models.CheckInAttempt) {
	if err := s.Audit.Create(attempt); err != nil {
		utils.GetLogger().Error("failed to write check-in audit record",
			zap.String("attemptId", attempt.ID),
			zap.Error(err))
	}
}

func (s *DefaultCheckInService) notifySuccess(ctx context.Context, ticket *models.Ticket, event *models.Event) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.SendUserPush(ctx, ticket.UserID,
		"Checked in",
		"You are checked in to "+event.Title,
		map[string]string{"ticketId": ticket.ID, "eventId": event.ID},
	)
	if err != nil {
		utils.GetLogger().Warn("failed to send check-in push", zap.Error(err))
	}
}

func (s *DefaultCheckInService) lockFor(eventID string) *sync.Mutex {
	mu, _ := s.eventLocks.LoadOrStore(eventID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
