package ticket

import (
	"fmt"

	"gatepass/models"
)

const recentActivityLimit = 20

// hostEvent resolves an event and verifies the caller hosts it.
func (s *DefaultTicketService) hostEvent(hostID, eventID string) (*models.Event, error) {
	event, err := s.Events.GetByID(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.HostID != hostID {
		return nil, ErrNotAuthorized
	}
	return event, nil
}

// GetAttendees returns the checked-in roster for an event. Host only.
func (s *DefaultTicketService) GetAttendees(hostID, eventID string) (*AttendeeReport, error) {
	event, err := s.hostEvent(hostID, eventID)
	if err != nil {
		return nil, err
	}

	registered, err := s.Tickets.CountByStatus(event.ID, models.TicketStatusActive)
	if err != nil {
		return nil, err
	}
	checkedIn, err := s.Tickets.ListCheckedIn(event.ID)
	if err != nil {
		return nil, err
	}

	attendees := make([]Attendee, 0, len(checkedIn))
	for i := range checkedIn {
		t := &checkedIn[i]
		if t.CheckedInAt == nil {
			continue
		}
		entry := Attendee{CheckedInAt: *t.CheckedInAt}
		if holder, err := s.Users.GetByID(t.UserID); err == nil && holder != nil {
			entry.Name = holder.FullName
			entry.Email = holder.Email
		}
		attendees = append(attendees, entry)
	}

	return &AttendeeReport{
		EventTitle:      event.Title,
		TotalRegistered: registered,
		TotalCheckedIn:  int64(len(attendees)),
		Attendees:       attendees,
	}, nil
}

// GetStats returns scan statistics and recent activity. Host only.
func (s *DefaultTicketService) GetStats(hostID, eventID string) (*StatsReport, error) {
	event, err := s.hostEvent(hostID, eventID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Audit.StatsByEvent(event.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.Audit.ListRecentByEvent(event.ID, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	activity := make([]AttemptView, 0, len(recent))
	for _, a := range recent {
		view := AttemptView{
			Timestamp: a.CreatedAt,
			Result:    a.Result,
			Scanner:   a.ScannerUserID,
			TicketID:  a.TicketID,
		}
		activity = append(activity, view)
	}

	return &StatsReport{
		EventTitle:     event.Title,
		Stats:          stats,
		RecentActivity: activity,
	}, nil
}
