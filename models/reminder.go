package models

import "time"

// ReminderPayload is the queued message for a check-in-opens reminder.
type ReminderPayload struct {
	UserID     string    `json:"userId"`
	EventID    string    `json:"eventId"`
	EventTitle string    `json:"eventTitle"`
	OpensAt    time.Time `json:"opensAt"`
}
