package models

import "time"

// Event is a scheduled physical occurrence tied to an underlying listing.
// Created once per listing; never deleted while tickets reference it.
type Event struct {
	ID        string `bson:"id" json:"id"`
	ListingID string `bson:"listingId" json:"listingId"`
	Title     string `bson:"title" json:"title"`
	Location  string `bson:"location" json:"location"`
	HostID    string `bson:"hostId" json:"hostId"`

	MaxAttendees    int       `bson:"maxAttendees" json:"maxAttendees"` // 0 means unlimited
	CheckInOpensAt  time.Time `bson:"checkInOpensAt" json:"checkInOpensAt"`
	CheckInClosesAt time.Time `bson:"checkInClosesAt" json:"checkInClosesAt"`

	// Security settings.
	RequireDeviceRegistration bool `bson:"requireDeviceRegistration" json:"requireDeviceRegistration"`
	AllowMultipleDevices      bool `bson:"allowMultipleDevices" json:"allowMultipleDevices"`
	QRRotationSeconds         int  `bson:"qrRotationSeconds" json:"qrRotationSeconds"` // minimum 30

	// Grace windows around the event start.
	AllowEarlyCheckInMinutes int `bson:"allowEarlyCheckInMinutes" json:"allowEarlyCheckInMinutes"`
	AllowLateCheckInMinutes  int `bson:"allowLateCheckInMinutes" json:"allowLateCheckInMinutes"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsCheckInOpen reports whether check-in is currently allowed.
func (e *Event) IsCheckInOpen(now time.Time) bool {
	return !now.Before(e.CheckInOpensAt) && !now.After(e.CheckInClosesAt)
}
