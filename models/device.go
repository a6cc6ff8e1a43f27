// File: gatepass/models/device.go
package models

import "time"

// Device type values.
const (
	DeviceTypeIOS     = "ios"
	DeviceTypeAndroid = "android"
	DeviceTypeWeb     = "web"
)

// DeviceRegistration is a user's enrolled device, used to bind tickets
// and prevent sharing. The fingerprint hash is globally unique.
type DeviceRegistration struct {
	ID     string `bson:"id" json:"deviceId"`
	UserID string `bson:"userId" json:"userId"`

	DeviceType string `bson:"deviceType" json:"deviceType"`
	DeviceName string `bson:"deviceName" json:"deviceName"`

	// FingerprintHash is the SHA-256 hash of the device characteristics
	// combined with the server secret.
	FingerprintHash string `bson:"fingerprintHash" json:"-"`

	IsTrusted          bool       `bson:"isTrusted" json:"isTrusted"`
	TrustEstablishedAt *time.Time `bson:"trustEstablishedAt,omitempty" json:"trustEstablishedAt,omitempty"`
	LastSeenAt         time.Time  `bson:"lastSeenAt" json:"lastSeenAt"`

	// Push notification token (optional).
	PushToken string `bson:"pushToken,omitempty" json:"-"`

	RegisteredAt time.Time `bson:"registeredAt" json:"registeredAt"`
	IsActive     bool      `bson:"isActive" json:"isActive"`
}
