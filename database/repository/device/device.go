package deviceRepo

import "gatepass/models"

// DeviceRepository defines methods for device registration data access.
type DeviceRepository interface {
	// GetByID retrieves a device registration by its unique ID.
	GetByID(id string) (*models.DeviceRegistration, error)
	// GetByFingerprint retrieves a device by its fingerprint hash.
	GetByFingerprint(fingerprintHash string) (*models.DeviceRegistration, error)
	// ListActiveByUser retrieves a user's active devices, most recent first.
	ListActiveByUser(userID string) ([]models.DeviceRegistration, error)
	// Create inserts a new device registration.
	Create(device *models.DeviceRegistration) error
	// Update modifies an existing device registration.
	Update(device *models.DeviceRegistration) error
	// Deactivate soft-deletes a device owned by the given user.
	Deactivate(id, userID string) error
}
