package ticket

import (
	"fmt"

	"gatepass/models"

	"github.com/google/uuid"
)

// RegisterDevice enrolls a device from its raw characteristics. The
// characteristics map is hashed canonically, so the same device always
// resolves to the same registration.
func (s *DefaultTicketService) RegisterDevice(userID, deviceName, deviceType, pushToken string, characteristics map[string]string) (*models.DeviceRegistration, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if deviceType == "" {
		deviceType = models.DeviceTypeWeb
	}
	merged := map[string]string{"user_id": userID, "device_type": deviceType}
	for k, v := range characteristics {
		merged[k] = v
	}
	fingerprintHash := s.Hasher.Hash(merged)

	existing, err := s.Devices.GetByFingerprint(fingerprintHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up device: %w", err)
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, ErrDeviceOwnedByOther
		}
		if pushToken != "" && pushToken != existing.PushToken {
			existing.PushToken = pushToken
			if err := s.Devices.Update(existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	if deviceName == "" {
		deviceName = "Unknown Device"
	}
	device := &models.DeviceRegistration{
		ID:              uuid.NewString(),
		UserID:          userID,
		DeviceType:      deviceType,
		DeviceName:      deviceName,
		FingerprintHash: fingerprintHash,
		PushToken:       pushToken,
	}
	if err := s.Devices.Create(device); err != nil {
		return nil, err
	}
	return device, nil
}

// GetMyDevices lists the user's active device registrations.
func (s *DefaultTicketService) GetMyDevices(userID string) ([]models.DeviceRegistration, error) {
	return s.Devices.ListActiveByUser(userID)
}

// RemoveDevice soft-deactivates a device owned by the user.
func (s *DefaultTicketService) RemoveDevice(userID, deviceID string) error {
	return s.Devices.Deactivate(deviceID, userID)
}
