package notification

import (
	"context"
	"fmt"

	deviceRepo "gatepass/database/repository/device"
	"gatepass/utils"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendUserPush(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService sends pushes to a user's most recently seen
// active device that carries a push token.
type DefaultNotificationService struct {
	Devices deviceRepo.DeviceRepository
}

// NewDefaultNotificationService creates the production implementation.
func NewDefaultNotificationService(devices deviceRepo.DeviceRepository) (*DefaultNotificationService, error) {
	if devices == nil {
		return nil, fmt.Errorf("notification service initialization error: device repository is nil")
	}
	return &DefaultNotificationService{Devices: devices}, nil
}

// SendUserPush looks up the user's registered devices and sends a push
// to the first one carrying an FCM token.
func (s *DefaultNotificationService) SendUserPush(ctx context.Context, userID, title, body string, data map[string]string) error {
	devices, err := s.Devices.ListActiveByUser(userID)
	if err != nil {
		return fmt.Errorf("SendUserPush: could not list devices for user %s: %w", userID, err)
	}

	var token string
	for _, d := range devices {
		if d.PushToken != "" {
			token = d.PushToken
			break
		}
	}
	if token == "" {
		return fmt.Errorf("SendUserPush: user %s has no device with a push token", userID)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendUserPush: failed to send FCM message: %w", err)
	}
	return nil
}
