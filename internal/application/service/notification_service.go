package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/domain/entity"
)

// Push notification data types
const (
	PushTypeNewApproval = "approval"
	PushTypeTest        = "test"
)

// NotificationService pushes approval notifications to registered devices
type NotificationService interface {
	// NotifyNewApproval pushes to every registered device and returns how
	// many sends succeeded
	NotifyNewApproval(ctx context.Context, a *entity.Approval) (int, error)
	// SendTest pushes a test notification to one device
	SendTest(ctx context.Context, token string) (string, error)
}

type notificationServiceImpl struct {
	tokens   port.DeviceTokenStore
	notifier port.Notifier
	logger   Logger
	now      func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	tokens port.DeviceTokenStore,
	notifier port.Notifier,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// NotifyNewApproval sends a new-request notification to all devices
func (s *notificationServiceImpl) NotifyNewApproval(ctx context.Context, a *entity.Approval) (int, error) {
	if a == nil {
		return 0, fmt.Errorf("approval cannot be nil")
	}

	tokens, err := s.tokens.ListTokens(ctx)
	if err != nil {
		s.logger.Error("Failed to list device tokens", "error", err)
		return 0, fmt.Errorf("list device tokens: %w", err)
	}

	sent := 0
	var errs []error
	for _, t := range tokens {
		msg := &port.PushMessage{
			Token: t.Token,
			Title: "New approval request",
			Body:  a.Description,
			Data: map[string]string{
				"approvalId": a.ID,
				"category":   a.Category.String(),
				"type":       PushTypeNewApproval,
				"timestamp":  s.now().UTC().Format(time.RFC3339),
			},
		}
		if _, err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Error("Failed to push notification", "error", err, "user_id", t.UserID, "approval_id", a.ID)
			errs = append(errs, fmt.Errorf("push to user %s: %w", t.UserID, err))
			continue
		}
		sent++
	}

	s.logger.Info("New approval notification sent",
		"approval_id", a.ID,
		"devices", len(tokens),
		"sent", sent,
	)

	return sent, errors.Join(errs...)
}

// SendTest pushes the test notification to one device
func (s *notificationServiceImpl) SendTest(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("device token is required")
	}

	id, err := s.notifier.Send(ctx, &port.PushMessage{
		Token: token,
		Title: "Test Notification",
		Body:  "This is a test notification from your backend!",
		Data: map[string]string{
			"approvalId": "123",
			"type":       PushTypeTest,
			"timestamp":  s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		s.logger.Error("Test notification failed", "error", err)
		return "", fmt.Errorf("send test notification: %w", err)
	}

	s.logger.Info("Test notification sent", "message_id", id)
	return id, nil
}
