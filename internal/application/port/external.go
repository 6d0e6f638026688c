package port

import (
	"context"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

// AuthGateway authenticates approvers
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (*entity.User, error)
}

// DeviceRegistrar registers push tokens for a user
type DeviceRegistrar interface {
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

// Backend is the full backend surface used by the console
type Backend interface {
	ApprovalRepository
	AuthGateway
	DeviceRegistrar
}

// PushMessage is one push notification
type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Notifier sends push notifications to devices
type Notifier interface {
	Send(ctx context.Context, msg *PushMessage) (string, error)
}
