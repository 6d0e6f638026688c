package port

import (
	"context"
	"time"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

// ApprovalRepository is the approver-facing view of the backend.
// Every returned approval is normalized.
type ApprovalRepository interface {
	List(ctx context.Context) ([]*entity.Approval, error)
	GetByID(ctx context.Context, id string) (*entity.Approval, error)
	// Approve returns the echoed record, or nil when the backend echoes none
	Approve(ctx context.Context, id string, reason string) (*entity.Approval, error)
	// Reject requires a non-empty reason
	Reject(ctx context.Context, id string, reason string) (*entity.Approval, error)
}

// StoredApproval is a raw approval record as kept by the development backend
type StoredApproval struct {
	ID        int64
	Type      string
	Status    string
	Reason    string
	RawRecord string
	CreatedOn time.Time
	UpdatedAt time.Time
}

// Admin is an approver account of the development backend
type Admin struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// DeviceToken is a registered push token
type DeviceToken struct {
	UserID     string
	Token      string
	DeviceType string
	UpdatedAt  time.Time
}

// ApprovalStore defines persistence operations for raw approval records
type ApprovalStore interface {
	Create(ctx context.Context, a *StoredApproval) error
	GetByID(ctx context.Context, id int64) (*StoredApproval, error)
	List(ctx context.Context) ([]*StoredApproval, error)
	UpdateStatus(ctx context.Context, id int64, status, reason string) error
}

// AdminStore defines persistence operations for approver accounts
type AdminStore interface {
	Create(ctx context.Context, admin *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}

// DeviceTokenStore defines persistence operations for push tokens
type DeviceTokenStore interface {
	Upsert(ctx context.Context, token *DeviceToken) error
	ListTokens(ctx context.Context) ([]*DeviceToken, error)
}

// TransactionManager runs fn inside one transaction carried by ctx
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
