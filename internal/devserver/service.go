// Package devserver implements the approvals backend used for local
// development: approver accounts, raw approval records and device tokens
// kept in SQLite.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/application/service"
	"github.com/garyjia/approvals-console/internal/application/session"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/extract"
	"github.com/garyjia/approvals-console/internal/normalize"
)

// Wire statuses stored for approval records
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Sentinel errors mapped to HTTP statuses by the handlers
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("approval not found")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ModifyStatusRequest is the body of POST /approval/modifyStatus
type ModifyStatusRequest struct {
	ID     int64   `json:"id" validate:"required,gt=0"`
	Status string  `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Reason *string `json:"reason"`
}

// LoginResult is the approver returned by a successful login
type LoginResult struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Service is the development backend
type Service struct {
	approvals     port.ApprovalStore
	admins        port.AdminStore
	tokens        port.DeviceTokenStore
	tx            port.TransactionManager
	notifications service.NotificationService
	normalizer    *normalize.Normalizer
	validate      *validator.Validate
	logger        Logger
}

// NewService creates the backend service. notifications may be nil.
func NewService(
	approvals port.ApprovalStore,
	admins port.AdminStore,
	tokens port.DeviceTokenStore,
	tx port.TransactionManager,
	notifications service.NotificationService,
	logger Logger,
) *Service {
	return &Service{
		approvals:     approvals,
		admins:        admins,
		tokens:        tokens,
		tx:            tx,
		notifications: notifications,
		normalizer:    normalize.New(),
		validate:      validator.New(),
		logger:        logger,
	}
}

// Login checks credentials against the stored bcrypt hash
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if admin == nil {
		s.logger.Info("Login for unknown account", "email", req.Email)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("Login with wrong password", "email", req.Email)
		return nil, ErrInvalidCredentials
	}

	return &LoginResult{
		ID:        admin.ID,
		Email:     admin.Email,
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
	}, nil
}

// CreateAdmin stores an approver account with a hashed password
func (s *Service) CreateAdmin(ctx context.Context, email, password, firstName, lastName string) (*port.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &port.Admin{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ListRecords returns every approval as the backend's raw record
func (s *Service) ListRecords(ctx context.Context) ([]map[string]interface{}, error) {
	stored, err := s.approvals.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]interface{}, 0, len(stored))
	for _, a := range stored {
		records = append(records, toRecord(a))
	}
	return records, nil
}

// GetRecord returns one raw record
func (s *Service) GetRecord(ctx context.Context, id int64) (map[string]interface{}, error) {
	a, err := s.approvals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return toRecord(a), nil
}

// ModifyStatus approves or rejects a record and returns it updated.
// Approving replaces any earlier rejection reason with the optional note.
func (s *Service) ModifyStatus(ctx context.Context, req ModifyStatusRequest) (map[string]interface{}, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	reason := ""
	if req.Reason != nil {
		reason = strings.TrimSpace(*req.Reason)
	}
	if req.Status == StatusRejected {
		if reason == "" {
			return nil, fmt.Errorf("%w: reason is required when rejecting", ErrInvalidRequest)
		}
	}

	var updated *port.StoredApproval
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.approvals.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		if err := s.approvals.UpdateStatus(ctx, req.ID, req.Status, reason); err != nil {
			return err
		}
		updated, err = s.approvals.GetByID(ctx, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Approval status modified", "id", req.ID, "status", req.Status)
	return toRecord(updated), nil
}

// RegisterDeviceToken stores the user's push token
func (s *Service) RegisterDeviceToken(ctx context.Context, req session.Registration) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.tokens.Upsert(ctx, &port.DeviceToken{
		UserID:     req.UserID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
}

// CreateApproval stores a new raw record as pending and notifies every
// registered device. Push failures are logged and do not fail the create.
func (s *Service) CreateApproval(ctx context.Context, raw map[string]interface{}) (map[string]interface{}, error) {
	stored, err := s.insert(ctx, raw)
	if err != nil {
		return nil, err
	}

	record := toRecord(stored)
	if s.notifications != nil {
		approval := s.normalizer.Normalize(record)
		if sent, err := s.notifications.NotifyNewApproval(ctx, approval); err != nil {
			s.logger.Error("New approval notification incomplete", "id", stored.ID, "sent", sent, "error", err)
		}
	}
	return record, nil
}

// Seed creates the approver account and the sample records when the store
// is empty. Safe to run on every start.
func (s *Service) Seed(ctx context.Context, email, password string, records []map[string]interface{}) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		admin, err := s.admins.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if admin == nil {
			if _, err := s.CreateAdmin(ctx, email, password, "Admin", "User"); err != nil {
				return fmt.Errorf("failed to seed admin: %w", err)
			}
			s.logger.Info("Seeded admin account", "email", email)
		}

		existing, err := s.approvals.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		for _, r := range records {
			if _, err := s.insert(ctx, r); err != nil {
				return fmt.Errorf("failed to seed approval: %w", err)
			}
		}
		s.logger.Info("Seeded approvals", "count", len(records))
		return nil
	})
}

// insert stores raw keeping its status, reason and creation date when set
func (s *Service) insert(ctx context.Context, raw map[string]interface{}) (*port.StoredApproval, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: record is required", ErrInvalidRequest)
	}

	body := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		switch k {
		case "id", "Id", "ID", "status", "Status", "reason", "Reason":
			continue
		}
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	stored := &port.StoredApproval{
		Type:      stringOr(raw, "General", "type", "Type"),
		Status:    wireStatus(stringOr(raw, "", "status", "Status")),
		Reason:    stringOr(raw, "", "reason", "Reason"),
		RawRecord: string(data),
	}
	if created, ok := extract.FirstString(raw, "createdOn", "CreatedOn"); ok {
		stored.CreatedOn = parseCreatedOn(created)
	}

	if err := s.approvals.Create(ctx, stored); err != nil {
		return nil, err
	}
	s.logger.Info("Approval stored", "id", stored.ID, "type", stored.Type)
	return stored, nil
}

// toRecord rebuilds the raw record with the stored columns layered on top
func toRecord(a *port.StoredApproval) map[string]interface{} {
	record := map[string]interface{}{}
	if v, err := extract.Decode([]byte(a.RawRecord)); err == nil {
		if m, ok := v.(map[string]interface{}); ok {
			record = m
		}
	}

	record["id"] = a.ID
	record["type"] = a.Type
	record["status"] = a.Status
	if a.Reason != "" {
		record["reason"] = a.Reason
	} else {
		record["reason"] = nil
	}
	record["createdOn"] = a.CreatedOn.UTC().Format(time.RFC3339)
	record["updatedAt"] = a.UpdatedAt.UTC().Format(time.RFC3339)
	return record
}

// wireStatus stores the canonical upper-case status
func wireStatus(raw string) string {
	switch normalize.ParseStatus(raw) {
	case entity.StatusApproved:
		return StatusApproved
	case entity.StatusRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

var createdOnLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// parseCreatedOn returns the zero time for unparseable input so the store
// stamps the insert time instead
func parseCreatedOn(s string) time.Time {
	for _, layout := range createdOnLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stringOr(obj map[string]interface{}, fallback string, keys ...string) string {
	if s, ok := extract.FirstString(obj, keys...); ok {
		return s
	}
	return fallback
}
