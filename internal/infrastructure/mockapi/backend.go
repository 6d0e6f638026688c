// Package mockapi is an in-memory stand-in for the approvals backend,
// serving the embedded fixtures.
package mockapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/domain/apperr"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/extract"
	"github.com/garyjia/approvals-console/internal/fixtures"
	"github.com/garyjia/approvals-console/internal/normalize"
)

// DefaultDelay is the simulated network latency
const DefaultDelay = 800 * time.Millisecond

// Backend implements port.Backend over in-memory raw records
type Backend struct {
	mu      sync.Mutex
	order   []string
	records map[string]map[string]interface{}
	tokens  map[string]string

	user       *entity.User
	delay      time.Duration
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

var _ port.Backend = (*Backend)(nil)

// Option configures the mock backend
type Option func(*Backend)

// WithDelay sets the simulated latency
func WithDelay(d time.Duration) Option {
	return func(b *Backend) {
		b.delay = d
	}
}

// WithRecords replaces the fixture records
func WithRecords(records []map[string]interface{}) Option {
	return func(b *Backend) {
		b.load(records)
	}
}

// WithNormalizer replaces the record normalizer
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(b *Backend) {
		b.normalizer = n
	}
}

// New creates a mock backend seeded with the embedded fixtures
func New(logger *zap.Logger, opts ...Option) (*Backend, error) {
	records, err := fixtures.Approvals()
	if err != nil {
		return nil, err
	}

	b := &Backend{
		tokens:     make(map[string]string),
		user:       entity.NewUser("1", fixtures.AdminEmail, fixtures.AdminFirstName, fixtures.AdminLastName),
		delay:      DefaultDelay,
		normalizer: normalize.New(),
		logger:     logger,
	}
	b.load(records)

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

func (b *Backend) load(records []map[string]interface{}) {
	b.order = b.order[:0]
	b.records = make(map[string]map[string]interface{}, len(records))
	for _, r := range records {
		id, _ := extract.FirstString(r, "id", "Id", "ID")
		if id == "" {
			continue
		}
		if _, dup := b.records[id]; !dup {
			b.order = append(b.order, id)
		}
		b.records[id] = r
	}
}

// Login accepts any non-empty credentials
func (b *Backend) Login(ctx context.Context, username, password string) (*entity.User, error) {
	if err := b.wait(ctx, "Login"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperr.Unauthorized("Login", 401)
	}
	b.logger.Info("Mock login", zap.String("username", username))
	u := *b.user
	return &u, nil
}

// List returns every record in fixture order
func (b *Backend) List(ctx context.Context) ([]*entity.Approval, error) {
	if err := b.wait(ctx, "List"); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*entity.Approval, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.normalizer.Normalize(b.records[id]))
	}
	return out, nil
}

// GetByID returns one record
func (b *Backend) GetByID(ctx context.Context, id string) (*entity.Approval, error) {
	if err := b.wait(ctx, "GetByID"); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.records[id]
	if !ok {
		return nil, apperr.NotFound("GetByID", fmt.Sprintf("Approval %s not found", id))
	}
	return b.normalizer.Normalize(r), nil
}

// Approve marks the record approved. The reason is replaced by the
// optional note, or cleared.
func (b *Backend) Approve(ctx context.Context, id string, reason string) (*entity.Approval, error) {
	var note interface{}
	if reason = strings.TrimSpace(reason); reason != "" {
		note = reason
	}
	return b.setStatus(ctx, "Approve", id, "APPROVED", note)
}

// Reject marks the record rejected with reason
func (b *Backend) Reject(ctx context.Context, id string, reason string) (*entity.Approval, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("Reject", "Rejection reason is required")
	}
	return b.setStatus(ctx, "Reject", id, "REJECTED", reason)
}

func (b *Backend) setStatus(ctx context.Context, op, id, status string, reason interface{}) (*entity.Approval, error) {
	if err := b.wait(ctx, op); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.records[id]
	if !ok {
		return nil, apperr.NotFound(op, fmt.Sprintf("Approval %s not found", id))
	}
	r["status"] = status
	r["reason"] = reason

	b.logger.Info("Mock status change", zap.String("id", id), zap.String("status", status))
	return b.normalizer.Normalize(r), nil
}

// RegisterDeviceToken records the token for the user
func (b *Backend) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if err := b.wait(ctx, "RegisterDeviceToken"); err != nil {
		return err
	}
	if userID == "" || token == "" {
		return apperr.Validation("RegisterDeviceToken", "User id and token are required")
	}

	b.mu.Lock()
	b.tokens[userID] = token
	b.mu.Unlock()

	b.logger.Info("Mock device token registered", zap.String("user_id", userID))
	return nil
}

// Token returns the token registered for userID
func (b *Backend) Token(userID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tokens[userID]
	return t, ok
}

// wait simulates latency; cancellation surfaces as a network failure
func (b *Backend) wait(ctx context.Context, op string) error {
	if b.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(b.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apperr.Network(op, ctx.Err())
	case <-timer.C:
		return nil
	}
}
