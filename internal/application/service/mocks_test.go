package service

import (
	"context"
	"sync"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/domain/entity"
)

type mockApprovalRepo struct {
	listFunc    func(ctx context.Context) ([]*entity.Approval, error)
	getByIDFunc func(ctx context.Context, id string) (*entity.Approval, error)
	approveFunc func(ctx context.Context, id, reason string) (*entity.Approval, error)
	rejectFunc  func(ctx context.Context, id, reason string) (*entity.Approval, error)
}

func (m *mockApprovalRepo) List(ctx context.Context) ([]*entity.Approval, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.Approval{}, nil
}

func (m *mockApprovalRepo) GetByID(ctx context.Context, id string) (*entity.Approval, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Approval{ID: id, Status: entity.StatusPending}, nil
}

func (m *mockApprovalRepo) Approve(ctx context.Context, id, reason string) (*entity.Approval, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, id, reason)
	}
	return nil, nil
}

func (m *mockApprovalRepo) Reject(ctx context.Context, id, reason string) (*entity.Approval, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id, reason)
	}
	return nil, nil
}

type mockAuthGateway struct {
	loginFunc func(ctx context.Context, username, password string) (*entity.User, error)
}

func (m *mockAuthGateway) Login(ctx context.Context, username, password string) (*entity.User, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return entity.NewUser("1", username+"@example.com", "Test", "User"), nil
}

type mockRegistrar struct {
	mu       sync.Mutex
	calls    []string
	register func(ctx context.Context, userID, token string) error
}

func (m *mockRegistrar) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	m.mu.Lock()
	m.calls = append(m.calls, userID+":"+token)
	m.mu.Unlock()
	if m.register != nil {
		return m.register(ctx, userID, token)
	}
	return nil
}

func (m *mockRegistrar) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockTokenStore struct {
	tokens []*port.DeviceToken
	err    error
}

func (m *mockTokenStore) Upsert(ctx context.Context, token *port.DeviceToken) error {
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *mockTokenStore) ListTokens(ctx context.Context) ([]*port.DeviceToken, error) {
	return m.tokens, m.err
}

type mockNotifier struct {
	sendFunc func(ctx context.Context, msg *port.PushMessage) (string, error)
	sent     []*port.PushMessage
}

func (m *mockNotifier) Send(ctx context.Context, msg *port.PushMessage) (string, error) {
	m.sent = append(m.sent, msg)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return "projects/test/messages/1", nil
}

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) HasError(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.errors {
		if e == msg {
			return true
		}
	}
	return false
}
