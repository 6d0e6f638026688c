package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/garyjia/approvals-console/internal/devserver"
	"github.com/garyjia/approvals-console/internal/fixtures"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/migrations"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/repository"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/approvals-console/pkg/database"
)

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestServer(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "dev.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(context.Background(), migrations.FS))

	backend := devserver.NewService(
		repository.NewApprovalRepository(db.DB, logger),
		repository.NewAdminRepository(db.DB, logger),
		repository.NewDeviceTokenRepository(db.DB, logger),
		sqlite.NewDB(db.DB, logger),
		nil,
		mockLogger{},
	)
	records, err := fixtures.Approvals()
	require.NoError(t, err)
	require.NoError(t, backend.Seed(context.Background(), fixtures.AdminEmail, fixtures.AdminPassword, records))

	return NewServer(cfg, backend, mockLogger{})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, DefaultServerConfig())

	w, body := doJSON(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(200), body["statusCode"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, DefaultServerConfig())

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{name: "valid", body: map[string]string{"email": fixtures.AdminEmail, "password": fixtures.AdminPassword}, wantStatus: http.StatusOK},
		{name: "wrong password", body: map[string]string{"email": fixtures.AdminEmail, "password": "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "missing password", body: map[string]string{"email": fixtures.AdminEmail}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, s, http.MethodPost, "/api/v1/admin/login", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, fixtures.AdminEmail, data["email"])
				assert.NotNil(t, data["id"])
			}
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.LoginRate = rate.Limit(0.001)
	cfg.LoginBurst = 2
	s := newTestServer(t, cfg)

	creds := map[string]string{"email": fixtures.AdminEmail, "password": "nope"}
	for i := 0; i < 2; i++ {
		w, _ := doJSON(t, s, http.MethodPost, "/api/v1/admin/login", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w, body := doJSON(t, s, http.MethodPost, "/api/v1/admin/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, float64(429), body["statusCode"])
}

func TestApprovalEndpoints(t *testing.T) {
	s := newTestServer(t, DefaultServerConfig())

	w, body := doJSON(t, s, http.MethodGet, "/api/v1/approval/allDetails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := body["data"].([]interface{})
	require.Len(t, items, 6)

	first := items[0].(map[string]interface{})
	id := int64(first["id"].(float64))

	w, body = doJSON(t, s, http.MethodGet, "/api/v1/approval/getDetails/"+jsonID(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first["id"], body["data"].(map[string]interface{})["id"])

	w, body = doJSON(t, s, http.MethodPost, "/api/v1/approval/modifyStatus", map[string]interface{}{
		"id":     id,
		"status": "REJECTED",
		"reason": "bad data",
	})
	require.Equal(t, http.StatusOK, w.Code)
	approval := body["approval"].(map[string]interface{})
	assert.Equal(t, "REJECTED", approval["status"])
	assert.Equal(t, "bad data", approval["reason"])

	w, _ = doJSON(t, s, http.MethodGet, "/api/v1/approval/getDetails/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, s, http.MethodGet, "/api/v1/approval/getDetails/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, s, http.MethodPost, "/api/v1/approval/modifyStatus", map[string]interface{}{"id": id, "status": "REJECTED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateApproval(t *testing.T) {
	s := newTestServer(t, DefaultServerConfig())

	w, body := doJSON(t, s, http.MethodPost, "/api/v1/approval/create", map[string]interface{}{
		"type":    "Refund",
		"rawJson": map[string]interface{}{"totalAmount": 25},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", data["status"])

	w, body = doJSON(t, s, http.MethodGet, "/api/v1/approval/allDetails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]interface{}), 7)
}

func TestRegisterDeviceToken(t *testing.T) {
	s := newTestServer(t, DefaultServerConfig())

	w, body := doJSON(t, s, http.MethodPost, "/api/v1/user/device-token", map[string]string{
		"userId":     "1",
		"token":      "fcm-token",
		"deviceType": "ANDROID",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w, _ = doJSON(t, s, http.MethodPost, "/api/v1/user/device-token", map[string]string{"userId": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	unlimited := NewIPRateLimiter(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, unlimited.Allow("10.0.0.1"))
	}
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(0.001), 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	now = now.Add(5 * time.Minute)
	assert.True(t, l.Allow("10.0.0.2"))
	require.Equal(t, 2, l.Len())

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, l.Cleanup(10*time.Minute))
	assert.Equal(t, 1, l.Len())

	// a dropped IP starts over with a full bucket
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.2"))
}

func TestIPRateLimiter_RunCleanupStopsOnCancel(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	l.Allow("10.0.0.1")
	l.now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunCleanup(ctx, time.Millisecond, time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func jsonID(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, DefaultServerConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/approval/allDetails", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
