package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/domain/apperr"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/normalize"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// newTestServer serves fixed responses per path and records requests
func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}
		requests = append(requests, rec)

		handler, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(
		Config{BaseURL: srv.URL + "/api/v1/", Timeout: 2 * time.Second, DeviceType: entity.DeviceTypeIOS},
		zap.NewNop(),
		WithNormalizer(normalize.NewWithClock(func() time.Time { return fixedNow })),
	)
	return client, &requests
}

func respond(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_Login(t *testing.T) {
	client, requests := newTestServer(t, map[string]func(w http.ResponseWriter){
		"/api/v1/admin/login": respond(http.StatusOK, `{"message":"ok","statusCode":200,"data":{"id":7,"email":"jane.doe@example.com","firstName":"Jane","lastName":"Doe"}}`),
	})

	user, err := client.Login(context.Background(), "jane.doe@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "7", user.ID)
	assert.Equal(t, "jane.doe", user.Username)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, entity.RoleApprover, user.Role)
	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPost, (*requests)[0].Method)
	assert.Equal(t, map[string]interface{}{"email": "jane.doe@example.com", "password": "secret"}, (*requests)[0].Body)
}

func TestClient_LoginErrors(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		status   int
		body     string
		wantKind apperr.Kind
		wantMsg  string
		wantCall bool
	}{
		{
			name:     "empty credentials",
			username: " ",
			password: "secret",
			wantKind: apperr.KindValidation,
			wantMsg:  "Username and password are required",
		},
		{
			name:     "rejected credentials",
			username: "jane",
			password: "wrong",
			status:   http.StatusUnauthorized,
			body:     `{"message":"user jane not found"}`,
			wantKind: apperr.KindUnauthorized,
			wantMsg:  apperr.MsgInvalidCredentials,
			wantCall: true,
		},
		{
			name:     "server failure still reads as invalid credentials",
			username: "jane",
			password: "secret",
			status:   http.StatusInternalServerError,
			body:     `{"message":"db down"}`,
			wantKind: apperr.KindUnauthorized,
			wantMsg:  apperr.MsgInvalidCredentials,
			wantCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := newTestServer(t, map[string]func(w http.ResponseWriter){
				"/api/v1/admin/login": respond(tt.status, tt.body),
			})

			_, err := client.Login(context.Background(), tt.username, tt.password)

			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.wantKind))
			assert.Equal(t, tt.wantMsg, apperr.UserMessage(err))
			assert.NotContains(t, apperr.UserMessage(err), "not found")
			assert.Equal(t, tt.wantCall, len(*requests) > 0)
		})
	}
}

func TestClient_List(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
	}{
		{
			name:    "records normalized in order",
			body:    `{"statusCode":200,"data":[{"id":1,"type":"Refund","status":"PENDING"},{"id":2,"type":"Suspend","status":"Success"}]}`,
			wantIDs: []string{"1", "2"},
		},
		{name: "null data", body: `{"statusCode":200,"data":null}`, wantIDs: []string{}},
		{name: "missing data", body: `{"statusCode":200}`, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, map[string]func(w http.ResponseWriter){
				"/api/v1/approval/allDetails": respond(http.StatusOK, tt.body),
			})

			approvals, err := client.List(context.Background())

			require.NoError(t, err)
			require.NotNil(t, approvals)
			ids := make([]string, 0, len(approvals))
			for _, a := range approvals {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestClient_ListStatusMapping(t *testing.T) {
	client, _ := newTestServer(t, map[string]func(w http.ResponseWriter){
		"/api/v1/approval/allDetails": respond(http.StatusOK, `{"data":[{"id":2,"status":"Success"},{"id":3,"status":"REJECTED","reason":"dup"}]}`),
	})

	approvals, err := client.List(context.Background())

	require.NoError(t, err)
	require.Len(t, approvals, 2)
	assert.Equal(t, entity.StatusApproved, approvals[0].Status)
	assert.Equal(t, entity.StatusRejected, approvals[1].Status)
	assert.Equal(t, "dup", approvals[1].RejectionReason)
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "message field", status: 500, body: `{"message":"Database unavailable"}`, wantMsg: "Database unavailable"},
		{name: "error field", status: 502, body: `{"error":"Bad gateway"}`, wantMsg: "Bad gateway"},
		{name: "no body", status: 503, body: ``, wantMsg: "Server error: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, map[string]func(w http.ResponseWriter){
				"/api/v1/approval/allDetails": respond(tt.status, tt.body),
			})

			_, err := client.List(context.Background())

			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindServer))
			assert.Equal(t, tt.wantMsg, apperr.UserMessage(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url, Timeout: time.Second}, zap.NewNop())

	_, err := client.List(context.Background())

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNetwork))
	assert.Equal(t, apperr.MsgNetwork, apperr.UserMessage(err))
}

func TestClient_GetByID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		status   int
		body     string
		wantID   string
		wantKind apperr.Kind
	}{
		{name: "data envelope", id: "5", status: 200, body: `{"data":{"id":5,"type":"Refund"}}`, wantID: "5"},
		{name: "approval envelope", id: "5", status: 200, body: `{"approval":{"id":5}}`, wantID: "5"},
		{name: "bare record", id: "5", status: 200, body: `{"id":5,"type":"Suspend"}`, wantID: "5"},
		{name: "null data", id: "5", status: 200, body: `{"data":null}`, wantKind: apperr.KindNotFound},
		{name: "404", id: "5", status: 404, body: `{"message":"Approval 5 not found"}`, wantKind: apperr.KindNotFound},
		{name: "non-numeric id", id: "abc", wantKind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := newTestServer(t, map[string]func(w http.ResponseWriter){
				"/api/v1/approval/getDetails/5": respond(tt.status, tt.body),
			})

			a, err := client.GetByID(context.Background(), tt.id)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, tt.wantKind))
				if tt.wantKind == apperr.KindValidation {
					assert.Empty(t, *requests)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, a.ID)
		})
	}
}

func TestClient_ModifyStatus(t *testing.T) {
	client, requests := newTestServer(t, map[string]func(w http.ResponseWriter){
		"/api/v1/approval/modifyStatus": respond(http.StatusOK, `{"message":"updated","approval":{"id":12,"status":"APPROVED","type":"Refund"}}`),
	})

	echoed, err := client.Approve(context.Background(), "12", "")
	require.NoError(t, err)
	require.NotNil(t, echoed)
	assert.Equal(t, entity.StatusApproved, echoed.Status)

	_, err = client.Reject(context.Background(), "12", " duplicate ")
	require.NoError(t, err)

	_, err = client.Approve(context.Background(), "12", " verified with finance ")
	require.NoError(t, err)

	_, err = client.Approve(context.Background(), "12", "   ")
	require.NoError(t, err)

	require.Len(t, *requests, 4)
	assert.Equal(t, map[string]interface{}{"id": float64(12), "status": "APPROVED", "reason": nil}, (*requests)[0].Body)
	assert.Equal(t, map[string]interface{}{"id": float64(12), "status": "REJECTED", "reason": "duplicate"}, (*requests)[1].Body)
	assert.Equal(t, map[string]interface{}{"id": float64(12), "status": "APPROVED", "reason": "verified with finance"}, (*requests)[2].Body)
	assert.Equal(t, map[string]interface{}{"id": float64(12), "status": "APPROVED", "reason": nil}, (*requests)[3].Body)
}

func TestClient_ModifyStatusNoEcho(t *testing.T) {
	client, _ := newTestServer(t, map[string]func(w http.ResponseWriter){
		"/api/v1/approval/modifyStatus": respond(http.StatusOK, `{"message":"updated"}`),
	})

	echoed, err := client.Approve(context.Background(), "12", "")
	require.NoError(t, err)
	assert.Nil(t, echoed)
}

func TestClient_RejectValidation(t *testing.T) {
	client, requests := newTestServer(t, nil)

	_, err := client.Reject(context.Background(), "12", "   ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = client.Approve(context.Background(), "R-12", "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Empty(t, *requests)
}

func TestClient_RegisterDeviceToken(t *testing.T) {
	client, requests := newTestServer(t, map[string]func(w http.ResponseWriter){
		"/api/v1/user/device-token": respond(http.StatusOK, `{"message":"registered","success":true}`),
	})

	require.NoError(t, client.RegisterDeviceToken(context.Background(), "7", "fcm-token"))
	require.Len(t, *requests, 1)
	assert.Equal(t, map[string]interface{}{"userId": "7", "token": "fcm-token", "deviceType": "IOS"}, (*requests)[0].Body)

	err := client.RegisterDeviceToken(context.Background(), "7", "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Len(t, *requests, 1)
}
