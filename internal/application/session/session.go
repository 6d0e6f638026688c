// Package session holds the signed-in approver and the device push token.
package session

import (
	"sync"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

// Registration is the device-token registration request for the current user
type Registration struct {
	UserID     string `json:"userId" validate:"required"`
	Token      string `json:"token" validate:"required"`
	DeviceType string `json:"deviceType" validate:"required,oneof=ANDROID IOS"`
}

// Session is the explicit session context shared by the auth flow and the
// device-token registration. Safe for concurrent use.
type Session struct {
	mu          sync.RWMutex
	user        *entity.User
	deviceToken string
	deviceType  string
}

// New creates an empty session for a device type
func New(deviceType string) *Session {
	if deviceType == "" {
		deviceType = entity.DeviceTypeAndroid
	}
	return &Session{deviceType: deviceType}
}

// SetUser records the signed-in user
func (s *Session) SetUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// User returns the signed-in user, or nil
func (s *Session) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetDeviceToken records the push token issued to this device
func (s *Session) SetDeviceToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceToken = token
}

// DeviceToken returns the push token, or ""
func (s *Session) DeviceToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceToken
}

// DeviceType returns ANDROID or IOS
func (s *Session) DeviceType() string {
	return s.deviceType
}

// Clear signs the user out. The device token belongs to the device and is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// IsReady reports whether both a user and a device token are known
func (s *Session) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.ID != "" && s.deviceToken != ""
}

// RegistrationPayload returns the registration request when the session is ready
func (s *Session) RegistrationPayload() (Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.ID == "" || s.deviceToken == "" {
		return Registration{}, false
	}
	return Registration{
		UserID:     s.user.ID,
		Token:      s.deviceToken,
		DeviceType: s.deviceType,
	}, true
}
