package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/garyjia/approvals-console/internal/application/dispatcher"
	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/application/session"
	"github.com/garyjia/approvals-console/internal/domain/apperr"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/domain/event"
)

// AuthService signs approvers in and out and keeps the device token
// registered for the signed-in user
type AuthService interface {
	Login(ctx context.Context, username, password string) (*entity.User, error)
	Logout(ctx context.Context)
	// SetDeviceToken records a new or refreshed push token
	SetDeviceToken(ctx context.Context, token string)
	CurrentUser() *entity.User
	// Wait blocks until pending device registrations finish
	Wait()
}

type authServiceImpl struct {
	gateway         port.AuthGateway
	registrar       port.DeviceRegistrar
	session         *session.Session
	bus             dispatcher.Dispatcher
	logger          Logger
	registerTimeout time.Duration
	wg              sync.WaitGroup
}

// NewAuthService creates a new AuthService
func NewAuthService(
	gateway port.AuthGateway,
	registrar port.DeviceRegistrar,
	sess *session.Session,
	bus dispatcher.Dispatcher,
	logger Logger,
) AuthService {
	return &authServiceImpl{
		gateway:         gateway,
		registrar:       registrar,
		session:         sess,
		bus:             bus,
		logger:          logger,
		registerTimeout: 10 * time.Second,
	}
}

// Login authenticates and then registers the device token in the background
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("Login", "Username and password are required")
	}

	user, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		s.logger.Error("Login failed", "username", username, "error", err)
		return nil, err
	}

	s.session.SetUser(user)
	s.bus.Publish(ctx, event.New(event.SessionChanged{User: user}))
	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)

	s.registerDevice()
	return user, nil
}

// Logout clears the session
func (s *authServiceImpl) Logout(ctx context.Context) {
	user := s.session.User()
	s.session.Clear()
	s.bus.Publish(ctx, event.New(event.SessionChanged{}))
	if user != nil {
		s.logger.Info("User logged out", "user_id", user.ID)
	}
}

// SetDeviceToken records the token and re-registers it for a signed-in user
func (s *authServiceImpl) SetDeviceToken(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	s.session.SetDeviceToken(token)
	s.registerDevice()
}

// CurrentUser returns the signed-in user
func (s *authServiceImpl) CurrentUser() *entity.User {
	return s.session.User()
}

// Wait blocks until pending device registrations finish
func (s *authServiceImpl) Wait() {
	s.wg.Wait()
}

// registerDevice registers the token without blocking the caller. Failures
// are logged only; they never affect the login.
func (s *authServiceImpl) registerDevice() {
	payload, ok := s.session.RegistrationPayload()
	if !ok || s.registrar == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.registerTimeout)
		defer cancel()

		if err := s.registrar.RegisterDeviceToken(ctx, payload.UserID, payload.Token); err != nil {
			s.logger.Error("Device token registration failed", "user_id", payload.UserID, "error", err)
			return
		}
		s.logger.Info("Device token registered", "user_id", payload.UserID, "device_type", payload.DeviceType)
	}()
}
