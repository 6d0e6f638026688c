package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

func TestSession_Readiness(t *testing.T) {
	s := New(entity.DeviceTypeIOS)

	assert.False(t, s.IsReady())
	_, ok := s.RegistrationPayload()
	assert.False(t, ok)

	s.SetDeviceToken("fcm-token")
	assert.False(t, s.IsReady())

	s.SetUser(&entity.User{ID: "7", Username: "jane"})
	assert.True(t, s.IsReady())

	payload, ok := s.RegistrationPayload()
	assert.True(t, ok)
	assert.Equal(t, Registration{UserID: "7", Token: "fcm-token", DeviceType: entity.DeviceTypeIOS}, payload)
}

func TestSession_ClearKeepsDeviceToken(t *testing.T) {
	s := New("")
	s.SetUser(&entity.User{ID: "7"})
	s.SetDeviceToken("fcm-token")

	s.Clear()

	assert.Nil(t, s.User())
	assert.Equal(t, "fcm-token", s.DeviceToken())
	assert.False(t, s.IsReady())
	assert.Equal(t, entity.DeviceTypeAndroid, s.DeviceType())
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := New(entity.DeviceTypeAndroid)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.SetUser(&entity.User{ID: "1"})
		}()
		go func() {
			defer wg.Done()
			s.SetDeviceToken("t")
		}()
		go func() {
			defer wg.Done()
			s.RegistrationPayload()
			s.Clear()
		}()
	}

	wg.Wait()
}
