// Package container provides dependency injection and lifecycle management
// for the approvals console and its development backend.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/approvals-console/internal/push"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Backend connection used by the console
	Backend BackendConfig

	// Coordinator timings for optimistic decisions
	Coordinator CoordinatorConfig

	// DevServer configuration, only read by the development backend
	DevServer DevServerConfig

	// Push configuration for device notifications
	Push push.Config
}

// BackendConfig holds approvals backend settings.
type BackendConfig struct {
	// BaseURL of the REST API, including the /api/v1 prefix
	BaseURL string

	// Timeout for each HTTP call
	Timeout time.Duration

	// UseMock serves approvals from the in-process fixture backend
	UseMock bool

	// MockDelay is the simulated latency of the mock backend
	MockDelay time.Duration

	// DeviceType sent with device token registrations
	DeviceType string
}

// CoordinatorConfig holds optimistic update timings.
type CoordinatorConfig struct {
	SettleDelay         time.Duration
	ConfirmationDismiss time.Duration
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// DevServerConfig holds development backend settings.
type DevServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Database DatabaseConfig

	// Seed creates the approver account and sample records on start
	Seed          bool
	AdminEmail    string
	AdminPassword string

	// LoginRate is login attempts per second per client IP
	LoginRate  float64
	LoginBurst int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:    "http://localhost:8080/api/v1",
			Timeout:    30 * time.Second,
			MockDelay:  800 * time.Millisecond,
			DeviceType: "ANDROID",
		},
		Coordinator: CoordinatorConfig{
			SettleDelay:         500 * time.Millisecond,
			ConfirmationDismiss: 2 * time.Second,
		},
		DevServer: DevServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Database: DatabaseConfig{
				Path:            "data/approvals.db",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
			Seed:          true,
			AdminEmail:    "admin@company.com",
			AdminPassword: "admin123",
			LoginRate:     0.5,
			LoginBurst:    5,
		},
		Push: push.Config{
			AndroidChannelID: push.DefaultAndroidChannel,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	// Validate backend configuration
	if !c.Backend.UseMock && c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	// Validate devserver configuration
	if c.DevServer.Database.Path == "" {
		return fmt.Errorf("devserver.database.path is required")
	}

	return nil
}
