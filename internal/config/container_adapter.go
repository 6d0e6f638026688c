package config

import (
	"github.com/garyjia/approvals-console/internal/container"
	"github.com/garyjia/approvals-console/internal/push"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Backend: container.BackendConfig{
			BaseURL:    c.Backend.BaseURL,
			Timeout:    c.Backend.Timeout,
			UseMock:    c.Backend.UseMock,
			MockDelay:  c.Backend.MockDelay,
			DeviceType: c.Backend.DeviceType,
		},
		Coordinator: container.CoordinatorConfig{
			SettleDelay:         c.Coordinator.SettleDelay,
			ConfirmationDismiss: c.Coordinator.ConfirmationDismiss,
		},
		DevServer: container.DevServerConfig{
			Host:         c.DevServer.Host,
			Port:         c.DevServer.Port,
			ReadTimeout:  c.DevServer.ReadTimeout,
			WriteTimeout: c.DevServer.WriteTimeout,
			Database: container.DatabaseConfig{
				Path:            c.DevServer.Database.Path,
				MaxOpenConns:    c.DevServer.Database.MaxOpenConns,
				MaxIdleConns:    c.DevServer.Database.MaxIdleConns,
				ConnMaxLifetime: c.DevServer.Database.ConnMaxLifetime,
			},
			Seed:          c.DevServer.Seed,
			AdminEmail:    c.DevServer.AdminEmail,
			AdminPassword: c.DevServer.AdminPassword,
			LoginRate:     c.DevServer.LoginRate,
			LoginBurst:    c.DevServer.LoginBurst,
		},
		Push: push.Config{
			CredentialsFile:   c.Push.CredentialsFile,
			CredentialsBase64: c.Push.CredentialsBase64,
			ProjectID:         c.Push.ProjectID,
			AndroidChannelID:  c.Push.AndroidChannelID,
		},
	}
}
