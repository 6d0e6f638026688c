package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "ANDROID", cfg.Backend.DeviceType)
	assert.Equal(t, 500*time.Millisecond, cfg.Coordinator.SettleDelay)
	assert.Equal(t, 2*time.Second, cfg.Coordinator.ConfirmationDismiss)
	assert.Equal(t, 8080, cfg.DevServer.Port)
	assert.True(t, cfg.DevServer.Seed)
	assert.Equal(t, "default", cfg.Push.AndroidChannelID)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: https://approvals.example.com/api/v1
  timeout: 5s
  device_type: IOS
coordinator:
  settle_delay: 100ms
devserver:
  port: 9090
  login_rate: 2
`)
	t.Setenv("APPROVALS_USE_MOCK", "true")
	t.Setenv("FIREBASE_PROJECT_ID", "demo-project")
	t.Setenv("APPROVALS_DEVSERVER_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://approvals.example.com/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "IOS", cfg.Backend.DeviceType)
	assert.True(t, cfg.Backend.UseMock)
	assert.Equal(t, 100*time.Millisecond, cfg.Coordinator.SettleDelay)
	assert.Equal(t, 9191, cfg.DevServer.Port)
	assert.Equal(t, 2.0, cfg.DevServer.LoginRate)
	assert.Equal(t, "demo-project", cfg.Push.ProjectID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  device_type: WINDOWS
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device_type")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend: BackendConfig{
				BaseURL:    "http://localhost:8080/api/v1",
				Timeout:    time.Second,
				DeviceType: "ANDROID",
			},
			DevServer: DevServerConfig{
				Port:     8080,
				Database: DatabaseConfig{Path: "data/approvals.db"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: "base_url is required"},
		{name: "relative url", mutate: func(c *Config) { c.Backend.BaseURL = "/api/v1" }, wantErr: "http(s) URL"},
		{name: "ftp url", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://host/api" }, wantErr: "http(s) URL"},
		{name: "mock needs no url", mutate: func(c *Config) { c.Backend.BaseURL = ""; c.Backend.UseMock = true }},
		{name: "zero timeout", mutate: func(c *Config) { c.Backend.Timeout = 0 }, wantErr: "timeout"},
		{name: "bad device type", mutate: func(c *Config) { c.Backend.DeviceType = "web" }, wantErr: "device_type"},
		{name: "negative settle delay", mutate: func(c *Config) { c.Coordinator.SettleDelay = -1 }, wantErr: "coordinator"},
		{name: "bad port", mutate: func(c *Config) { c.DevServer.Port = 70000 }, wantErr: "port"},
		{name: "missing database", mutate: func(c *Config) { c.DevServer.Database.Path = "" }, wantErr: "database.path"},
		{name: "negative burst", mutate: func(c *Config) { c.DevServer.LoginBurst = -1 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
