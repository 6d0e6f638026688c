package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Backend     BackendConfig     `mapstructure:"backend"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	DevServer   DevServerConfig   `mapstructure:"devserver"`
	Push        PushConfig        `mapstructure:"push"`
}

// BackendConfig holds the approvals backend connection settings
type BackendConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UseMock    bool          `mapstructure:"use_mock"`
	MockDelay  time.Duration `mapstructure:"mock_delay"`
	DeviceType string        `mapstructure:"device_type"`
}

// CoordinatorConfig holds optimistic update timings
type CoordinatorConfig struct {
	SettleDelay         time.Duration `mapstructure:"settle_delay"`
	ConfirmationDismiss time.Duration `mapstructure:"confirmation_dismiss"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// DevServerConfig holds the development backend settings
type DevServerConfig struct {
	Host          string         `mapstructure:"host"`
	Port          int            `mapstructure:"port"`
	ReadTimeout   time.Duration  `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration  `mapstructure:"write_timeout"`
	Database      DatabaseConfig `mapstructure:"database"`
	Seed          bool           `mapstructure:"seed"`
	AdminEmail    string         `mapstructure:"admin_email"`
	AdminPassword string         `mapstructure:"admin_password"`
	// LoginRate is login attempts per second per client IP; 0 disables the limit
	LoginRate  float64 `mapstructure:"login_rate"`
	LoginBurst int     `mapstructure:"login_burst"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// PushConfig holds Firebase Cloud Messaging credentials
type PushConfig struct {
	CredentialsFile   string `mapstructure:"credentials_file"`
	CredentialsBase64 string `mapstructure:"credentials_base64"`
	ProjectID         string `mapstructure:"project_id"`
	AndroidChannelID  string `mapstructure:"android_channel_id"`
}

// EnvFile is loaded into the environment before the config is read
const EnvFile = ".env"

// Load loads configuration from an optional YAML file, a .env file and
// environment variables, in increasing precedence
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APPROVALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads KEY=VALUE pairs from path without overriding variables
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.use_mock", false)
	v.SetDefault("backend.mock_delay", 800*time.Millisecond)
	v.SetDefault("backend.device_type", "ANDROID")

	// Coordinator defaults
	v.SetDefault("coordinator.settle_delay", 500*time.Millisecond)
	v.SetDefault("coordinator.confirmation_dismiss", 2*time.Second)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "console")

	// Devserver defaults
	v.SetDefault("devserver.host", "0.0.0.0")
	v.SetDefault("devserver.port", 8080)
	v.SetDefault("devserver.read_timeout", 30*time.Second)
	v.SetDefault("devserver.write_timeout", 30*time.Second)
	v.SetDefault("devserver.database.path", "data/approvals.db")
	v.SetDefault("devserver.database.max_open_conns", 10)
	v.SetDefault("devserver.database.max_idle_conns", 5)
	v.SetDefault("devserver.database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("devserver.seed", true)
	v.SetDefault("devserver.admin_email", "admin@company.com")
	v.SetDefault("devserver.admin_password", "admin123")
	v.SetDefault("devserver.login_rate", 0.5)
	v.SetDefault("devserver.login_burst", 5)

	// Push defaults
	v.SetDefault("push.android_channel_id", "default")
}

// bindEnvVars binds the documented environment variables
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"backend.base_url":         "APPROVALS_API_URL",
		"backend.use_mock":         "APPROVALS_USE_MOCK",
		"devserver.admin_password": "APPROVALS_ADMIN_PASSWORD",
		"push.credentials_file":    "GOOGLE_APPLICATION_CREDENTIALS",
		"push.credentials_base64":  "FIREBASE_SERVICE_ACCOUNT_BASE64",
		"push.project_id":          "FIREBASE_PROJECT_ID",
		"push.android_channel_id":  "APPROVALS_ANDROID_CHANNEL",
		"devserver.database.path":  "APPROVALS_DB_PATH",
		"logger.level":             "APPROVALS_LOG_LEVEL",
	}
	for key, env := range bindings {
		// The prefixed form stays bound alongside the documented name
		prefixed := "APPROVALS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate backend
	if !c.Backend.UseMock {
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required")
		}
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("backend.base_url must be an http(s) URL: %q", c.Backend.BaseURL)
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if c.Backend.MockDelay < 0 {
		return fmt.Errorf("backend.mock_delay must not be negative")
	}
	switch c.Backend.DeviceType {
	case "ANDROID", "IOS":
	default:
		return fmt.Errorf("backend.device_type must be ANDROID or IOS, got %q", c.Backend.DeviceType)
	}

	// Validate coordinator timings
	if c.Coordinator.SettleDelay < 0 || c.Coordinator.ConfirmationDismiss < 0 {
		return fmt.Errorf("coordinator delays must not be negative")
	}

	// Validate devserver
	if c.DevServer.Port <= 0 || c.DevServer.Port > 65535 {
		return fmt.Errorf("devserver.port out of range: %d", c.DevServer.Port)
	}
	if c.DevServer.Database.Path == "" {
		return fmt.Errorf("devserver.database.path is required")
	}
	if c.DevServer.LoginRate < 0 || c.DevServer.LoginBurst < 0 {
		return fmt.Errorf("devserver login rate limit must not be negative")
	}

	return nil
}
