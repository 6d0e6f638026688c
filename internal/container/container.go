package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/dispatcher"
	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/application/session"
	"github.com/garyjia/approvals-console/internal/export"
	"github.com/garyjia/approvals-console/internal/normalize"
)

// Container manages the console's dependencies and lifecycle.
// Components are initialized in order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	normalizer *normalize.Normalizer
	backend    port.Backend
	exporter   *export.WorkbookWriter

	// Application
	dispatcher dispatcher.Dispatcher
	session    *session.Session
	services   *ServiceBundle

	// Lifecycle
	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Backend (HTTP client or mock)
// 2. Event dispatcher and session
// 3. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	// Step 1: Initialize backend
	c.normalizer = normalize.New()
	backend, err := ProvideBackend(&c.config.Backend, c.normalizer, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}
	c.backend = backend
	c.exporter = export.NewWorkbookWriter(c.logger)

	// Step 2: Initialize dispatcher and session
	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp
	c.session = session.New(c.config.Backend.DeviceType)

	// Step 3: Initialize services
	services, err := ProvideServices(&ServiceDeps{
		Backend:     c.backend,
		Dispatcher:  c.dispatcher,
		Session:     c.session,
		Coordinator: &c.config.Coordinator,
		Logger:      c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.services.List.Mount()

	c.ready.Store(true)
	c.logger.Debug("Container started")
	return nil
}

// Close waits for background device registrations and detaches the list
// view from the dispatcher.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	if c.services != nil {
		c.services.Auth.Wait()
		c.services.List.Unmount()
	}

	c.closed.Store(true)
	c.ready.Store(false)
	c.logger.Debug("Container closed")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Backend returns the approvals backend.
func (c *Container) Backend() port.Backend {
	return c.backend
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Session returns the console session.
func (c *Container) Session() *session.Session {
	return c.session
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Exporter returns the workbook writer.
func (c *Container) Exporter() *export.WorkbookWriter {
	return c.exporter
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// NewLoggerAdapter adapts zap.Logger to the two-method Logger interfaces
// used by the application packages.
func NewLoggerAdapter(logger *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{logger: logger}
}

// ZapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type ZapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *ZapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *ZapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
