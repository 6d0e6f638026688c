package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/service"
	"github.com/garyjia/approvals-console/internal/devserver"
	"github.com/garyjia/approvals-console/internal/fixtures"
	httpapi "github.com/garyjia/approvals-console/internal/interfaces/http"
)

// DevServer wires the development backend: database, stores, push
// notifications, the backend service and its REST adapter.
type DevServer struct {
	config *Config
	logger *zap.Logger

	database      *DatabaseBundle
	repositories  *RepositoryBundle
	notifications service.NotificationService
	backend       *devserver.Service
	server        *httpapi.Server

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewDevServer creates the devserver container. Call Start to initialize it.
func NewDevServer(cfg *Config, logger *zap.Logger) (*DevServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.DevServer.Database.Path == "" {
		return nil, fmt.Errorf("invalid config: devserver.database.path is required")
	}

	return &DevServer{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes components in dependency order:
// 1. Database and stores
// 2. Push notifier and notification service
// 3. Backend service, seeded when configured
// 4. HTTP adapter
func (d *DevServer) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return fmt.Errorf("devserver has been closed")
	}
	if d.ready.Load() {
		return fmt.Errorf("devserver already started")
	}

	// Step 1: Initialize database and repositories
	db, err := ProvideDatabase(ctx, &d.config.DevServer.Database, d.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	d.database = db

	repos, err := ProvideRepositories(db.DB.DB, d.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	d.repositories = repos
	d.logger.Info("Database initialized")

	// Step 2: Initialize push notifications
	notifier, err := ProvideNotifier(ctx, &d.config.Push, d.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	notifications, err := ProvideNotificationService(repos.DeviceTokens, notifier, d.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notification service: %w", err)
	}
	d.notifications = notifications

	// Step 3: Initialize backend service
	d.backend = devserver.NewService(
		repos.Approvals,
		repos.Admins,
		repos.DeviceTokens,
		db.TransactionMgr,
		notifications,
		NewLoggerAdapter(d.logger),
	)

	if d.config.DevServer.Seed {
		records, err := fixtures.Approvals()
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
		if err := d.backend.Seed(ctx, d.config.DevServer.AdminEmail, d.config.DevServer.AdminPassword, records); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Step 4: Initialize HTTP adapter
	server, err := ProvideHTTPServer(&d.config.DevServer, d.backend, d.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	d.server = server

	d.ready.Store(true)
	d.logger.Info("Devserver started")
	return nil
}

// Run serves HTTP until ctx is cancelled
func (d *DevServer) Run(ctx context.Context) error {
	if !d.ready.Load() {
		return fmt.Errorf("devserver not started")
	}
	return d.server.Start(ctx)
}

// Close stops the HTTP server and closes the database.
func (d *DevServer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return fmt.Errorf("devserver already closed")
	}

	var errs []error

	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	if d.database != nil {
		if err := d.database.DB.Close(); err != nil {
			d.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	d.closed.Store(true)
	d.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("devserver closed with %d errors: %v", len(errs), errs)
	}
	return nil
}

// Backend returns the backend service.
func (d *DevServer) Backend() *devserver.Service {
	return d.backend
}

// Server returns the HTTP adapter.
func (d *DevServer) Server() *httpapi.Server {
	return d.server
}

// Notifications returns the push fan-out service.
func (d *DevServer) Notifications() service.NotificationService {
	return d.notifications
}
