package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/garyjia/approvals-console/internal/application/dispatcher"
	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/application/service"
	"github.com/garyjia/approvals-console/internal/application/session"
	"github.com/garyjia/approvals-console/internal/devserver"
	"github.com/garyjia/approvals-console/internal/infrastructure/backend"
	"github.com/garyjia/approvals-console/internal/infrastructure/mockapi"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/migrations"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/repository"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/garyjia/approvals-console/internal/interfaces/http"
	"github.com/garyjia/approvals-console/internal/normalize"
	"github.com/garyjia/approvals-console/internal/push"
	"github.com/garyjia/approvals-console/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups the devserver stores.
type RepositoryBundle struct {
	Approvals    port.ApprovalStore
	Admins       port.AdminStore
	DeviceTokens port.DeviceTokenStore
}

// ServiceBundle groups the console's application services.
type ServiceBundle struct {
	Auth     service.AuthService
	Approval service.ApprovalService
	List     *service.ApprovalList
}

// ProvideBackend creates the approvals backend: the in-process mock when
// configured, otherwise the HTTP client.
func ProvideBackend(cfg *BackendConfig, normalizer *normalize.Normalizer, logger *zap.Logger) (port.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backend config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if normalizer == nil {
		normalizer = normalize.New()
	}

	if cfg.UseMock {
		mock, err := mockapi.New(logger,
			mockapi.WithDelay(cfg.MockDelay),
			mockapi.WithNormalizer(normalizer),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create mock backend: %w", err)
		}
		logger.Info("Using mock approvals backend", zap.Duration("delay", cfg.MockDelay))
		return mock, nil
	}

	client := backend.NewClient(backend.Config{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		DeviceType: cfg.DeviceType,
	}, logger, backend.WithNormalizer(normalizer))

	logger.Info("Using approvals backend", zap.String("base_url", cfg.BaseURL))
	return client, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(dispatcher.WithLogger(NewLoggerAdapter(logger))), nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Backend     port.Backend
	Dispatcher  dispatcher.Dispatcher
	Session     *session.Session
	Coordinator *CoordinatorConfig
	Logger      *zap.Logger
}

// ProvideServices creates the console's application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := NewLoggerAdapter(deps.Logger)

	var opts []service.ApprovalOption
	if deps.Coordinator != nil {
		opts = append(opts,
			service.WithSettleDelay(deps.Coordinator.SettleDelay),
			service.WithConfirmationDismiss(deps.Coordinator.ConfirmationDismiss),
		)
	}

	return &ServiceBundle{
		Auth:     service.NewAuthService(deps.Backend, deps.Backend, deps.Session, deps.Dispatcher, logger),
		Approval: service.NewApprovalService(deps.Backend, deps.Dispatcher, logger, opts...),
		List:     service.NewApprovalList(deps.Backend, deps.Dispatcher, logger),
	}, nil
}

// ProvideDatabase opens the database, runs the embedded migrations and
// wraps it in a transaction manager.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates the devserver stores from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Approvals:    repository.NewApprovalRepository(sqlDB, logger),
		Admins:       repository.NewAdminRepository(sqlDB, logger),
		DeviceTokens: repository.NewDeviceTokenRepository(sqlDB, logger),
	}, nil
}

// ProvideNotifier creates the FCM notifier, or a logging notifier when no
// push credentials are configured.
func ProvideNotifier(ctx context.Context, cfg *push.Config, logger *zap.Logger) (port.Notifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("push config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if !cfg.Enabled() {
		logger.Warn("Push credentials not configured, notifications will only be logged")
		return push.NewLogNotifier(logger), nil
	}

	notifier, err := push.NewFCMNotifier(ctx, *cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create push notifier: %w", err)
	}
	return notifier, nil
}

// ProvideNotificationService creates the push fan-out service.
func ProvideNotificationService(tokens port.DeviceTokenStore, notifier port.Notifier, logger *zap.Logger) (service.NotificationService, error) {
	if tokens == nil {
		return nil, fmt.Errorf("device token store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	return service.NewNotificationService(tokens, notifier, NewLoggerAdapter(logger)), nil
}

// ProvideHTTPServer creates the devserver's REST adapter.
func ProvideHTTPServer(cfg *DevServerConfig, svc *devserver.Service, logger *zap.Logger) (*httpapi.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("devserver config is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("devserver backend is required")
	}

	serverCfg := httpapi.ServerConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		LoginRate:    rate.Limit(cfg.LoginRate),
		LoginBurst:   cfg.LoginBurst,
	}
	return httpapi.NewServer(serverCfg, svc, NewLoggerAdapter(logger)), nil
}
