// Package cli implements the approvals console commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/config"
	"github.com/garyjia/approvals-console/internal/container"
	"github.com/garyjia/approvals-console/pkg/utils"
)

var (
	configPath string
	jsonOutput bool
	useMock    bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "approvals",
	Short:         "Review and decide approval requests",
	Long:          "Approvals console: list, inspect, approve and reject pending requests against the approvals backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "write JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use the built-in mock backend")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if useMock {
		cfg.Backend.UseMock = true
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	return cfg, nil
}

// withContainer builds and starts the console container, runs fn and
// closes the container afterwards
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close container", zap.Error(err))
		}
	}()

	return fn(ctx, c)
}
