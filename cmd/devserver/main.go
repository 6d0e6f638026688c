package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/config"
	"github.com/garyjia/approvals-console/internal/container"
	"github.com/garyjia/approvals-console/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting approvals devserver",
		zap.String("host", cfg.DevServer.Host),
		zap.Int("port", cfg.DevServer.Port),
		zap.String("database", cfg.DevServer.Database.Path))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := container.NewDevServer(cfg.ToContainerConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to create devserver", zap.Error(err))
	}
	if err := server.Start(ctx); err != nil {
		logger.Fatal("Failed to start devserver", zap.Error(err))
	}
	defer func() {
		if err := server.Close(); err != nil {
			logger.Error("Devserver closed with errors", zap.Error(err))
		}
	}()

	// Run blocks until SIGINT or SIGTERM
	if err := server.Run(ctx); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
		return
	}

	logger.Info("Devserver exited successfully")
}
