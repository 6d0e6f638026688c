package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/config"
	"github.com/garyjia/approvals-console/internal/container"
	"github.com/garyjia/approvals-console/internal/fixtures"
	"github.com/garyjia/approvals-console/internal/normalize"
	"github.com/garyjia/approvals-console/pkg/utils"
)

// Isolated test for push notifications.
// With --token it sends the test notification to one device; without it,
// it sends a sample new-approval notification to every device registered
// in the devserver database.

// noTokens is the device registry used when the token comes from the flag
type noTokens struct{}

func (noTokens) Upsert(ctx context.Context, token *port.DeviceToken) error { return nil }

func (noTokens) ListTokens(ctx context.Context) ([]*port.DeviceToken, error) { return nil, nil }

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	token := flag.String("token", "", "device token to send the test notification to")
	flag.Parse()

	fmt.Println("=== Push Notification Test ===")
	fmt.Println()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: cfg.Logger.Level, Format: "console"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	containerCfg := cfg.ToContainerConfig()

	// Step 1: Initialize notifier
	fmt.Println("[Step 1] Initializing push notifier...")
	if !containerCfg.Push.Enabled() {
		fmt.Println("✗ No credentials: set GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_BASE64")
		os.Exit(1)
	}
	notifier, err := container.ProvideNotifier(ctx, &containerCfg.Push, logger)
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}
	fmt.Println("✓ Notifier ready")

	if *token != "" {
		// Step 2: Send to one device
		fmt.Println("\n[Step 2] Sending test notification...")
		svc, err := container.ProvideNotificationService(noTokens{}, notifier, logger)
		if err != nil {
			log.Fatalf("Failed to create notification service: %v", err)
		}
		id, err := svc.SendTest(ctx, *token)
		if err != nil {
			fmt.Printf("✗ Failed to send test notification: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Test notification sent! message_id: %s\n", id)
		return
	}

	// Step 2: Load registered devices
	fmt.Printf("\n[Step 2] Opening device registry at %s...\n", containerCfg.DevServer.Database.Path)
	db, err := container.ProvideDatabase(ctx, &containerCfg.DevServer.Database, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.DB.Close()

	repos, err := container.ProvideRepositories(db.DB.DB, logger)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	svc, err := container.ProvideNotificationService(repos.DeviceTokens, notifier, logger)
	if err != nil {
		log.Fatalf("Failed to create notification service: %v", err)
	}

	// Step 3: Fan out a sample approval
	fmt.Println("\n[Step 3] Sending sample new-approval notification...")
	records, err := fixtures.Approvals()
	if err != nil || len(records) == 0 {
		log.Fatalf("Failed to load sample approval: %v", err)
	}
	sample := normalize.New().Normalize(records[0])

	sent, err := svc.NotifyNewApproval(ctx, sample)
	if err != nil {
		logger.Warn("Some notifications failed", zap.Error(err))
	}
	fmt.Printf("✓ Sent to %d device(s)\n", sent)
}
