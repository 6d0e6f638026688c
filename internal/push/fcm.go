// Package push delivers notifications to approver devices through
// Firebase Cloud Messaging.
package push

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/garyjia/approvals-console/internal/application/port"
)

// DefaultAndroidChannel is the channel the mobile app registers
const DefaultAndroidChannel = "default"

// ErrNotConfigured is returned when no credentials are available
var ErrNotConfigured = errors.New("push credentials not configured")

// Config holds FCM settings. Base64 credentials take precedence over the file.
type Config struct {
	CredentialsFile   string
	CredentialsBase64 string
	ProjectID         string
	AndroidChannelID  string
}

// Enabled reports whether credentials are configured
func (c Config) Enabled() bool {
	return c.CredentialsFile != "" || c.CredentialsBase64 != ""
}

// sender is the part of messaging.Client the notifier uses
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier implements port.Notifier
type FCMNotifier struct {
	client    sender
	channelID string
	logger    *zap.Logger
}

var _ port.Notifier = (*FCMNotifier)(nil)

// NewFCMNotifier initializes the Firebase app and messaging client
func NewFCMNotifier(ctx context.Context, cfg Config, logger *zap.Logger) (*FCMNotifier, error) {
	opt, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	logger.Info("FCM notifier initialized", zap.String("project_id", cfg.ProjectID))
	return newNotifier(client, cfg.AndroidChannelID, logger), nil
}

func newNotifier(client sender, channelID string, logger *zap.Logger) *FCMNotifier {
	if channelID == "" {
		channelID = DefaultAndroidChannel
	}
	return &FCMNotifier{
		client:    client,
		channelID: channelID,
		logger:    logger,
	}
}

func credentialsOption(cfg Config) (option.ClientOption, error) {
	if cfg.CredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 credentials: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	}
	if cfg.CredentialsFile != "" {
		return option.WithCredentialsFile(cfg.CredentialsFile), nil
	}
	return nil, ErrNotConfigured
}

// Send delivers one notification and returns the FCM message name
func (n *FCMNotifier) Send(ctx context.Context, msg *port.PushMessage) (string, error) {
	if msg == nil || msg.Token == "" {
		return "", fmt.Errorf("device token is required")
	}

	id, err := n.client.Send(ctx, BuildMessage(msg, n.channelID))
	if err != nil {
		n.logger.Error("FCM send failed", zap.String("title", msg.Title), zap.Error(err))
		return "", fmt.Errorf("fcm send: %w", err)
	}

	n.logger.Info("FCM message sent", zap.String("message_id", id), zap.String("title", msg.Title))
	return id, nil
}

// SendApprovalNotification is a convenience wrapper around Send
func (n *FCMNotifier) SendApprovalNotification(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	return n.Send(ctx, &port.PushMessage{Token: token, Title: title, Body: body, Data: data})
}

// BuildMessage converts a push message into an FCM message with
// high-priority Android delivery and an APNS alert
func BuildMessage(msg *port.PushMessage, channelID string) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: channelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: msg.Title,
						Body:  msg.Body,
					},
					Sound: "default",
				},
			},
		},
	}
}

// LogNotifier stands in when push is not configured. It only logs.
type LogNotifier struct {
	logger *zap.Logger
}

var _ port.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier that logs instead of sending
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message
func (n *LogNotifier) Send(ctx context.Context, msg *port.PushMessage) (string, error) {
	n.logger.Info("Push disabled, notification not sent",
		zap.String("title", msg.Title),
		zap.Any("data", msg.Data))
	return "", nil
}
