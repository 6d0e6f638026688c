package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/sqlite"
)

// DeviceTokenRepository implements port.DeviceTokenStore. Each user has at
// most one token; registering again replaces it.
type DeviceTokenRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewDeviceTokenRepository creates a new device token repository
func NewDeviceTokenRepository(db *sql.DB, logger *zap.Logger) *DeviceTokenRepository {
	return &DeviceTokenRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Upsert stores or replaces the user's token
func (r *DeviceTokenRepository) Upsert(ctx context.Context, token *port.DeviceToken) error {
	query := `
		INSERT INTO device_tokens (user_id, token, device_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			token = excluded.token,
			device_type = excluded.device_type,
			updated_at = excluded.updated_at
	`

	token.UpdatedAt = r.now().UTC()
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		token.UserID,
		token.Token,
		token.DeviceType,
		token.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert device token", zap.String("user_id", token.UserID), zap.Error(err))
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

// ListTokens returns every registered token
func (r *DeviceTokenRepository) ListTokens(ctx context.Context) ([]*port.DeviceToken, error) {
	query := `
		SELECT user_id, token, device_type, updated_at
		FROM device_tokens
		ORDER BY updated_at DESC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list device tokens", zap.Error(err))
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*port.DeviceToken
	for rows.Next() {
		var t port.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.DeviceType, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

var _ port.DeviceTokenStore = (*DeviceTokenRepository)(nil)
