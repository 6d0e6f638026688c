package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/sqlite"
)

// AdminRepository implements port.AdminStore
type AdminRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *sql.DB, logger *zap.Logger) *AdminRepository {
	return &AdminRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an approver account. Emails are kept lower-case.
func (r *AdminRepository) Create(ctx context.Context, admin *port.Admin) error {
	query := `
		INSERT INTO admins (email, first_name, last_name, password_hash)
		VALUES (?, ?, ?, ?)
	`

	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		admin.Email,
		admin.FirstName,
		admin.LastName,
		admin.PasswordHash,
	)
	if err != nil {
		r.logger.Error("Failed to create admin", zap.String("email", admin.Email), zap.Error(err))
		return fmt.Errorf("failed to create admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	admin.ID = id
	return nil
}

// GetByEmail retrieves an account by email; nil when none matches
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*port.Admin, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash
		FROM admins
		WHERE email = ?
	`

	var admin port.Admin
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&admin.ID,
		&admin.Email,
		&admin.FirstName,
		&admin.LastName,
		&admin.PasswordHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get admin", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

var _ port.AdminStore = (*AdminRepository)(nil)
