package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/infrastructure/persistence/sqlite"
)

// ErrNotFound is returned by updates that matched no row
var ErrNotFound = errors.New("record not found")

// ApprovalRepository implements port.ApprovalStore
type ApprovalRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB, logger *zap.Logger) *ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a raw approval record and sets its ID
func (r *ApprovalRepository) Create(ctx context.Context, a *port.StoredApproval) error {
	query := `
		INSERT INTO approvals (type, status, reason, raw_record, created_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := r.now().UTC()
	if a.CreatedOn.IsZero() {
		a.CreatedOn = now
	}
	a.UpdatedAt = now

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		a.Type,
		a.Status,
		nullString(a.Reason),
		a.RawRecord,
		a.CreatedOn,
		a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create approval", zap.String("type", a.Type), zap.Error(err))
		return fmt.Errorf("failed to create approval: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	a.ID = id
	return nil
}

// GetByID retrieves an approval; nil when it does not exist
func (r *ApprovalRepository) GetByID(ctx context.Context, id int64) (*port.StoredApproval, error) {
	query := `
		SELECT id, type, status, reason, raw_record, created_on, updated_at
		FROM approvals
		WHERE id = ?
	`

	a, err := scanApproval(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	return a, nil
}

// List returns all approvals, newest first
func (r *ApprovalRepository) List(ctx context.Context) ([]*port.StoredApproval, error) {
	query := `
		SELECT id, type, status, reason, raw_record, created_on, updated_at
		FROM approvals
		ORDER BY created_on DESC, id DESC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list approvals", zap.Error(err))
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	defer rows.Close()

	approvals := []*port.StoredApproval{}
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// UpdateStatus sets status and reason. An empty reason is stored as NULL.
func (r *ApprovalRepository) UpdateStatus(ctx context.Context, id int64, status, reason string) error {
	query := `
		UPDATE approvals
		SET status = ?, reason = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, status, nullString(reason), r.now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update approval status",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update approval status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("approval %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApproval(row rowScanner) (*port.StoredApproval, error) {
	var a port.StoredApproval
	var reason sql.NullString

	if err := row.Scan(&a.ID, &a.Type, &a.Status, &reason, &a.RawRecord, &a.CreatedOn, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Reason = reason.String
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ port.ApprovalStore = (*ApprovalRepository)(nil)
