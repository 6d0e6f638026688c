package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/approvals-console/internal/application/dispatcher"
	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/application/workflow"
	"github.com/garyjia/approvals-console/internal/domain/apperr"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/domain/event"
	domainwf "github.com/garyjia/approvals-console/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Confirmation messages shown after a settled decision
const (
	MsgApproved = "This request has been approved."
	MsgRejected = "This request has been rejected."
)

// Outcome describes a settled decision
type Outcome struct {
	ID           string
	Status       entity.Status
	State        domainwf.State
	Message      string
	DismissAfter time.Duration
	// Echoed is the record returned by the backend, when it returned one
	Echoed *entity.Approval
}

// ApprovalService applies approve and reject decisions optimistically.
// The caller's approval is updated and broadcast before the backend call
// and restored if the call fails.
type ApprovalService interface {
	Approve(ctx context.Context, a *entity.Approval) (*Outcome, error)
	// ApproveWithReason approves and sends an optional note to the backend
	ApproveWithReason(ctx context.Context, a *entity.Approval, reason string) (*Outcome, error)
	Reject(ctx context.Context, a *entity.Approval, reason string) (*Outcome, error)
	// Busy reports whether a decision for id is outstanding
	Busy(id string) bool
	State(id string) domainwf.State
}

type approvalServiceImpl struct {
	repo         port.ApprovalRepository
	bus          dispatcher.Dispatcher
	tracker      workflow.SubmissionTracker
	logger       Logger
	settleDelay  time.Duration
	dismissAfter time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// ApprovalOption configures the approval service
type ApprovalOption func(*approvalServiceImpl)

// WithSettleDelay sets the pause between a successful call and the outcome
func WithSettleDelay(d time.Duration) ApprovalOption {
	return func(s *approvalServiceImpl) {
		s.settleDelay = d
	}
}

// WithConfirmationDismiss sets how long the confirmation stays visible
func WithConfirmationDismiss(d time.Duration) ApprovalOption {
	return func(s *approvalServiceImpl) {
		s.dismissAfter = d
	}
}

// WithTracker replaces the submission tracker
func WithTracker(t workflow.SubmissionTracker) ApprovalOption {
	return func(s *approvalServiceImpl) {
		s.tracker = t
	}
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	repo port.ApprovalRepository,
	bus dispatcher.Dispatcher,
	logger Logger,
	opts ...ApprovalOption,
) ApprovalService {
	s := &approvalServiceImpl{
		repo:         repo,
		bus:          bus,
		tracker:      workflow.NewTracker(),
		logger:       logger,
		settleDelay:  500 * time.Millisecond,
		dismissAfter: 2 * time.Second,
		sleep:        sleepContext,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type decision struct {
	op      string
	status  entity.Status
	reason  string
	message string
	call    func(ctx context.Context) (*entity.Approval, error)
}

// Approve marks the request approved
func (s *approvalServiceImpl) Approve(ctx context.Context, a *entity.Approval) (*Outcome, error) {
	return s.ApproveWithReason(ctx, a, "")
}

// ApproveWithReason marks the request approved. A blank reason is not sent.
func (s *approvalServiceImpl) ApproveWithReason(ctx context.Context, a *entity.Approval, reason string) (*Outcome, error) {
	const op = "Approve"
	if a == nil || a.ID == "" {
		return nil, apperr.Validation(op, "Approval request is required")
	}
	if a.Status == entity.StatusApproved {
		return nil, apperr.Validation(op, "This request is already approved")
	}

	id := a.ID
	note := strings.TrimSpace(reason)
	return s.submit(ctx, a, decision{
		op:      op,
		status:  entity.StatusApproved,
		message: MsgApproved,
		call: func(ctx context.Context) (*entity.Approval, error) {
			return s.repo.Approve(ctx, id, note)
		},
	})
}

// Reject marks the request rejected with a mandatory reason
func (s *approvalServiceImpl) Reject(ctx context.Context, a *entity.Approval, reason string) (*Outcome, error) {
	const op = "Reject"
	if a == nil || a.ID == "" {
		return nil, apperr.Validation(op, "Approval request is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation(op, "Rejection reason is required")
	}
	if a.Status == entity.StatusRejected {
		return nil, apperr.Validation(op, "This request is already rejected")
	}

	id := a.ID
	return s.submit(ctx, a, decision{
		op:      op,
		status:  entity.StatusRejected,
		reason:  reason,
		message: MsgRejected,
		call: func(ctx context.Context) (*entity.Approval, error) {
			return s.repo.Reject(ctx, id, reason)
		},
	})
}

// Busy reports whether a decision for id is outstanding
func (s *approvalServiceImpl) Busy(id string) bool {
	return s.tracker.Busy(id)
}

// State returns the submission state for id
func (s *approvalServiceImpl) State(id string) domainwf.State {
	return s.tracker.State(id)
}

func (s *approvalServiceImpl) submit(ctx context.Context, a *entity.Approval, d decision) (*Outcome, error) {
	if err := s.tracker.Begin(ctx, a.ID); err != nil {
		if errors.Is(err, workflow.ErrSubmissionInProgress) {
			return nil, &apperr.Error{Kind: apperr.KindValidation, Op: d.op, Message: "Please wait, this request is still being updated", Err: err}
		}
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(d.op), a.ID, err)
	}

	prevStatus, prevReason := a.Status, a.RejectionReason
	correlationID := uuid.NewString()

	a.Status = d.status
	a.RejectionReason = d.reason
	s.bus.Publish(ctx, event.NewWithCorrelation(event.StatusPatch(a.ID, d.status, d.reason), correlationID))

	echoed, err := d.call(ctx)
	if err != nil {
		a.Status = prevStatus
		a.RejectionReason = prevReason
		s.bus.Publish(ctx, event.NewWithCorrelation(event.StatusPatch(a.ID, prevStatus, prevReason), correlationID))

		if ferr := s.tracker.Fail(ctx, a.ID); ferr != nil {
			s.logger.Error("Failed to record rollback", "error", ferr, "id", a.ID)
		}
		s.logger.Error("Decision failed, rolled back",
			"op", d.op,
			"id", a.ID,
			"restored_status", prevStatus,
			"correlation_id", correlationID,
			"error", err,
		)
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(d.op), a.ID, err)
	}

	if serr := s.tracker.Succeed(ctx, a.ID); serr != nil {
		s.logger.Error("Failed to record settlement", "error", serr, "id", a.ID)
	}
	s.logger.Info("Decision settled", "op", d.op, "id", a.ID, "status", d.status, "correlation_id", correlationID)

	// The decision is already persisted; an interrupted delay only shortens the pause.
	_ = s.sleep(ctx, s.settleDelay)

	return &Outcome{
		ID:           a.ID,
		Status:       d.status,
		State:        s.tracker.State(a.ID),
		Message:      d.message,
		DismissAfter: s.dismissAfter,
		Echoed:       echoed,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
