package workflow

import (
	"context"
	"errors"

	domainwf "github.com/garyjia/approvals-console/internal/domain/workflow"
)

// ErrSubmissionInProgress is returned when a request already has an
// outstanding approve or reject
var ErrSubmissionInProgress = errors.New("a decision for this request is already being submitted")

// SubmissionTracker keeps one submission state machine per approval request
type SubmissionTracker interface {
	// Begin moves the request into SUBMITTING. It fails with
	// ErrSubmissionInProgress while a previous submission is outstanding.
	Begin(ctx context.Context, id string) error

	// Succeed settles the outstanding submission
	Succeed(ctx context.Context, id string) error

	// Fail rolls back the outstanding submission
	Fail(ctx context.Context, id string) error

	// State returns the current state of a request, IDLE when unknown
	State(id string) domainwf.State

	// Busy reports whether a submission is outstanding
	Busy(id string) bool
}
