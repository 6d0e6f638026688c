package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainwf "github.com/garyjia/approvals-console/internal/domain/workflow"
)

// trackerImpl is the concrete implementation of SubmissionTracker
type trackerImpl struct {
	mu          sync.Mutex
	machines    map[string]domainwf.StateMachine
	lastAccess  map[string]time.Time
	cacheExpiry time.Duration
	now         func() time.Time
}

// TrackerOption configures the submission tracker
type TrackerOption func(*trackerImpl)

// WithCacheExpiry sets how long resolved state machines are kept
func WithCacheExpiry(expiry time.Duration) TrackerOption {
	return func(t *trackerImpl) {
		t.cacheExpiry = expiry
	}
}

// WithClock overrides the clock used for cache expiry
func WithClock(now func() time.Time) TrackerOption {
	return func(t *trackerImpl) {
		t.now = now
	}
}

// NewTracker creates a new submission tracker
func NewTracker(opts ...TrackerOption) SubmissionTracker {
	t := &trackerImpl{
		machines:    make(map[string]domainwf.StateMachine),
		lastAccess:  make(map[string]time.Time),
		cacheExpiry: 30 * time.Minute,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Begin moves the request into SUBMITTING
func (t *trackerImpl) Begin(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked()

	machine, exists := t.machines[id]
	if !exists {
		machine = BuildSubmissionStateMachine(domainwf.StateIdle)
		t.machines[id] = machine
	}

	if !machine.CanFire(domainwf.TriggerSubmit) {
		return ErrSubmissionInProgress
	}

	if err := machine.Fire(domainwf.TriggerSubmit); err != nil {
		return fmt.Errorf("begin submission for %s: %w", id, err)
	}
	t.lastAccess[id] = t.now()
	return nil
}

// Succeed settles the outstanding submission
func (t *trackerImpl) Succeed(ctx context.Context, id string) error {
	return t.fire(id, domainwf.TriggerSucceed)
}

// Fail rolls back the outstanding submission
func (t *trackerImpl) Fail(ctx context.Context, id string) error {
	return t.fire(id, domainwf.TriggerFail)
}

func (t *trackerImpl) fire(id string, trigger domainwf.Trigger) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	machine, exists := t.machines[id]
	if !exists {
		return fmt.Errorf("%w: no submission for %s", domainwf.ErrInvalidTransition, id)
	}

	if err := machine.Fire(trigger); err != nil {
		return fmt.Errorf("resolve submission for %s: %w", id, err)
	}
	t.lastAccess[id] = t.now()
	return nil
}

// State returns the current state of a request
func (t *trackerImpl) State(id string) domainwf.State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if machine, exists := t.machines[id]; exists {
		return machine.State()
	}
	return domainwf.StateIdle
}

// Busy reports whether a submission is outstanding
func (t *trackerImpl) Busy(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	machine, exists := t.machines[id]
	return exists && !machine.CanFire(domainwf.TriggerSubmit)
}

// pruneLocked drops resolved machines not touched within the expiry.
// Outstanding submissions are never pruned.
func (t *trackerImpl) pruneLocked() {
	cutoff := t.now().Add(-t.cacheExpiry)
	for id, machine := range t.machines {
		if !machine.State().IsResolved() {
			continue
		}
		if t.lastAccess[id].Before(cutoff) {
			delete(t.machines, id)
			delete(t.lastAccess, id)
		}
	}
}
