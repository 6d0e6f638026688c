package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/garyjia/approvals-console/internal/application/dispatcher"
	"github.com/garyjia/approvals-console/internal/application/port"
	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/domain/event"
)

// Tab selects which approvals a list view shows
type Tab string

const (
	TabAll      Tab = "all"
	TabPending  Tab = "pending"
	TabApproved Tab = "approved"
	TabRejected Tab = "rejected"
)

// Tabs lists the tabs in display order
var Tabs = []Tab{TabAll, TabPending, TabApproved, TabRejected}

// ParseTab parses a tab name case-insensitively. Empty means all.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabAll, nil
	case TabAll, TabPending, TabApproved, TabRejected:
		return t, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// Matches reports whether an approval belongs on the tab
func (t Tab) Matches(a *entity.Approval) bool {
	if t == TabAll {
		return true
	}
	return string(a.Status) == string(t)
}

// ApprovalList is the in-memory list held by a list view. It is replaced
// by Load and patched in place by approval.updated events while mounted.
type ApprovalList struct {
	repo   port.ApprovalRepository
	bus    dispatcher.Dispatcher
	logger Logger

	mu    sync.RWMutex
	items []*entity.Approval

	subMu   sync.Mutex
	mounted bool
	subs    map[event.Type]string
}

// NewApprovalList creates an empty list
func NewApprovalList(repo port.ApprovalRepository, bus dispatcher.Dispatcher, logger Logger) *ApprovalList {
	return &ApprovalList{
		repo:   repo,
		bus:    bus,
		logger: logger,
		subs:   make(map[event.Type]string),
	}
}

// Mount subscribes the list to approval and session events
func (l *ApprovalList) Mount() {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	if l.mounted {
		return
	}
	l.subs[event.TypeApprovalUpdated] = l.bus.Subscribe(event.TypeApprovalUpdated, l.onApprovalUpdated)
	l.subs[event.TypeSessionChanged] = l.bus.Subscribe(event.TypeSessionChanged, l.onSessionChanged)
	l.mounted = true
}

// Unmount removes the list's subscriptions
func (l *ApprovalList) Unmount() {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	for eventType, name := range l.subs {
		l.bus.Unsubscribe(eventType, name)
		delete(l.subs, eventType)
	}
	l.mounted = false
}

// Load replaces the list with a fresh fetch. The list is left untouched on error.
func (l *ApprovalList) Load(ctx context.Context) error {
	items, err := l.repo.List(ctx)
	if err != nil {
		l.logger.Error("Failed to load approvals", "error", err)
		return fmt.Errorf("load approvals: %w", err)
	}

	l.mu.Lock()
	l.items = items
	l.mu.Unlock()

	l.logger.Info("Approvals loaded", "count", len(items))
	return nil
}

// Replace sets the list contents directly
func (l *ApprovalList) Replace(items []*entity.Approval) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
}

// Len returns the number of approvals held
func (l *ApprovalList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Get returns a copy of the approval with id
func (l *ApprovalList) Get(id string) (*entity.Approval, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.items {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return nil, false
}

// Filter returns copies of the approvals on tab, in list order
func (l *ApprovalList) Filter(tab Tab) []*entity.Approval {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*entity.Approval, 0, len(l.items))
	for _, a := range l.items {
		if tab.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Counts returns the number of approvals per tab
func (l *ApprovalList) Counts() map[Tab]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[Tab]int, len(Tabs))
	for _, tab := range Tabs {
		counts[tab] = 0
	}
	for _, a := range l.items {
		counts[TabAll]++
		counts[Tab(a.Status)]++
	}
	return counts
}

func (l *ApprovalList) onApprovalUpdated(ctx context.Context, evt *event.Event) error {
	patch, ok := evt.ApprovalUpdated()
	if !ok {
		return fmt.Errorf("unexpected payload %T", evt.Payload)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.items {
		if patch.Apply(a) {
			return nil
		}
	}
	return nil
}

func (l *ApprovalList) onSessionChanged(ctx context.Context, evt *event.Event) error {
	change, ok := evt.SessionChanged()
	if !ok {
		return fmt.Errorf("unexpected payload %T", evt.Payload)
	}
	if !change.LoggedIn() {
		l.Replace(nil)
	}
	return nil
}
