package event

import (
	"time"

	"github.com/google/uuid"
)

// Payload is the typed body of an event. Each payload type belongs to
// exactly one event type.
type Payload interface {
	EventType() Type
}

// Event represents a domain event
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Payload       Payload   `json:"payload"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id"`
}

// New creates a new domain event with auto-generated ID and timestamp
func New(payload Payload) *Event {
	return NewWithCorrelation(payload, uuid.NewString())
}

// NewWithCorrelation creates an event linked to a correlation chain
func NewWithCorrelation(payload Payload, correlationID string) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          payload.EventType(),
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: correlationID,
	}
}

// ApprovalUpdated returns the payload when the event carries an approval patch
func (e *Event) ApprovalUpdated() (ApprovalUpdated, bool) {
	p, ok := e.Payload.(ApprovalUpdated)
	return p, ok
}

// SessionChanged returns the payload when the event carries a session change
func (e *Event) SessionChanged() (SessionChanged, bool) {
	p, ok := e.Payload.(SessionChanged)
	return p, ok
}
