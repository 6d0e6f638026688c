package event

import "github.com/garyjia/approvals-console/internal/domain/entity"

// ApprovalUpdated is a partial update to one approval. Nil fields are not
// carried; a RejectionReason pointing at "" clears the reason.
type ApprovalUpdated struct {
	ID              string         `json:"id"`
	Status          *entity.Status `json:"status,omitempty"`
	RejectionReason *string        `json:"rejectionReason,omitempty"`
}

// EventType implements Payload
func (ApprovalUpdated) EventType() Type {
	return TypeApprovalUpdated
}

// StatusPatch builds an update carrying status and rejection reason
func StatusPatch(id string, status entity.Status, reason string) ApprovalUpdated {
	return ApprovalUpdated{ID: id, Status: &status, RejectionReason: &reason}
}

// Apply merges the carried fields into a. Updates for another id are ignored.
func (p ApprovalUpdated) Apply(a *entity.Approval) bool {
	if a == nil || a.ID != p.ID {
		return false
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.RejectionReason != nil {
		a.RejectionReason = *p.RejectionReason
	}
	return true
}

// SessionChanged reports login and logout. User is nil after logout.
type SessionChanged struct {
	User *entity.User `json:"user,omitempty"`
}

// EventType implements Payload
func (SessionChanged) EventType() Type {
	return TypeSessionChanged
}

// LoggedIn reports whether the session now has a user
func (p SessionChanged) LoggedIn() bool {
	return p.User != nil
}
