package entity

import "time"

// Approval is the canonical approval request shown to an approver
type Approval struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Username           string    `json:"username"`
	Description        string    `json:"description"`
	Category           Category  `json:"category"`
	SuspensionPolicy   string    `json:"suspensionPolicy"`
	ExecutionDate      time.Time `json:"executionDate"`
	Status             Status    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
	RejectionReason    string    `json:"rejectionReason,omitempty"`
	SubscriptionNumber string    `json:"subscriptionNumber,omitempty"`
	ExtraFields        Fields    `json:"extraFields,omitempty"`
}

// Clone returns a deep copy of the approval
func (a *Approval) Clone() *Approval {
	if a == nil {
		return nil
	}
	c := *a
	if a.ExtraFields != nil {
		c.ExtraFields = make(Fields, len(a.ExtraFields))
		copy(c.ExtraFields, a.ExtraFields)
	}
	return &c
}

// IsPending reports whether the request still awaits a decision
func (a *Approval) IsPending() bool {
	return a.Status == StatusPending
}

// HasRejectionReason reports whether a rejection reason is present
func (a *Approval) HasRejectionReason() bool {
	return a.RejectionReason != ""
}
