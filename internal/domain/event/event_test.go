package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      string
	}{
		{
			name:      "approval updated",
			eventType: TypeApprovalUpdated,
			want:      "approval.updated",
		},
		{
			name:      "session changed",
			eventType: TypeSessionChanged,
			want:      "session.changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.String())
		})
	}
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeApprovalUpdated.IsValid())
	assert.True(t, TypeSessionChanged.IsValid())
	assert.False(t, Type("approvalUpdated").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestNew(t *testing.T) {
	evt := New(StatusPatch("R1", entity.StatusApproved, ""))

	assert.NotEmpty(t, evt.ID)
	assert.NotEmpty(t, evt.CorrelationID)
	assert.NotEqual(t, evt.ID, evt.CorrelationID)
	assert.Equal(t, TypeApprovalUpdated, evt.Type)
	assert.False(t, evt.Timestamp.IsZero())

	p, ok := evt.ApprovalUpdated()
	require.True(t, ok)
	assert.Equal(t, "R1", p.ID)

	_, ok = evt.SessionChanged()
	assert.False(t, ok)
}

func TestNewWithCorrelation(t *testing.T) {
	first := New(SessionChanged{})
	second := NewWithCorrelation(SessionChanged{}, first.CorrelationID)

	assert.Equal(t, first.CorrelationID, second.CorrelationID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, TypeSessionChanged, second.Type)
}

func TestApprovalUpdated_Apply(t *testing.T) {
	rejected := entity.StatusRejected

	tests := []struct {
		name       string
		patch      ApprovalUpdated
		wantStatus entity.Status
		wantReason string
		applied    bool
	}{
		{
			name:       "status only keeps reason",
			patch:      ApprovalUpdated{ID: "R1", Status: &rejected},
			wantStatus: entity.StatusRejected,
			wantReason: "old reason",
			applied:    true,
		},
		{
			name:       "empty reason clears",
			patch:      StatusPatch("R1", entity.StatusPending, ""),
			wantStatus: entity.StatusPending,
			wantReason: "",
			applied:    true,
		},
		{
			name:       "other id untouched",
			patch:      StatusPatch("R2", entity.StatusApproved, ""),
			wantStatus: entity.StatusPending,
			wantReason: "old reason",
			applied:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &entity.Approval{ID: "R1", Status: entity.StatusPending, RejectionReason: "old reason"}
			assert.Equal(t, tt.applied, tt.patch.Apply(a))
			assert.Equal(t, tt.wantStatus, a.Status)
			assert.Equal(t, tt.wantReason, a.RejectionReason)
		})
	}

	assert.False(t, StatusPatch("R1", entity.StatusApproved, "").Apply(nil))
}

func TestSessionChanged_LoggedIn(t *testing.T) {
	assert.False(t, SessionChanged{}.LoggedIn())
	assert.True(t, SessionChanged{User: &entity.User{ID: "1"}}.LoggedIn())
}
