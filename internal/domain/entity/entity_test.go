package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Category
	}{
		{"exact", "Refund", CategoryRefund},
		{"lower case", "suspend", CategorySuspend},
		{"snake case", "cancel_subscription", CategoryCancelSubscription},
		{"spaced", "Terms And Conditions", CategoryTermsAndConditions},
		{"hyphenated", "change-product", CategoryChangeProduct},
		{"empty", "", CategoryGeneral},
		{"blank", "   ", CategoryGeneral},
		{"unknown passes through", "UpgradePlan", Category("UpgradePlan")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategory(tt.raw))
		})
	}
}

func TestCategory_IsKnown(t *testing.T) {
	assert.True(t, CategoryRefund.IsKnown())
	assert.True(t, CategoryGeneral.IsKnown())
	assert.False(t, Category("refund").IsKnown())
	assert.False(t, Category("UpgradePlan").IsKnown())
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusApproved.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, Status("SUCCESS").IsValid())
}

func TestApproval_Clone(t *testing.T) {
	a := &Approval{
		ID:     "R1",
		Status: StatusPending,
		ExtraFields: Fields{
			{Label: "Payment ID", Value: "P-1"},
		},
	}

	c := a.Clone()
	require.NotNil(t, c)
	c.Status = StatusApproved
	c.ExtraFields[0].Value = "changed"

	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, "P-1", a.ExtraFields[0].Value)

	var nilApproval *Approval
	assert.Nil(t, nilApproval.Clone())
}

func TestFields(t *testing.T) {
	var f Fields
	f.Add("Subscription ID", "S-1")
	f.Add("Suspension Policy", "Today")

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"Subscription ID", "Suspension Policy"}, f.Labels())

	v, ok := f.Get("Suspension Policy")
	assert.True(t, ok)
	assert.Equal(t, "Today", v)

	_, ok = f.Get("Missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"Subscription ID": "S-1", "Suspension Policy": "Today"}, f.Map())
}

func TestNewUser(t *testing.T) {
	u := NewUser("7", "jane.doe@example.com", "Jane", "Doe")
	assert.Equal(t, "7", u.ID)
	assert.Equal(t, "jane.doe", u.Username)
	assert.Equal(t, "Jane Doe", u.Name)
	assert.Equal(t, RoleApprover, u.Role)

	u = NewUser("8", "nobody", "", "Solo")
	assert.Equal(t, "nobody", u.Username)
	assert.Equal(t, "Solo", u.Name)
}
