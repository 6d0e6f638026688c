package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/extract"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return NewWithClock(func() time.Time { return fixedNow })
}

func decodeRecord(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	v, err := extract.Decode([]byte(s))
	require.NoError(t, err)
	m, ok := v.(map[string]interface{})
	require.True(t, ok)
	return m
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want entity.Status
	}{
		{"Success", entity.StatusApproved},
		{"APPROVED", entity.StatusApproved},
		{"approved", entity.StatusApproved},
		{"Pending", entity.StatusPending},
		{"REJECTED", entity.StatusRejected},
		{"weird_value", entity.StatusPending},
		{"", entity.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.raw))
		})
	}
}

func TestNormalize_StatusMapping(t *testing.T) {
	n := newTestNormalizer()

	a := n.Normalize(map[string]interface{}{"id": "1", "status": "Success"})
	assert.Equal(t, entity.StatusApproved, a.Status)

	a = n.Normalize(map[string]interface{}{"id": "1", "status": "weird_value"})
	assert.Equal(t, entity.StatusPending, a.Status)
}

func TestNormalize_Username(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "existing account number wins",
			raw:  `{"subscriptionNumber":"S-1","rawJson":{"accountNumber":"A-2","existingAccountNumber":"A-1"}}`,
			want: "A-1",
		},
		{
			name: "account id",
			raw:  `{"referenceNumber":"REF-1","rawJson":{"AccountId":"ACC-9"}}`,
			want: "ACC-9",
		},
		{
			name: "subscription number before reference number",
			raw:  `{"subscriptionNumber":"S-1","referenceNumber":"REF-1"}`,
			want: "S-1",
		},
		{
			name: "reference number only",
			raw:  `{"referenceNumber":"REF-9"}`,
			want: "REF-9",
		},
		{
			name: "nothing available",
			raw:  `{"id":5}`,
			want: UnknownUsername,
		},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(decodeRecord(t, tt.raw)).Username)
		})
	}
}

func TestNormalize_Description(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"explicit reason", `{"type":"Refund","reason":"Customer overcharged"}`, "Customer overcharged"},
		{"refund template", `{"type":"Refund"}`, "Request for Payment Refund"},
		{"suspend template", `{"type":"suspend"}`, "Request to Suspend Subscription"},
		{"cancel template", `{"type":"CancelSubscription"}`, "Request to Cancel Subscription"},
		{"change template", `{"type":"ChangeProduct"}`, "Request to Change Product"},
		{"terms template", `{"type":"TermsAndConditions"}`, "Request to Update Terms and Conditions"},
		{"unknown category", `{"type":"UpgradePlan"}`, "Request type: UpgradePlan"},
		{"absent category", `{}`, "Request type: General"},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(decodeRecord(t, tt.raw)).Description)
		})
	}
}

func TestNormalize_Category(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, entity.CategoryRefund, n.Normalize(map[string]interface{}{"type": "REFUND"}).Category)
	assert.Equal(t, entity.Category("UpgradePlan"), n.Normalize(map[string]interface{}{"type": "UpgradePlan"}).Category)
	assert.Equal(t, entity.CategoryGeneral, n.Normalize(map[string]interface{}{}).Category)
}

func TestNormalize_RejectionReason(t *testing.T) {
	n := newTestNormalizer()

	a := n.Normalize(map[string]interface{}{"status": "Rejected", "reason": "duplicate"})
	assert.Equal(t, "duplicate", a.RejectionReason)

	a = n.Normalize(map[string]interface{}{"status": "Rejected"})
	assert.Equal(t, NoRejectionReason, a.RejectionReason)

	a = n.Normalize(map[string]interface{}{"status": "Pending", "reason": "needs review"})
	assert.Empty(t, a.RejectionReason)
	assert.Equal(t, "needs review", a.Description)
}

func TestNormalize_Suspend(t *testing.T) {
	n := newTestNormalizer()

	t.Run("specific date", func(t *testing.T) {
		a := n.Normalize(decodeRecord(t, `{"id":1,"type":"Suspend","rawJson":{"subscriptions":[{"subscriptionNumber":"A-S1","orderActions":[
			{"suspend":{"suspendPolicy":"SpecificDate","suspendSpecificDate":"2025-04-15"}}
		]}]}}`))

		assert.Equal(t, "SpecificDate", a.SuspensionPolicy)
		assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), a.ExecutionDate)
		v, ok := a.ExtraFields.Get(extract.LabelSuspensionPolicy)
		assert.True(t, ok)
		assert.Equal(t, "SpecificDate", v)
	})

	t.Run("trigger date", func(t *testing.T) {
		a := n.Normalize(decodeRecord(t, `{"type":"Suspend","rawJson":{"subscriptions":[{"orderActions":[
			{"triggerDates":[{"name":"ContractEffective","triggerDate":"2025-05-01"}],"suspend":{"suspendPolicy":"Today"}}
		]}]}}`))

		assert.Equal(t, "Today", a.SuspensionPolicy)
		assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), a.ExecutionDate)
	})

	t.Run("non suspend category uses fallbacks", func(t *testing.T) {
		a := n.Normalize(decodeRecord(t, `{"type":"Refund","rawJson":{"subscriptions":[{"orderActions":[{"suspend":{"suspendPolicy":"Today"}}]}]}}`))

		assert.Equal(t, NoSuspensionPolicy, a.SuspensionPolicy)
		assert.Equal(t, fixedNow, a.ExecutionDate)
	})
}

func TestNormalize_Timestamp(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02T03:04:05.123", time.Date(2025, 1, 2, 3, 4, 5, 123000000, time.UTC)},
		{"2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"yesterday", fixedNow},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := n.Normalize(map[string]interface{}{"createdOn": tt.raw})
			assert.True(t, tt.want.Equal(a.Timestamp), "got %v", a.Timestamp)
		})
	}
}

func TestNormalize_Total(t *testing.T) {
	n := newTestNormalizer()

	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("not json"),
		[]byte("[1,2,3]"),
		[]byte(`{"rawJson":"{broken"}`),
		[]byte(`{"id":null,"status":42,"type":{"nested":true}}`),
	}

	for _, in := range inputs {
		a := n.NormalizeJSON(in)
		require.NotNil(t, a)
		assert.Equal(t, entity.StatusPending, a.Status)
		assert.Equal(t, UnknownUsername, a.Username)
		assert.Equal(t, entity.CategoryGeneral, a.Category)
		assert.Equal(t, NoSuspensionPolicy, a.SuspensionPolicy)
		assert.Equal(t, fixedNow, a.Timestamp)
		assert.NotNil(t, a.ExtraFields)
	}
}

func TestNormalize_StableID(t *testing.T) {
	n := newTestNormalizer()
	raw := `{"id":42,"status":"Pending","type":"Refund","rawJson":{"totalAmount":10}}`

	first := n.NormalizeJSON([]byte(raw))
	second := n.NormalizeJSON([]byte(raw))

	assert.Equal(t, "42", first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.UserID, first.ID)
	assert.Equal(t, first, second)
}

func TestNormalize_ExtraFieldsFromExtractor(t *testing.T) {
	n := newTestNormalizer()
	a := n.Normalize(decodeRecord(t, `{"id":3,"type":"Refund","referenceNumber":"PAY-3","rawJson":{"totalAmount":12345.6,"type":"External"}}`))

	assert.Equal(t, entity.Fields{
		{Label: extract.LabelPaymentID, Value: "PAY-3"},
		{Label: extract.LabelRefundAmount, Value: "$12345.60"},
		{Label: extract.LabelRefundType, Value: "External"},
	}, a.ExtraFields)
	assert.Equal(t, "PAY-3", a.SubscriptionNumber)
}

func TestNormalizeAll(t *testing.T) {
	n := newTestNormalizer()
	out := n.NormalizeAll([]interface{}{
		map[string]interface{}{"id": "1"},
		"garbage",
		map[string]interface{}{"id": "2"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
}
