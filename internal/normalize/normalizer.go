// Package normalize maps raw backend approval records onto entity.Approval.
// Normalization is total: malformed or partial input yields documented
// fallbacks instead of errors.
package normalize

import (
	"strings"
	"time"

	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/extract"
)

// Fallback values
const (
	UnknownUsername    = "N/A"
	NoSuspensionPolicy = "N/A"
	NoRejectionReason  = "No reason provided"
)

// Candidate key spellings, in lookup order.
var (
	idKeys        = []string{"id", "Id", "ID"}
	statusKeys    = []string{"status", "Status"}
	categoryKeys  = []string{"type", "Type", "category", "Category"}
	reasonKeys    = []string{"reason", "Reason"}
	createdOnKeys = []string{"createdOn", "CreatedOn", "created_on", "createdAt"}

	accountKeys = []string{
		"existingAccountNumber", "ExistingAccountNumber", "existing_account_number",
		"accountNumber", "AccountNumber", "account_number",
		"accountId", "AccountId", "account_id",
	}
	subscriptionNumberKeys = []string{"subscriptionNumber", "SubscriptionNumber", "subscription_number"}
	referenceNumberKeys    = []string{"referenceNumber", "ReferenceNumber", "reference_number"}

	subscriptionsKeys = []string{"subscriptions", "Subscriptions", "subscription"}
	orderActionsKeys  = []string{"orderActions", "OrderActions", "order_actions"}
	suspendKeys       = []string{"suspend", "Suspend"}
	suspendPolicyKeys = []string{"suspendPolicy", "SuspendPolicy", "suspend_policy"}
	suspendDateKeys   = []string{"suspendSpecificDate", "SuspendSpecificDate", "suspend_specific_date"}
	triggerDatesKeys  = []string{"triggerDates", "TriggerDates", "trigger_dates"}
	triggerDateKeys   = []string{"triggerDate", "TriggerDate", "trigger_date"}
)

var descriptionTemplates = map[entity.Category]string{
	entity.CategoryRefund:             "Request for Payment Refund",
	entity.CategorySuspend:            "Request to Suspend Subscription",
	entity.CategoryCancelSubscription: "Request to Cancel Subscription",
	entity.CategoryChangeProduct:      "Request to Change Product",
	entity.CategoryTermsAndConditions: "Request to Update Terms and Conditions",
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer converts raw backend records into canonical approvals
type Normalizer struct {
	now func() time.Time
}

// New creates a normalizer using the wall clock for time fallbacks
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a normalizer with an injected clock
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// NormalizeJSON decodes and normalizes one raw record. Malformed input
// normalizes as an empty record.
func (n *Normalizer) NormalizeJSON(data []byte) *entity.Approval {
	v, err := extract.Decode(data)
	if err != nil {
		return n.Normalize(nil)
	}
	record, _ := v.(map[string]interface{})
	return n.Normalize(record)
}

// NormalizeAll normalizes a list of raw records, skipping non-objects
func (n *Normalizer) NormalizeAll(records []interface{}) []*entity.Approval {
	out := make([]*entity.Approval, 0, len(records))
	for _, r := range records {
		record, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, n.Normalize(record))
	}
	return out
}

// Normalize converts one raw record. It never fails.
func (n *Normalizer) Normalize(record map[string]interface{}) *entity.Approval {
	if record == nil {
		record = map[string]interface{}{}
	}
	payload, _ := extract.Payload(record)

	now := n.now()
	id, _ := extract.FirstString(record, idKeys...)
	category := entity.ParseCategory(stringOf(record, categoryKeys))
	status := ParseStatus(stringOf(record, statusKeys))
	reason, _ := extract.FirstString(record, reasonKeys...)

	a := &entity.Approval{
		ID:                 id,
		UserID:             id,
		Username:           username(record, payload),
		Description:        description(reason, category),
		Category:           category,
		SuspensionPolicy:   NoSuspensionPolicy,
		ExecutionDate:      now,
		Status:             status,
		Timestamp:          parseTime(stringOf(record, createdOnKeys), now),
		SubscriptionNumber: subscriptionNumber(record),
		ExtraFields:        entity.Fields{},
	}

	if status == entity.StatusRejected {
		a.RejectionReason = reason
		if a.RejectionReason == "" {
			a.RejectionReason = NoRejectionReason
		}
	}

	if category == entity.CategorySuspend {
		if policy, date, found := suspendDetails(payload); found {
			if policy != "" {
				a.SuspensionPolicy = policy
			}
			a.ExecutionDate = parseTime(date, now)
		}
	}

	if fields, ok := extract.ExtractFields(record, category.String()); ok {
		a.ExtraFields = fields
	}

	return a
}

// ParseStatus maps a backend status onto the canonical set. Unknown values
// are treated as pending.
func ParseStatus(raw string) entity.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "approved":
		return entity.StatusApproved
	case "rejected":
		return entity.StatusRejected
	default:
		return entity.StatusPending
	}
}

func username(record, payload map[string]interface{}) string {
	if s, ok := extract.FirstString(payload, accountKeys...); ok {
		return s
	}
	if s, ok := extract.FirstString(record, subscriptionNumberKeys...); ok {
		return s
	}
	if s, ok := extract.FirstString(record, referenceNumberKeys...); ok {
		return s
	}
	return UnknownUsername
}

func description(reason string, category entity.Category) string {
	if reason != "" {
		return reason
	}
	if tmpl, ok := descriptionTemplates[category]; ok {
		return tmpl
	}
	return "Request type: " + category.String()
}

func subscriptionNumber(record map[string]interface{}) string {
	if s, ok := extract.FirstString(record, subscriptionNumberKeys...); ok {
		return s
	}
	s, _ := extract.FirstString(record, referenceNumberKeys...)
	return s
}

// suspendDetails finds the first suspend order action. The execution date
// is the action's specific date, else the order action's first trigger date.
func suspendDetails(payload map[string]interface{}) (policy, date string, found bool) {
	subs, ok := extract.FirstArray(payload, subscriptionsKeys...)
	if !ok {
		return "", "", false
	}
	for _, sub := range extract.Objects(subs) {
		actions, _ := extract.FirstArray(sub, orderActionsKeys...)
		for _, action := range extract.Objects(actions) {
			suspend, ok := extract.FirstObject(action, suspendKeys...)
			if !ok {
				continue
			}
			policy, _ = extract.FirstString(suspend, suspendPolicyKeys...)
			date, _ = extract.FirstString(suspend, suspendDateKeys...)
			if date == "" {
				triggers, _ := extract.FirstArray(action, triggerDatesKeys...)
				for _, trigger := range extract.Objects(triggers) {
					if date, ok = extract.FirstString(trigger, triggerDateKeys...); ok {
						break
					}
				}
			}
			return policy, date, true
		}
	}
	return "", "", false
}

func stringOf(obj map[string]interface{}, keys []string) string {
	s, _ := extract.FirstString(obj, keys...)
	return s
}

func parseTime(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
