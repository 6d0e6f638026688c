package entity

import "strings"

// Status is the canonical decision state of an approval request
type Status string

// Status constants for Approval
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is one of the defined constants
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Category classifies what an approval request asks for.
// Values outside the known set are carried through unchanged.
type Category string

// Category constants for Approval
const (
	CategorySuspend            Category = "Suspend"
	CategoryCancelSubscription Category = "CancelSubscription"
	CategoryTermsAndConditions Category = "TermsAndConditions"
	CategoryChangeProduct      Category = "ChangeProduct"
	CategoryRefund             Category = "Refund"
	CategoryGeneral            Category = "General"
)

var knownCategories = map[string]Category{
	"suspend":            CategorySuspend,
	"cancelsubscription": CategoryCancelSubscription,
	"termsandconditions": CategoryTermsAndConditions,
	"changeproduct":      CategoryChangeProduct,
	"refund":             CategoryRefund,
	"general":            CategoryGeneral,
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// IsKnown reports whether the category is one of the defined constants
func (c Category) IsKnown() bool {
	known, ok := knownCategories[categoryKey(string(c))]
	return ok && known == c
}

// ParseCategory maps a backend category string onto the known set.
// Matching ignores case, spaces, underscores and hyphens. Unknown values
// pass through as-is and an empty value becomes CategoryGeneral.
func ParseCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CategoryGeneral
	}
	if c, ok := knownCategories[categoryKey(trimmed)]; ok {
		return c
	}
	return Category(trimmed)
}

func categoryKey(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
}

// Role constants for User
const (
	RoleApprover = "approver"
)

// Device types accepted by the device-token endpoint
const (
	DeviceTypeAndroid = "ANDROID"
	DeviceTypeIOS     = "IOS"
)
