package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// EmptyValue is shown in place of a missing value
const EmptyValue = "—"

var (
	lowerUpper      = regexp.MustCompile(`([a-z])([A-Z])`)
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	lettersOnly     = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// FormatAmount renders a numeric amount as dollars with two decimals.
// Blank strings count as zero and booleans as one or zero. Other
// non-numeric scalars pass through unchanged.
func FormatAmount(v interface{}) (string, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return dollars(1), true
		}
		return dollars(0), true
	case string:
		if strings.TrimSpace(t) == "" {
			return dollars(0), true
		}
	}
	if f, ok := Number(v); ok {
		return dollars(f), true
	}
	s, ok := Scalar(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func dollars(f float64) string {
	return fmt.Sprintf("$%.2f", f)
}

// YesNo renders a flag
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// HumanizeIdentifier splits camelCase, PascalCase and snake_case
// identifiers into words: "TermsAndConditions" becomes "Terms And Conditions".
func HumanizeIdentifier(s string) string {
	if s == "" {
		return ""
	}
	s = lowerUpper.ReplaceAllString(s, "$1 $2")
	s = acronymBoundary.ReplaceAllString(s, "$1 $2")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}

// DisplayValue renders any scalar for display. Mixed-case identifiers are
// humanized and booleans become Yes/No.
func DisplayValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return EmptyValue
	case bool:
		return YesNo(t)
	case string:
		if lettersOnly.MatchString(t) && strings.ToLower(t) != t && strings.ToUpper(t) != t {
			return HumanizeIdentifier(t)
		}
		return t
	}
	if s, ok := Scalar(v); ok {
		return s
	}
	return fmt.Sprint(v)
}
