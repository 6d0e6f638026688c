// Package fixtures embeds sample backend records for the mock backend and
// the development server seed.
package fixtures

import (
	_ "embed"
	"fmt"

	"github.com/garyjia/approvals-console/internal/extract"
)

//go:embed approvals.json
var approvalsJSON []byte

// Seed approver account
const (
	AdminEmail     = "admin@company.com"
	AdminFirstName = "Admin"
	AdminLastName  = "User"
	AdminPassword  = "admin123"
)

// ApprovalsJSON returns the raw fixture document
func ApprovalsJSON() []byte {
	out := make([]byte, len(approvalsJSON))
	copy(out, approvalsJSON)
	return out
}

// Approvals decodes the fixture records. Each call returns fresh maps.
func Approvals() ([]map[string]interface{}, error) {
	v, err := extract.Decode(approvalsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode approval fixtures: %w", err)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("approval fixtures must be a JSON array")
	}
	return extract.Objects(items), nil
}
