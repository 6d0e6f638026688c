package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), MsgUnknown},
		{"network", Network("List", errors.New("dial tcp: refused")), MsgNetwork},
		{"server with message", Server("Approve", 500, "Database unavailable"), "Database unavailable"},
		{"server without message", Server("Approve", 502, ""), "Server error: 502"},
		{"not found", NotFound("GetByID", "Approval request not found"), "Approval request not found"},
		{"validation", Validation("Reject", "Rejection reason is required"), "Rejection reason is required"},
		{"unauthorized", Unauthorized("Login", 401), MsgInvalidCredentials},
		{"wrapped", fmt.Errorf("reject R1: %w", Server("Reject", 500, "boom")), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("GetByID", "missing"))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindServer))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestError_Error(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindNetwork, "List", cause)

	assert.Equal(t, "List: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "missing", New(KindNotFound, "", "missing").Error())
}
