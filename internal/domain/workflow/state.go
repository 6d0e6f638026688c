package workflow

// State represents the submission state of one approval request
type State string

const (
	StateIdle       State = "IDLE"
	StateSubmitting State = "SUBMITTING"
	StateSettled    State = "SETTLED"
	StateRolledBack State = "ROLLED_BACK"
)

// IsResolved returns true once a submission has either settled or rolled back
func (s State) IsResolved() bool {
	return s == StateSettled || s == StateRolledBack
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known submission state
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateSubmitting, StateSettled, StateRolledBack:
		return true
	default:
		return false
	}
}
