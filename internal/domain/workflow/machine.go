package workflow

// StateMachine tracks the submission state of one approval request
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire reports whether trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire moves to the state trigger leads to, or returns
	// ErrInvalidTransition and stays put
	Fire(trigger Trigger) error
}
