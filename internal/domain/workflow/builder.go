package workflow

import "fmt"

// Builder collects the permitted transitions of a submission machine.
// Machines built from it share nothing with the builder.
type Builder struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates an empty transition table
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger]State)}
}

// Permit allows trigger to move from one state to another. Permitting the
// same trigger twice from one state keeps the last target. Panics on
// unknown states.
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}

	row, ok := b.transitions[from]
	if !ok {
		row = make(map[Trigger]State)
		b.transitions[from] = row
	}
	row[trigger] = to
	return b
}

// Build creates a machine in the initial state. Panics on an unknown state.
func (b *Builder) Build(initial State) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initial))
	}

	table := make(map[State]map[Trigger]State, len(b.transitions))
	for from, row := range b.transitions {
		copied := make(map[Trigger]State, len(row))
		for trigger, to := range row {
			copied[trigger] = to
		}
		table[from] = copied
	}

	return &machine{current: initial, table: table}
}

type machine struct {
	current State
	table   map[State]map[Trigger]State
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	_, ok := m.table[m.current][trigger]
	return ok
}

func (m *machine) Fire(trigger Trigger) error {
	to, ok := m.table[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}
