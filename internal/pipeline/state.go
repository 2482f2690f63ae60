package pipeline

import "fmt"

// State is a step of a pipeline run.
type State string

const (
	StateStart          State = "Start"
	StatePatchGenerated State = "PatchGenerated"
	StatePatchApplied   State = "PatchApplied"
	StateVersionStamped State = "VersionStamped"
	StatePackaged       State = "Packaged"
	StateDone           State = "Done"
	StateFailed         State = "Failed"
)

var next = map[State]State{
	StateStart:          StatePatchGenerated,
	StatePatchGenerated: StatePatchApplied,
	StatePatchApplied:   StateVersionStamped,
	StateVersionStamped: StatePackaged,
	StatePackaged:       StateDone,
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Observer is notified of every transition.
type Observer func(from, to State)

// machine enforces strictly forward transitions.
type machine struct {
	current   State
	observers []Observer
}

func newMachine(observers []Observer) *machine {
	return &machine{current: StateStart, observers: observers}
}

func (m *machine) advance(to State) error {
	if m.current.Terminal() || next[m.current] != to {
		return fmt.Errorf("illegal transition %s -> %s", m.current, to)
	}
	m.set(to)
	return nil
}

func (m *machine) fail() {
	if m.current.Terminal() {
		return
	}
	m.set(StateFailed)
}

func (m *machine) set(to State) {
	from := m.current
	m.current = to
	for _, o := range m.observers {
		o(from, to)
	}
}
