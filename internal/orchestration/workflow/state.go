package workflow

import "fmt"

// State is the coordinator's position in the run.
type State int

const (
	StateStart State = iota
	StateAcquireSession
	StateFramework
	StateRoleAnalysis
	StateSynthesis
	StateTerminal
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAcquireSession:
		return "acquire_session"
	case StateFramework:
		return "framework"
	case StateRoleAnalysis:
		return "role_analysis"
	case StateSynthesis:
		return "synthesis"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// stateMachine moves forward only. Terminal may be entered from any state.
type stateMachine struct {
	current State
	history []State
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StateStart, history: []State{StateStart}}
}

func (m *stateMachine) advance(to State) error {
	if to <= m.current {
		return fmt.Errorf("%w: state %s to %s", ErrInvalidTransition, m.current, to)
	}
	if to != StateTerminal && to != m.current+1 {
		return fmt.Errorf("%w: state %s to %s skips a state", ErrInvalidTransition, m.current, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}

// Current returns the current state.
func (m *stateMachine) Current() State {
	return m.current
}

// History returns every state visited, in order.
func (m *stateMachine) History() []State {
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}
