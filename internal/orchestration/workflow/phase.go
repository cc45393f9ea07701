// Package workflow runs the phase-gated brainstorming workflow: a shared
// framework, one analysis per selected role, then a synthesis of those
// analyses.
package workflow

// Phase is one gate of the workflow. Phases run in declared order.
type Phase int

const (
	PhaseFramework Phase = iota + 1
	PhaseRoleAnalysis
	PhaseSynthesis
)

// String returns the phase name used in events and status records.
func (p Phase) String() string {
	switch p {
	case PhaseFramework:
		return "framework"
	case PhaseRoleAnalysis:
		return "role_analysis"
	case PhaseSynthesis:
		return "synthesis"
	default:
		return "unknown"
	}
}

// Phases returns every phase in execution order.
func Phases() []Phase {
	return []Phase{PhaseFramework, PhaseRoleAnalysis, PhaseSynthesis}
}

// Policy governs how a phase treats step failures.
type Policy struct {
	// MaxAttempts is the number of executions a step gets, including the
	// first. Always at least 1.
	MaxAttempts int

	// ContinueOnFailure runs the remaining steps after one fails.
	ContinueOnFailure bool

	// Fatal turns any step failure into a HardFailure for the phase.
	Fatal bool
}

// PolicyFor returns the policy for p.
//
//	framework      1 attempt, fatal
//	role_analysis  1 attempt, continue on failure
//	synthesis      2 attempts, fatal
func PolicyFor(p Phase) Policy {
	switch p {
	case PhaseFramework:
		return Policy{MaxAttempts: 1, Fatal: true}
	case PhaseRoleAnalysis:
		return Policy{MaxAttempts: 1, ContinueOnFailure: true}
	case PhaseSynthesis:
		return Policy{MaxAttempts: 2, Fatal: true}
	default:
		return Policy{MaxAttempts: 1, Fatal: true}
	}
}
