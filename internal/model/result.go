package model

// RunMode selects how a reconciliation run behaves. It is chosen once per
// invocation and immutable for the run.
type RunMode int

const (
	// CheckOnly observes and judges without applying any action.
	CheckOnly RunMode = iota
	// Apply corrects unsatisfied facts, prompting before destructive actions.
	Apply
	// ApplyUnattended corrects without prompting; destructive actions run
	// only when preauthorized by the caller.
	ApplyUnattended
	// Backout runs the inverse action set to restore the pre-hardening state.
	Backout
)

func (m RunMode) String() string {
	switch m {
	case CheckOnly:
		return "check"
	case Apply:
		return "apply"
	case ApplyUnattended:
		return "apply-unattended"
	case Backout:
		return "backout"
	default:
		return "unknown"
	}
}

// Interactive reports whether the mode may prompt the operator.
func (m RunMode) Interactive() bool {
	return m == Apply
}

// Satisfaction is the tri-state judgment of a target against observed facts.
type Satisfaction string

const (
	// Satisfied means every fact with a known observed value matched.
	Satisfied Satisfaction = "satisfied"
	// NotSatisfied means at least one known fact did not match.
	NotSatisfied Satisfaction = "not satisfied"
	// Indeterminate means no fact could be observed, so no judgment is
	// possible. Surfaced distinctly from NotSatisfied.
	Indeterminate Satisfaction = "indeterminate"
)

// RunResult is the outcome of one reconciliation run. It is constructed and
// mutated exclusively by the reconciler and discarded once the caller has
// consumed it.
type RunResult struct {
	Target string
	Mode   RunMode

	SatisfiedBefore Satisfaction
	SatisfiedAfter  Satisfaction

	// Before and After hold per-fact reports from the entry and exit
	// observations, in target declaration order.
	Before []FactReport
	After  []FactReport

	// ActionsApplied lists the names of actions actually executed, in order.
	ActionsApplied []string

	// ActionsDeclined lists destructive actions the operator declined.
	ActionsDeclined []string

	// Errors accumulates non-fatal failures (observation and action errors)
	// in the order they occurred.
	Errors []error
}

// Success reports whether the run finished with the target satisfied and no
// recorded errors. Callers map this to the process exit status.
func (r *RunResult) Success() bool {
	return r != nil && r.SatisfiedAfter == Satisfied && len(r.Errors) == 0
}
