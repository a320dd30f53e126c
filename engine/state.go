package engine

// State is a coordinator state of one orchestration.
type State string

const (
	StateLoadingAgents  State = "loading-agents"
	StateNoAgents       State = "no-agents"   // terminal
	StateTagMismatch    State = "tag-mismatch" // terminal
	StatePlanningBudget State = "planning-budget"
	StateExecuting      State = "executing"
	StateAggregating    State = "aggregating" // terminal
	StateFailed         State = "failed"      // terminal; lookup or planning failure
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StateNoAgents, StateTagMismatch, StateAggregating, StateFailed:
		return true
	default:
		return false
	}
}
