// Package detect provides the three independent pattern detectors: event
// handlers, validation logic, and state bindings. Detection is heuristic and
// vocabulary-driven; each pass is a pure function over an immutable parse
// tree and may run concurrently with the others.
package detect

// MatchPolicy controls how baseline and candidate findings are matched.
// The coarse default mirrors the counting heuristics of the original
// pipeline; the strict policy matches by normalized name instead, making
// reorder/rename significance an explicit configuration choice.
type MatchPolicy string

const (
	MatchByCount MatchPolicy = "count"
	MatchByNames MatchPolicy = "names"
)

// Options configures the detectors.
type Options struct {
	// ValidationPolicy selects count or name matching for validation logic.
	ValidationPolicy MatchPolicy

	// StrictStateKinds treats a simple-vs-reducer kind change as a break.
	StrictStateKinds bool
}

// DefaultOptions matches the permissive behavior of the original pipeline.
func DefaultOptions() Options {
	return Options{ValidationPolicy: MatchByCount, StrictStateKinds: false}
}

// Result aggregates the three preservation verdicts for one artifact pair.
type Result struct {
	EventHandlersPreserved   bool     `json:"event_handlers_preserved"`
	ValidationLogicPreserved bool     `json:"validation_logic_preserved"`
	StateManagementPreserved bool     `json:"state_management_preserved"`
	MissingEventHandlers     []string `json:"missing_event_handlers,omitempty"`
	MissingStateBindings     []string `json:"missing_state_bindings,omitempty"`
	BaselineValidationCount  int      `json:"baseline_validation_count"`
	CandidateValidationCount int      `json:"candidate_validation_count"`
}

// StateKind distinguishes plain state cells from reducer-style bindings.
type StateKind string

const (
	StateSimple  StateKind = "simple"
	StateReducer StateKind = "reducer"
)

// StateBinding is one declared reactive state variable.
type StateBinding struct {
	Name string    `json:"name"`
	Kind StateKind `json:"kind"`
}
