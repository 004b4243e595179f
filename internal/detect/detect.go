package detect

import (
	"semgate/internal/ast"
	"semgate/internal/extractor"
)

// Run executes the three detectors over a baseline/candidate pair and
// aggregates their preservation verdicts. Each detector is independent; the
// verifier runs them concurrently, this helper runs them in sequence.
func Run(baseline, candidate *ast.Tree, opts Options) Result {
	vocab := extractor.DefaultValidationGuards()

	baseEvents := Events(baseline)
	candEvents := Events(candidate)
	eventsOK, missingEvents := EventsPreserved(baseEvents, candEvents)

	baseValidation := Validation(baseline, vocab)
	candValidation := Validation(candidate, vocab)

	baseState := State(baseline)
	candState := State(candidate)
	stateOK, missingState := StatePreserved(baseState, candState, opts.StrictStateKinds)

	return Result{
		EventHandlersPreserved:   eventsOK,
		ValidationLogicPreserved: ValidationPreserved(baseValidation, candValidation, opts.ValidationPolicy),
		StateManagementPreserved: stateOK,
		MissingEventHandlers:     missingEvents,
		MissingStateBindings:     missingState,
		BaselineValidationCount:  baseValidation.Count(),
		CandidateValidationCount: candValidation.Count(),
	}
}
