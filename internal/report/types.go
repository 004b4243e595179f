// Package report aggregates comparison records, detector results, and rule
// issues into the final equivalence verdict, and renders it for humans.
package report

import (
	"time"

	"semgate/internal/compare"
	"semgate/internal/detect"
	"semgate/internal/rules"
)

// Verdict is the aggregate pass/fail signal for one baseline/candidate pair.
// Preserved is the boolean gate; Score is a separate continuous signal from
// the rule-validator pass rate. Both are reported.
type Verdict struct {
	Preserved                bool `json:"preserved"`
	FunctionsPreserved       bool `json:"functions_preserved"`
	EventHandlersPreserved   bool `json:"event_handlers_preserved"`
	ValidationLogicPreserved bool `json:"validation_logic_preserved"`
	StateManagementPreserved bool `json:"state_management_preserved"`
	SemanticEquivalence      bool `json:"semantic_equivalence"`

	Score float64 `json:"score"`

	ComparisonRecords []compare.Record    `json:"comparison_records"`
	ValidationIssues  []rules.Issue       `json:"validation_issues"`
	SkippedRules      []rules.SkippedRule `json:"skipped_rules,omitempty"`

	MissingFunctions []string `json:"missing_functions,omitempty"`
	MissingExports   []string `json:"missing_exports,omitempty"`
	Detection        detect.Result `json:"detection"`
}

// Report wraps a verdict with artifact identities and run metadata. A pair
// whose baseline or candidate failed to parse carries the parse error text
// and no verdict; such pairs are excluded from aggregate scoring and flagged
// for manual review.
type Report struct {
	BaselineID  string    `json:"baseline_id"`
	CandidateID string    `json:"candidate_id"`
	Verdict     *Verdict  `json:"verdict,omitempty"`
	ParseError  string    `json:"parse_error,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Failed reports whether the pair could not be verified at all.
func (r *Report) Failed() bool {
	return r.ParseError != ""
}

// Passed reports whether the pair is preserved with no error-severity issues.
func (r *Report) Passed() bool {
	if r.Failed() || r.Verdict == nil || !r.Verdict.Preserved {
		return false
	}
	for _, issue := range r.Verdict.ValidationIssues {
		if issue.Severity == rules.SeverityError {
			return false
		}
	}
	return true
}

// BatchReport aggregates a whole run.
type BatchReport struct {
	Reports        []*Report `json:"reports"`
	AggregateScore float64   `json:"aggregate_score"`
	PairsVerified  int       `json:"pairs_verified"`
	PairsFailed    int       `json:"pairs_failed"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Passed reports whether every verifiable pair passed and none failed to parse.
func (b *BatchReport) Passed() bool {
	if b.PairsFailed > 0 {
		return false
	}
	for _, r := range b.Reports {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Options configures the scoring gate.
type Options struct {
	// SeverityThreshold is the lowest implementation-change severity that
	// breaks the preservation gate. Default: high.
	SeverityThreshold compare.Severity
}

// DefaultOptions returns the standard gate configuration.
func DefaultOptions() Options {
	return Options{SeverityThreshold: compare.SeverityHigh}
}
