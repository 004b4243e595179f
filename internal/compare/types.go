// Package compare pairs baseline and candidate semantic units and classifies
// every change with a regression severity.
package compare

import "semgate/internal/extractor"

// ChangeType classifies what happened to a unit between baseline and candidate.
type ChangeType string

const (
	ChangeUnchanged      ChangeType = "unchanged"
	ChangeSignature      ChangeType = "signature-changed"
	ChangeImplementation ChangeType = "implementation-changed"
	ChangeRemoved        ChangeType = "removed"
	ChangeAdded          ChangeType = "added"
)

// Severity ranks the regression impact of a change.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// rank orders severities for threshold comparisons.
var rank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// AtLeast reports whether s is at or above the given threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return rank[s] >= rank[threshold]
}

// Record is the outcome of comparing one unit. It always references a name
// present in baseline, candidate, or both.
type Record struct {
	UnitName   string                `json:"unit_name"`
	ChangeType ChangeType            `json:"change_type"`
	Severity   Severity              `json:"severity"`
	Baseline   *extractor.SourceUnit `json:"baseline,omitempty"`
	Candidate  *extractor.SourceUnit `json:"candidate,omitempty"`

	// LowConfidence marks positional pairings of anonymous callbacks whose
	// baseline and candidate counts disagree: such pairings break under
	// reordering and should not be trusted silently.
	LowConfidence bool `json:"low_confidence,omitempty"`

	Reason string `json:"reason,omitempty"`
}

// Options tunes the semantic-equivalence suppression window.
type Options struct {
	// ComplexityRatioMin/Max bound candidate/baseline complexity for two
	// hash-divergent bodies to still count as equivalent.
	ComplexityRatioMin float64
	ComplexityRatioMax float64
}

// DefaultOptions returns the standard equivalence window.
func DefaultOptions() Options {
	return Options{ComplexityRatioMin: 0.8, ComplexityRatioMax: 1.2}
}
