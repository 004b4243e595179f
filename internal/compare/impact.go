package compare

import "semgate/internal/extractor"

// Severity thresholds for the impact assessment.
const (
	criticalComplexity = 10
	mediumComplexity   = 5
	highDependencies   = 5
)

// AssessSeverity scores the regression impact of losing or changing a unit.
// It is applied to the baseline unit's metrics for both removed and
// implementation-changed records, so the assessment reflects what was at
// stake before the transformation.
func AssessSeverity(u *extractor.SourceUnit) Severity {
	switch {
	case u.HasSideEffects || u.Complexity > criticalComplexity:
		return SeverityCritical
	case len(u.Dependencies) > highDependencies:
		return SeverityHigh
	case u.Complexity > mediumComplexity:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
