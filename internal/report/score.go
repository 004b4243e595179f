package report

import (
	"time"

	"semgate/internal/compare"
	"semgate/internal/detect"
	"semgate/internal/extractor"
	"semgate/internal/rules"
)

// BuildVerdict computes the equivalence verdict for one pair from the
// comparator records, the detector results, and the rule-validator outcome.
func BuildVerdict(
	baseline, candidate *extractor.ProgramRepresentation,
	records []compare.Record,
	detection detect.Result,
	ruleResult *rules.Result,
	opts Options,
) *Verdict {
	if opts.SeverityThreshold == "" {
		opts = DefaultOptions()
	}

	v := &Verdict{
		ComparisonRecords:        records,
		Detection:                detection,
		EventHandlersPreserved:   detection.EventHandlersPreserved,
		ValidationLogicPreserved: detection.ValidationLogicPreserved,
		StateManagementPreserved: detection.StateManagementPreserved,
	}
	if ruleResult != nil {
		v.ValidationIssues = ruleResult.Issues
		v.SkippedRules = ruleResult.SkippedRules
		v.Score = ruleResult.PassRate() * 100
	} else {
		v.Score = 100
	}

	// 1. Functions: any removed unit fails the gate.
	for _, rec := range records {
		if rec.ChangeType == compare.ChangeRemoved {
			v.MissingFunctions = append(v.MissingFunctions, rec.UnitName)
		}
	}
	v.FunctionsPreserved = len(v.MissingFunctions) == 0

	// 2. Semantic equivalence: no signature change, no implementation change
	// at or above the configured severity threshold.
	v.SemanticEquivalence = true
	for _, rec := range records {
		if rec.ChangeType == compare.ChangeSignature {
			v.SemanticEquivalence = false
		}
		if rec.ChangeType == compare.ChangeImplementation && rec.Severity.AtLeast(opts.SeverityThreshold) {
			v.SemanticEquivalence = false
		}
	}

	// 3. Structural differences: a missing export is critical.
	for _, name := range baseline.Exports {
		if !candidate.HasExport(name) {
			v.MissingExports = append(v.MissingExports, name)
		}
	}

	v.Preserved = v.FunctionsPreserved &&
		v.SemanticEquivalence &&
		v.EventHandlersPreserved &&
		v.ValidationLogicPreserved &&
		v.StateManagementPreserved &&
		len(v.MissingExports) == 0

	return v
}

// BuildBatch assembles the batch report and its aggregate score. Pairs that
// failed to parse are counted but excluded from the aggregate.
func BuildBatch(reports []*Report) *BatchReport {
	b := &BatchReport{Reports: reports, GeneratedAt: time.Now()}

	var sum float64
	for _, r := range reports {
		if r.Failed() {
			b.PairsFailed++
			continue
		}
		b.PairsVerified++
		if r.Verdict != nil {
			sum += r.Verdict.Score
		}
	}
	if b.PairsVerified > 0 {
		b.AggregateScore = sum / float64(b.PairsVerified)
	}
	return b
}
