package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"semgate/internal/compare"
	"semgate/internal/rules"
)

var (
	passStyle    = color.New(color.FgGreen, color.Bold)
	failStyle    = color.New(color.FgRed, color.Bold)
	warnStyle    = color.New(color.FgHiYellow, color.Bold)
	headerStyle  = color.New(color.FgCyan, color.Bold)
	subtleStyle  = color.New(color.FgWhite)
	unitStyle    = color.New(color.FgYellow)
	skippedStyle = color.New(color.FgMagenta)
)

const (
	glyphPass = "✓"
	glyphFail = "✗"
	glyphWarn = "⚠"
	glyphSkip = "⊘"
)

// Render writes the human-readable form of one report.
func Render(w io.Writer, r *Report) {
	headerStyle.Fprintf(w, "── %s → %s ──\n", r.BaselineID, r.CandidateID)

	if r.Failed() {
		failStyle.Fprintf(w, "%s parse failed: %s\n", glyphFail, r.ParseError)
		subtleStyle.Fprintln(w, "  excluded from scoring; flagged for manual review")
		return
	}

	v := r.Verdict
	if v.Preserved {
		passStyle.Fprintf(w, "%s preserved", glyphPass)
	} else {
		failStyle.Fprintf(w, "%s not preserved", glyphFail)
	}
	fmt.Fprintf(w, "  (score %.0f/100)\n", v.Score)

	renderBool(w, "functions", v.FunctionsPreserved)
	renderBool(w, "event handlers", v.EventHandlersPreserved)
	renderBool(w, "validation logic", v.ValidationLogicPreserved)
	renderBool(w, "state management", v.StateManagementPreserved)
	renderBool(w, "semantic equivalence", v.SemanticEquivalence)

	if len(v.MissingFunctions) > 0 {
		failStyle.Fprintf(w, "  missing functions: %s\n", strings.Join(v.MissingFunctions, ", "))
	}
	if len(v.MissingExports) > 0 {
		failStyle.Fprintf(w, "  missing exports: %s\n", strings.Join(v.MissingExports, ", "))
	}

	renderRecords(w, v.ComparisonRecords)
	renderIssues(w, v.ValidationIssues)
	renderSkipped(w, v.SkippedRules)
}

// RenderBatch writes every report plus the batch summary.
func RenderBatch(w io.Writer, b *BatchReport) {
	for _, r := range b.Reports {
		Render(w, r)
		fmt.Fprintln(w)
	}

	headerStyle.Fprintln(w, "── batch summary ──")
	fmt.Fprintf(w, "  %d verified, %d failed to parse, aggregate score %.0f/100\n",
		b.PairsVerified, b.PairsFailed, b.AggregateScore)
	if b.Passed() {
		passStyle.Fprintf(w, "  %s all pairs preserved\n", glyphPass)
	} else {
		failStyle.Fprintf(w, "  %s regressions detected\n", glyphFail)
	}
}

func renderBool(w io.Writer, label string, ok bool) {
	if ok {
		passStyle.Fprintf(w, "  %s ", glyphPass)
	} else {
		failStyle.Fprintf(w, "  %s ", glyphFail)
	}
	fmt.Fprintln(w, label)
}

// renderRecords lists every change worth reading, grouped by change type.
// Unchanged units are summarized as a count.
func renderRecords(w io.Writer, records []compare.Record) {
	unchanged := 0
	grouped := make(map[compare.ChangeType][]compare.Record)
	for _, rec := range records {
		if rec.ChangeType == compare.ChangeUnchanged {
			unchanged++
			continue
		}
		grouped[rec.ChangeType] = append(grouped[rec.ChangeType], rec)
	}
	if unchanged > 0 {
		subtleStyle.Fprintf(w, "  %d unit(s) unchanged\n", unchanged)
	}

	order := []compare.ChangeType{
		compare.ChangeRemoved,
		compare.ChangeSignature,
		compare.ChangeImplementation,
		compare.ChangeAdded,
	}
	for _, ct := range order {
		for _, rec := range grouped[ct] {
			style := warnStyle
			if rec.Severity == compare.SeverityCritical || rec.Severity == compare.SeverityHigh {
				style = failStyle
			}
			if ct == compare.ChangeAdded {
				style = subtleStyle
			}
			style.Fprintf(w, "  %s %-22s ", changeGlyph(ct), ct)
			unitStyle.Fprint(w, rec.UnitName)
			fmt.Fprintf(w, " [%s]", rec.Severity)
			if rec.LowConfidence {
				warnStyle.Fprint(w, " (low-confidence pairing)")
			}
			if rec.Reason != "" {
				subtleStyle.Fprintf(w, " — %s", rec.Reason)
			}
			fmt.Fprintln(w)
		}
	}
}

// renderIssues prints a grouped issue table per artifact.
func renderIssues(w io.Writer, issues []rules.Issue) {
	if len(issues) == 0 {
		return
	}

	byLocation := make(map[string][]rules.Issue)
	var locations []string
	for _, issue := range issues {
		loc := issue.Location
		if _, ok := byLocation[loc]; !ok {
			locations = append(locations, loc)
		}
		byLocation[loc] = append(byLocation[loc], issue)
	}
	sort.Strings(locations)

	headerStyle.Fprintln(w, "  validation issues:")
	for _, loc := range locations {
		subtleStyle.Fprintf(w, "    %s\n", loc)
		for _, issue := range byLocation[loc] {
			style := subtleStyle
			switch issue.Severity {
			case rules.SeverityError:
				style = failStyle
			case rules.SeverityWarning:
				style = warnStyle
			}
			style.Fprintf(w, "      %-7s ", issue.Severity)
			fmt.Fprintf(w, "%s  (%s)\n", issue.Message, issue.RuleID)
			if issue.Suggestion != "" {
				subtleStyle.Fprintf(w, "              ↳ %s\n", issue.Suggestion)
			}
		}
	}
}

func renderSkipped(w io.Writer, skipped []rules.SkippedRule) {
	if len(skipped) == 0 {
		return
	}
	skippedStyle.Fprintln(w, "  skipped rules:")
	for _, s := range skipped {
		skippedStyle.Fprintf(w, "    %s %s", glyphSkip, s.RuleID)
		if s.ArtifactID != "" {
			fmt.Fprintf(w, " (%s)", s.ArtifactID)
		}
		fmt.Fprintf(w, ": %s\n", s.Reason)
	}
}

func changeGlyph(ct compare.ChangeType) string {
	switch ct {
	case compare.ChangeRemoved:
		return glyphFail
	case compare.ChangeAdded:
		return "+"
	default:
		return glyphWarn
	}
}
