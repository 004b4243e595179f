package compare

import (
	"fmt"
	"sort"

	"semgate/internal/extractor"
)

// Compare pairs units between two program representations and classifies
// every change. Named units pair by exact name, duplicates positionally
// within their name group; anonymous callbacks pair by positional index
// within the same enclosing unit.
func Compare(baseline, candidate *extractor.ProgramRepresentation, opts Options) []Record {
	if opts.ComplexityRatioMax == 0 {
		opts = DefaultOptions()
	}

	var records []Record

	// 1. Named units, baseline side. Pairing the whole name group means a
	// redeclared name cannot mask the removal of a later duplicate.
	seen := make(map[string]bool)
	for _, b := range baseline.NamedUnits() {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true

		bs := namedGroup(baseline, b.Name)
		cs := namedGroup(candidate, b.Name)
		for i, bu := range bs {
			if i >= len(cs) {
				records = append(records, Record{
					UnitName:   bu.Name,
					ChangeType: ChangeRemoved,
					Severity:   AssessSeverity(bu),
					Baseline:   bu,
				})
				continue
			}
			records = append(records, classify(bu, cs[i], opts))
		}
		for i := len(bs); i < len(cs); i++ {
			records = append(records, Record{
				UnitName:   cs[i].Name,
				ChangeType: ChangeAdded,
				Severity:   SeverityLow,
				Candidate:  cs[i],
			})
		}
	}

	// 2. Named units only in candidate are informational.
	for _, c := range candidate.NamedUnits() {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		records = append(records, Record{
			UnitName:   c.Name,
			ChangeType: ChangeAdded,
			Severity:   SeverityLow,
			Candidate:  c,
		})
	}

	// 3. Anonymous callbacks, grouped by enclosing unit.
	records = append(records, compareCallbacks(baseline, candidate, opts)...)

	return records
}

// namedGroup returns the non-anonymous units sharing a name, in declaration
// order.
func namedGroup(p *extractor.ProgramRepresentation, name string) []*extractor.SourceUnit {
	var out []*extractor.SourceUnit
	for _, u := range p.UnitsNamed(name) {
		if !u.Anonymous {
			out = append(out, u)
		}
	}
	return out
}

// classify applies the change taxonomy to one matched pair.
func classify(b, c *extractor.SourceUnit, opts Options) Record {
	rec := Record{UnitName: b.Name, Baseline: b, Candidate: c}

	if b.Signature != c.Signature {
		rec.ChangeType = ChangeSignature
		rec.Severity = SeverityHigh
		rec.Reason = fmt.Sprintf("signature %q became %q", b.Signature, c.Signature)
		return rec
	}

	if b.ContentHash == c.ContentHash {
		rec.ChangeType = ChangeUnchanged
		rec.Severity = SeverityLow
		return rec
	}

	// Hashes differ under an identical signature: run the semantic
	// equivalence check before reporting an implementation change.
	if equivalent(b, c, opts) {
		rec.ChangeType = ChangeUnchanged
		rec.Severity = SeverityLow
		rec.Reason = "body text changed but metrics are equivalent"
		return rec
	}

	rec.ChangeType = ChangeImplementation
	rec.Severity = AssessSeverity(b)
	return rec
}

// equivalent is the coarse semantic-equivalence check: it suppresses an
// implementation-changed record when parameter count, return kind, complexity
// ratio, and side-effect flag all agree.
func equivalent(b, c *extractor.SourceUnit, opts Options) bool {
	if len(b.Parameters) != len(c.Parameters) {
		return false
	}
	if !compatibleReturn(b.ReturnType, c.ReturnType) {
		return false
	}
	if b.HasSideEffects != c.HasSideEffects {
		return false
	}
	base := b.Complexity
	if base < 1 {
		base = 1
	}
	ratio := float64(c.Complexity) / float64(base)
	return ratio >= opts.ComplexityRatioMin && ratio <= opts.ComplexityRatioMax
}

// compatibleReturn treats "no value" and "absent value" as interchangeable.
func compatibleReturn(a, b string) bool {
	if a == b {
		return true
	}
	compatible := map[string]bool{"": true, "undefined": true, "void": true}
	return compatible[a] && compatible[b]
}

// compareCallbacks pairs anonymous units positionally per enclosing unit.
// A count mismatch flags every record of that group low-confidence.
func compareCallbacks(baseline, candidate *extractor.ProgramRepresentation, opts Options) []Record {
	enclosings := make(map[string]bool)
	for _, u := range baseline.Units {
		if u.Anonymous {
			enclosings[u.Enclosing] = true
		}
	}
	for _, u := range candidate.Units {
		if u.Anonymous {
			enclosings[u.Enclosing] = true
		}
	}

	keys := make([]string, 0, len(enclosings))
	for k := range enclosings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var records []Record
	for _, enclosing := range keys {
		bs := baseline.CallbacksIn(enclosing)
		cs := candidate.CallbacksIn(enclosing)
		lowConfidence := len(bs) != len(cs)

		for i, b := range bs {
			if i >= len(cs) {
				records = append(records, Record{
					UnitName:      b.Name,
					ChangeType:    ChangeRemoved,
					Severity:      AssessSeverity(b),
					Baseline:      b,
					LowConfidence: lowConfidence,
				})
				continue
			}
			rec := classify(b, cs[i], opts)
			rec.UnitName = b.Name
			rec.LowConfidence = lowConfidence
			records = append(records, rec)
		}
		for i := len(bs); i < len(cs); i++ {
			records = append(records, Record{
				UnitName:      cs[i].Name,
				ChangeType:    ChangeAdded,
				Severity:      SeverityLow,
				Candidate:     cs[i],
				LowConfidence: lowConfidence,
			})
		}
	}
	return records
}
