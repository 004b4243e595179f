package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgate/internal/extractor"
)

func program(units ...*extractor.SourceUnit) *extractor.ProgramRepresentation {
	pr := &extractor.ProgramRepresentation{ArtifactID: "test.js"}
	for _, u := range units {
		pr.AddUnit(u)
	}
	return pr
}

func unit(name, hash string, complexity int) *extractor.SourceUnit {
	return &extractor.SourceUnit{
		Name:          name,
		Kind:          extractor.KindFunction,
		Signature:     name + "(a, b)",
		Parameters:    []extractor.Param{{Name: "a"}, {Name: "b"}},
		ReturnType:    "value",
		Complexity:    complexity,
		ContentHash:   hash,
		CallbackIndex: -1,
	}
}

func callback(name, enclosing string, index int, hash string) *extractor.SourceUnit {
	u := unit(name, hash, 1)
	u.Kind = extractor.KindCallback
	u.Anonymous = true
	u.Enclosing = enclosing
	u.CallbackIndex = index
	return u
}

func TestCompare_RemovedAndAdded(t *testing.T) {
	removed := unit("checkout", "h1", 2)
	removed.HasSideEffects = true
	baseline := program(removed, unit("total", "h2", 1))
	candidate := program(unit("total", "h2", 1), unit("fresh", "h3", 1))

	records := Compare(baseline, candidate, DefaultOptions())
	byName := indexRecords(records)

	t.Run("Removed unit keeps baseline severity", func(t *testing.T) {
		rec := byName["checkout"]
		require.NotNil(t, rec)
		assert.Equal(t, ChangeRemoved, rec.ChangeType)
		assert.Equal(t, SeverityCritical, rec.Severity)
	})

	t.Run("Added unit is informational", func(t *testing.T) {
		rec := byName["fresh"]
		require.NotNil(t, rec)
		assert.Equal(t, ChangeAdded, rec.ChangeType)
		assert.Equal(t, SeverityLow, rec.Severity)
	})

	t.Run("Untouched unit is unchanged", func(t *testing.T) {
		rec := byName["total"]
		require.NotNil(t, rec)
		assert.Equal(t, ChangeUnchanged, rec.ChangeType)
	})
}

func TestCompare_SignatureChange(t *testing.T) {
	b := unit("applyDiscount", "h1", 3)
	c := unit("applyDiscount", "h1", 3)
	c.Signature = "applyDiscount(a, b, rate)"
	c.Parameters = append(c.Parameters, extractor.Param{Name: "rate"})

	records := Compare(program(b), program(c), DefaultOptions())
	require.Len(t, records, 1)
	assert.Equal(t, ChangeSignature, records[0].ChangeType)
	assert.Equal(t, SeverityHigh, records[0].Severity)
	assert.Contains(t, records[0].Reason, "applyDiscount(a, b)")
}

func TestCompare_SemanticEquivalence(t *testing.T) {
	t.Run("Equivalent metrics suppress the change", func(t *testing.T) {
		b := unit("normalize", "h1", 5)
		c := unit("normalize", "h2", 5)

		records := Compare(program(b), program(c), DefaultOptions())
		require.Len(t, records, 1)
		assert.Equal(t, ChangeUnchanged, records[0].ChangeType)
		assert.NotEmpty(t, records[0].Reason)
	})

	t.Run("Complexity ratio outside window breaks equivalence", func(t *testing.T) {
		// 3/2 = 1.5 exceeds the 1.2 ceiling, but the simple baseline
		// keeps the severity low.
		b := unit("calculateTotal", "h1", 2)
		c := unit("calculateTotal", "h2", 3)

		records := Compare(program(b), program(c), DefaultOptions())
		require.Len(t, records, 1)
		assert.Equal(t, ChangeImplementation, records[0].ChangeType)
		assert.Equal(t, SeverityLow, records[0].Severity)
	})

	t.Run("Side effect flip breaks equivalence", func(t *testing.T) {
		b := unit("render", "h1", 4)
		c := unit("render", "h2", 4)
		c.HasSideEffects = true

		records := Compare(program(b), program(c), DefaultOptions())
		require.Len(t, records, 1)
		assert.Equal(t, ChangeImplementation, records[0].ChangeType)
	})

	t.Run("Bare return and no return are compatible", func(t *testing.T) {
		b := unit("reset", "h1", 1)
		b.ReturnType = ""
		c := unit("reset", "h2", 1)
		c.ReturnType = "undefined"

		records := Compare(program(b), program(c), DefaultOptions())
		require.Len(t, records, 1)
		assert.Equal(t, ChangeUnchanged, records[0].ChangeType)
	})
}

func TestCompare_DuplicateNamesPairPositionally(t *testing.T) {
	baseline := program(
		unit("handler", "h1", 1),
		unit("handler", "h2", 1),
	)
	candidate := program(unit("handler", "h1", 1))

	records := Compare(baseline, candidate, DefaultOptions())
	require.Len(t, records, 2)

	assert.Equal(t, ChangeUnchanged, records[0].ChangeType)
	assert.Equal(t, ChangeRemoved, records[1].ChangeType, "dropping a later duplicate is still a removal")
	assert.Equal(t, "handler", records[1].UnitName)
}

func TestCompare_CallbacksPositional(t *testing.T) {
	baseline := program(
		unit("App", "hA", 1),
		callback("App/useEffect#0", "App", 0, "cb1"),
		callback("App/useEffect#1", "App", 1, "cb2"),
	)
	candidate := program(
		unit("App", "hA", 1),
		callback("App/useEffect#0", "App", 0, "cb1"),
	)

	records := Compare(baseline, candidate, DefaultOptions())
	byName := indexRecords(records)

	first := byName["App/useEffect#0"]
	require.NotNil(t, first)
	assert.Equal(t, ChangeUnchanged, first.ChangeType)
	assert.True(t, first.LowConfidence, "count mismatch flags the whole group")

	second := byName["App/useEffect#1"]
	require.NotNil(t, second)
	assert.Equal(t, ChangeRemoved, second.ChangeType)
	assert.True(t, second.LowConfidence)
}

func TestAssessSeverity(t *testing.T) {
	cases := []struct {
		name string
		unit *extractor.SourceUnit
		want Severity
	}{
		{"side effects are critical", &extractor.SourceUnit{HasSideEffects: true}, SeverityCritical},
		{"deep complexity is critical", &extractor.SourceUnit{Complexity: 11}, SeverityCritical},
		{"wide dependencies are high", &extractor.SourceUnit{Complexity: 3, Dependencies: []string{"a", "b", "c", "d", "e", "f"}}, SeverityHigh},
		{"moderate complexity is medium", &extractor.SourceUnit{Complexity: 6}, SeverityMedium},
		{"simple unit is low", &extractor.SourceUnit{Complexity: 2}, SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AssessSeverity(tc.unit))
		})
	}
}

func TestSeverity_AtLeast(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityMedium.AtLeast(SeverityHigh))
	assert.False(t, SeverityLow.AtLeast(SeverityMedium))
}

func indexRecords(records []Record) map[string]*Record {
	out := make(map[string]*Record, len(records))
	for i := range records {
		out[records[i].UnitName] = &records[i]
	}
	return out
}
