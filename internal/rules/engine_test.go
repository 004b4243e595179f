package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgate/internal/extractor"
)

func artifact(id string, units ...*extractor.SourceUnit) *extractor.ProgramRepresentation {
	pr := &extractor.ProgramRepresentation{ArtifactID: id}
	for _, u := range units {
		pr.AddUnit(u)
	}
	return pr
}

func logicUnit(name string) *extractor.SourceUnit {
	return &extractor.SourceUnit{Name: name, Complexity: 3, CallbackIndex: -1}
}

func TestNewEngine_ConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		cfg    Config
		custom []Rule
	}{
		{"unknown category", Config{EnabledCategories: []string{"nonsense"}}, nil},
		{"disabled rule does not exist", Config{DisabledRules: []string{"no-such-rule"}}, nil},
		{"enabled rule does not exist", Config{EnabledRules: []string{"no-such-rule"}}, nil},
		{"custom rule without id", Config{}, []Rule{{Check: okCheck}}},
		{"custom rule without predicate", Config{}, []Rule{{ID: "broken"}}},
		{"duplicate rule id", Config{}, []Rule{{ID: "artifact-naming", Check: okCheck}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine(tc.cfg, tc.custom...)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestEngine_Run(t *testing.T) {
	engine, err := NewEngine(Config{})
	require.NoError(t, err)

	batch := []*extractor.ProgramRepresentation{
		artifact("ok.js", logicUnit("doWork")),
		artifact("empty.js"),
	}

	result := engine.Run(context.Background(), batch)

	t.Run("Empty artifact fails the non-empty rule", func(t *testing.T) {
		var found bool
		for _, issue := range result.Issues {
			if issue.RuleID == "artifact-non-empty" && issue.Location == "empty.js" {
				found = true
				assert.Equal(t, SeverityError, issue.Severity)
			}
		}
		assert.True(t, found)
	})

	t.Run("Issues carry assigned ids", func(t *testing.T) {
		for _, issue := range result.Issues {
			assert.NotEmpty(t, issue.ID)
			assert.NotEmpty(t, issue.RuleID)
		}
	})

	t.Run("Pass rate reflects failed applications", func(t *testing.T) {
		assert.Greater(t, result.RulesRun, 0)
		assert.Less(t, result.PassRate(), 1.0)
		assert.Greater(t, result.PassRate(), 0.0)
	})
}

func TestEngine_RuleIsolation(t *testing.T) {
	panicky := Rule{
		ID:               "panicky",
		Severity:         SeverityWarning,
		EnabledByDefault: true,
		Categories:       []string{CategoryStructure},
		Check: func(_ context.Context, _ *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
			panic("boom")
		},
	}
	failing := Rule{
		ID:               "failing",
		Severity:         SeverityWarning,
		EnabledByDefault: true,
		Categories:       []string{CategoryStructure},
		Check: func(_ context.Context, _ *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
			return nil, errors.New("predicate exploded")
		},
	}

	engine, err := NewEngine(Config{}, panicky, failing)
	require.NoError(t, err)

	batch := []*extractor.ProgramRepresentation{artifact("a.js", logicUnit("work"))}
	result := engine.Run(context.Background(), batch)

	require.Len(t, result.SkippedRules, 2)
	skippedIDs := map[string]string{}
	for _, s := range result.SkippedRules {
		skippedIDs[s.RuleID] = s.Reason
		assert.Equal(t, "a.js", s.ArtifactID)
	}
	assert.Contains(t, skippedIDs["panicky"], "boom")
	assert.Contains(t, skippedIDs["failing"], "predicate exploded")

	// Skipped applications never count as run.
	assert.Greater(t, result.RulesRun, 0)
	for _, issue := range result.Issues {
		assert.NotEqual(t, "panicky", issue.RuleID)
		assert.NotEqual(t, "failing", issue.RuleID)
	}
}

func TestEngine_StrictMode(t *testing.T) {
	engine, err := NewEngine(Config{Strict: true})
	require.NoError(t, err)

	batch := []*extractor.ProgramRepresentation{artifact("a.js", logicUnit("work"))}
	result := engine.Run(context.Background(), batch)

	for _, issue := range result.Issues {
		assert.Equal(t, SeverityError, issue.Severity)
	}
	// Only the two error-severity built-ins remain: non-empty per artifact
	// and the cross-artifact cycle rule.
	assert.Equal(t, 2, result.RulesRun)
}

func TestEngine_CategoryAndRuleToggles(t *testing.T) {
	t.Run("Category filter", func(t *testing.T) {
		engine, err := NewEngine(Config{EnabledCategories: []string{CategoryDependency}})
		require.NoError(t, err)

		batch := []*extractor.ProgramRepresentation{artifact("a.js")}
		result := engine.Run(context.Background(), batch)

		// dependency-resolvable per artifact plus dependency-cycles once.
		assert.Equal(t, 2, result.RulesRun)
	})

	t.Run("Disabled rule is skipped silently", func(t *testing.T) {
		engine, err := NewEngine(Config{DisabledRules: []string{"artifact-non-empty"}})
		require.NoError(t, err)

		batch := []*extractor.ProgramRepresentation{artifact("empty.js")}
		result := engine.Run(context.Background(), batch)

		for _, issue := range result.Issues {
			assert.NotEqual(t, "artifact-non-empty", issue.RuleID)
		}
	})

	t.Run("EnabledRules switches on a default-off custom rule", func(t *testing.T) {
		custom := Rule{
			ID:               "custom-off",
			Severity:         SeverityInfo,
			EnabledByDefault: false,
			Categories:       []string{CategoryStructure},
			Check: func(_ context.Context, _ *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
				return []Issue{{Severity: SeverityInfo, Message: "ran"}}, nil
			},
		}

		off, err := NewEngine(Config{}, custom)
		require.NoError(t, err)
		result := off.Run(context.Background(), []*extractor.ProgramRepresentation{artifact("a.js", logicUnit("w"))})
		for _, issue := range result.Issues {
			assert.NotEqual(t, "custom-off", issue.RuleID)
		}

		on, err := NewEngine(Config{EnabledRules: []string{"custom-off"}}, custom)
		require.NoError(t, err)
		result = on.Run(context.Background(), []*extractor.ProgramRepresentation{artifact("a.js", logicUnit("w"))})
		var ran bool
		for _, issue := range result.Issues {
			if issue.RuleID == "custom-off" {
				ran = true
			}
		}
		assert.True(t, ran)
	})
}

func TestBuiltin_DependencyCycles(t *testing.T) {
	a := artifact("a.js", logicUnit("fa"))
	a.Imports = []string{"./b.js"}
	a.Exports = []string{"fa"}
	b := artifact("b.js", logicUnit("fb"))
	b.Imports = []string{"./a.js"}
	b.Exports = []string{"fb"}

	engine, err := NewEngine(Config{EnabledCategories: []string{CategoryDependency}})
	require.NoError(t, err)

	result := engine.Run(context.Background(), []*extractor.ProgramRepresentation{a, b})

	var cycleIssue *Issue
	for i := range result.Issues {
		if result.Issues[i].RuleID == "dependency-cycles" {
			cycleIssue = &result.Issues[i]
		}
	}
	require.NotNil(t, cycleIssue)
	assert.Equal(t, SeverityError, cycleIssue.Severity)
	assert.Contains(t, cycleIssue.Message, "a.js → b.js → a.js")
}

func TestBuiltin_DependencyResolvable(t *testing.T) {
	unit := logicUnit("handler")
	unit.Dependencies = []string{"console", "helperFn", "mystery"}
	a := artifact("a.js", unit)
	a.ImportedNames = []string{"helperFn"}

	engine, err := NewEngine(Config{EnabledCategories: []string{CategoryDependency}})
	require.NoError(t, err)

	result := engine.Run(context.Background(), []*extractor.ProgramRepresentation{a})

	var messages []string
	for _, issue := range result.Issues {
		if issue.RuleID == "dependency-resolvable" {
			messages = append(messages, issue.Message)
		}
	}
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "mystery")
}

func TestClassifyArtifact(t *testing.T) {
	comp := artifact("c.jsx", logicUnit("App"))
	comp.Exports = []string{"App"}
	assert.Equal(t, "component", classifyArtifact(comp))

	mod := artifact("m.js", logicUnit("helper"))
	mod.Exports = []string{"helper"}
	assert.Equal(t, "module", classifyArtifact(mod))

	script := artifact("s.js", logicUnit("run"))
	assert.Equal(t, "script", classifyArtifact(script))

	assert.Equal(t, "", classifyArtifact(artifact("e.js")))
}

func okCheck(_ context.Context, _ *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
	return nil, nil
}
