package rules

import (
	"context"
	"fmt"

	"semgate/internal/extractor"
	"semgate/internal/graph"
)

// Result aggregates one run of the validator over a batch.
type Result struct {
	Issues       []Issue       `json:"issues"`
	SkippedRules []SkippedRule `json:"skipped_rules,omitempty"`
	RulesRun     int           `json:"rules_run"`
	RulesPassed  int           `json:"rules_passed"`
}

// PassRate is the fraction of executed rule applications that produced no
// error-severity issue, in [0, 1].
func (r *Result) PassRate() float64 {
	if r.RulesRun == 0 {
		return 1
	}
	return float64(r.RulesPassed) / float64(r.RulesRun)
}

// Engine runs a configured rule set over one or more program representations.
type Engine struct {
	rules []Rule
	cfg   Config
}

// NewEngine validates the configuration and assembles the active rule set:
// built-ins plus any custom rules. Invalid configuration fails before any
// validation work starts.
func NewEngine(cfg Config, custom ...Rule) (*Engine, error) {
	for _, cat := range cfg.EnabledCategories {
		if !knownCategories[cat] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown category %q", cat)}
		}
	}

	all := append(BuiltinRules(), custom...)
	seen := make(map[string]bool, len(all))
	for _, r := range all {
		if r.ID == "" {
			return nil, &ConfigurationError{Reason: "rule with empty id"}
		}
		if r.Check == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %s has no predicate", r.ID)}
		}
		if seen[r.ID] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate rule id %s", r.ID)}
		}
		seen[r.ID] = true
	}
	for _, id := range cfg.DisabledRules {
		if !seen[id] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("disabled rule %s does not exist", id)}
		}
	}
	for _, id := range cfg.EnabledRules {
		if !seen[id] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("enabled rule %s does not exist", id)}
		}
	}

	return &Engine{rules: all, cfg: cfg}, nil
}

// Run validates a batch. Every enabled per-artifact rule runs against every
// artifact; cross-artifact rules run once with the full batch in context.
func (e *Engine) Run(ctx context.Context, batch []*extractor.ProgramRepresentation) *Result {
	rc := &Context{
		Batch:   batch,
		Graph:   graph.Build(batch),
		Globals: DefaultGlobals(),
	}

	result := &Result{}
	for _, rule := range e.rules {
		if !e.enabled(rule) {
			continue
		}
		if rule.CrossArtifact {
			e.apply(ctx, rule, nil, rc, result)
			continue
		}
		for _, artifact := range batch {
			e.apply(ctx, rule, artifact, rc, result)
		}
	}
	return result
}

// apply executes one rule application, isolating panics and errors.
func (e *Engine) apply(ctx context.Context, rule Rule, artifact *extractor.ProgramRepresentation, rc *Context, result *Result) {
	artifactID := ""
	if artifact != nil {
		artifactID = artifact.ArtifactID
	}

	issues, err := e.checkIsolated(ctx, rule, artifact, rc)
	if err != nil {
		result.SkippedRules = append(result.SkippedRules, SkippedRule{
			RuleID:     rule.ID,
			ArtifactID: artifactID,
			Reason:     err.Error(),
		})
		return
	}

	result.RulesRun++
	failed := false
	for i := range issues {
		if issues[i].ID == "" {
			issues[i].ID = fmt.Sprintf("%s-%d", rule.ID, len(result.Issues)+i+1)
		}
		if issues[i].RuleID == "" {
			issues[i].RuleID = rule.ID
		}
		if issues[i].Severity == SeverityError {
			failed = true
		}
	}
	if !failed {
		result.RulesPassed++
	}
	result.Issues = append(result.Issues, issues...)
}

// checkIsolated runs the predicate, converting a panic into an error so one
// misbehaving rule cannot take down the batch.
func (e *Engine) checkIsolated(ctx context.Context, rule Rule, artifact *extractor.ProgramRepresentation, rc *Context) (issues []Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()
	return rule.Check(ctx, artifact, rc)
}

// enabled applies strict mode, category toggles, per-rule disables, and the
// rule's own default-enabled flag.
func (e *Engine) enabled(rule Rule) bool {
	if e.cfg.Strict && rule.Severity != SeverityError {
		return false
	}
	for _, id := range e.cfg.DisabledRules {
		if id == rule.ID {
			return false
		}
	}
	if len(e.cfg.EnabledCategories) > 0 {
		match := false
		for _, want := range e.cfg.EnabledCategories {
			for _, have := range rule.Categories {
				if want == have {
					match = true
				}
			}
		}
		if !match {
			return false
		}
	}
	for _, id := range e.cfg.EnabledRules {
		if id == rule.ID {
			return true
		}
	}
	return rule.EnabledByDefault
}
