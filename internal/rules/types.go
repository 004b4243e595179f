// Package rules implements the pluggable structural and dependency rule
// validator. Rules run isolated: a failing or panicking rule is recorded in
// SkippedRules and never aborts the batch.
package rules

import (
	"context"
	"fmt"

	"semgate/internal/extractor"
	"semgate/internal/graph"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding produced by a rule.
type Issue struct {
	ID         string   `json:"id"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	RuleID     string   `json:"rule_id"`
	Location   string   `json:"location,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Rule categories.
const (
	CategoryStructure    = "structure"
	CategoryDependency   = "dependency"
	CategoryPreservation = "preservation"
)

// Context carries the batch-wide state a rule predicate may consult. It is
// built once per run and read-only afterwards.
type Context struct {
	// Batch holds every program representation in the run, so cross-artifact
	// rules can resolve references between artifacts.
	Batch []*extractor.ProgramRepresentation

	// Graph is the cross-artifact dependency graph for the batch.
	Graph *graph.Graph

	// Globals are ambient symbols every artifact may reference without
	// declaring them.
	Globals map[string]bool
}

// Rule is one pluggable validation rule.
type Rule struct {
	ID               string
	Name             string
	Severity         Severity
	EnabledByDefault bool
	Categories       []string

	// CrossArtifact rules run once per batch with a nil artifact instead of
	// once per artifact.
	CrossArtifact bool

	// Check is the isolated predicate. Returning an error (or panicking)
	// records the rule in SkippedRules; it never aborts other rules.
	Check func(ctx context.Context, artifact *extractor.ProgramRepresentation, rc *Context) ([]Issue, error)
}

// SkippedRule records a rule that could not complete, with the reason.
type SkippedRule struct {
	RuleID     string `json:"rule_id"`
	ArtifactID string `json:"artifact_id,omitempty"`
	Reason     string `json:"reason"`
}

// Config controls which rules run.
type Config struct {
	// Strict disables every rule whose severity is not error.
	Strict bool `yaml:"strict"`

	// EnabledCategories limits rules to the given categories; empty enables
	// all categories.
	EnabledCategories []string `yaml:"enabled_categories"`

	// DisabledRules switches off individual rule IDs.
	DisabledRules []string `yaml:"disabled_rules"`

	// EnabledRules switches on rules that are off by default.
	EnabledRules []string `yaml:"enabled_rules"`
}

// ConfigurationError reports invalid rule configuration. It is fatal before
// any validation work starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid rule configuration: %s", e.Reason)
}

// knownCategories validates Config.EnabledCategories entries.
var knownCategories = map[string]bool{
	CategoryStructure:    true,
	CategoryDependency:   true,
	CategoryPreservation: true,
}
