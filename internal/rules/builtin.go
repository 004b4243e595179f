package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"semgate/internal/extractor"
	"semgate/internal/graph"
)

// DefaultGlobals are ambient symbols treated as resolvable without a
// declaration: host objects and the usual runtime builtins.
func DefaultGlobals() map[string]bool {
	names := []string{
		"console", "window", "document", "alert", "confirm", "prompt",
		"localStorage", "sessionStorage", "fetch", "navigator", "history",
		"setTimeout", "setInterval", "clearTimeout", "clearInterval",
		"Math", "JSON", "Object", "Array", "String", "Number", "Boolean",
		"Date", "Promise", "Error", "TypeError", "RangeError", "Map", "Set",
		"RegExp", "Symbol", "parseInt", "parseFloat", "isNaN", "undefined",
		"React", "require",
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

var artifactNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._/-]*$`)

// BuiltinRules returns the standard rule set.
func BuiltinRules() []Rule {
	return []Rule{
		{
			ID:               "artifact-naming",
			Name:             "Artifact naming pattern",
			Severity:         SeverityWarning,
			EnabledByDefault: true,
			Categories:       []string{CategoryStructure},
			Check:            checkArtifactNaming,
		},
		{
			ID:               "artifact-non-empty",
			Name:             "Artifact has extractable units",
			Severity:         SeverityError,
			EnabledByDefault: true,
			Categories:       []string{CategoryStructure},
			Check:            checkArtifactNonEmpty,
		},
		{
			ID:               "business-logic-presence",
			Name:             "Artifact contains business logic",
			Severity:         SeverityWarning,
			EnabledByDefault: true,
			Categories:       []string{CategoryStructure, CategoryPreservation},
			Check:            checkBusinessLogic,
		},
		{
			ID:               "artifact-classification",
			Name:             "Artifact type classification",
			Severity:         SeverityInfo,
			EnabledByDefault: true,
			Categories:       []string{CategoryStructure},
			Check:            checkClassification,
		},
		{
			ID:               "dependency-resolvable",
			Name:             "Internal references resolve",
			Severity:         SeverityWarning,
			EnabledByDefault: true,
			Categories:       []string{CategoryDependency},
			Check:            checkDependenciesResolvable,
		},
		{
			ID:               "dependency-cycles",
			Name:             "No dependency cycles",
			Severity:         SeverityError,
			EnabledByDefault: true,
			Categories:       []string{CategoryDependency},
			CrossArtifact:    true,
			Check:            checkDependencyCycles,
		},
		{
			ID:               "complexity-tier",
			Name:             "Unit complexity tiers",
			Severity:         SeverityWarning,
			EnabledByDefault: true,
			Categories:       []string{CategoryPreservation},
			Check:            checkComplexityTiers,
		},
	}
}

func checkArtifactNaming(_ context.Context, artifact *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
	if artifactNameRe.MatchString(artifact.ArtifactID) {
		return nil, nil
	}
	return []Issue{{
		Severity:   SeverityWarning,
		Message:    fmt.Sprintf("artifact id %q does not match the expected naming pattern", artifact.ArtifactID),
		Location:   artifact.ArtifactID,
		Suggestion: "use letters, digits, dots, dashes and slashes, starting with a letter",
	}}, nil
}

func checkArtifactNonEmpty(_ context.Context, artifact *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
	if len(artifact.Units) > 0 {
		return nil, nil
	}
	return []Issue{{
		Severity: SeverityError,
		Message:  "artifact contains no extractable semantic units",
		Location: artifact.ArtifactID,
	}}, nil
}

func checkBusinessLogic(_ context.Context, artifact *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
	for _, u := range artifact.Units {
		if u.Complexity > 1 || u.HasSideEffects {
			return nil, nil
		}
	}
	if len(artifact.Units) == 0 {
		// artifact-non-empty already covers this
		return nil, nil
	}
	return []Issue{{
		Severity:   SeverityWarning,
		Message:    "no unit carries business logic (all units are trivial pass-throughs)",
		Location:   artifact.ArtifactID,
		Suggestion: "verify the transformation did not strip logic bodies",
	}}, nil
}

// checkClassification reports artifacts that cannot be classified as a
// component, module, or script. Informational only.
func checkClassification(_ context.Context, artifact *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
	if classifyArtifact(artifact) != "" {
		return nil, nil
	}
	return []Issue{{
		Severity: SeverityInfo,
		Message:  "artifact type could not be classified",
		Location: artifact.ArtifactID,
	}}, nil
}

// classifyArtifact applies a coarse type classification.
func classifyArtifact(artifact *extractor.ProgramRepresentation) string {
	for _, name := range artifact.Exports {
		if name != "default" && name[0] >= 'A' && name[0] <= 'Z' {
			return "component"
		}
	}
	if len(artifact.Exports) > 0 {
		return "module"
	}
	if len(artifact.Units) > 0 {
		return "script"
	}
	return ""
}

// checkDependenciesResolvable surfaces unresolvable references as issues.
// An unresolved dependency is never an error for the engine itself.
func checkDependenciesResolvable(_ context.Context, artifact *extractor.ProgramRepresentation, rc *Context) ([]Issue, error) {
	imported := make(map[string]bool, len(artifact.ImportedNames))
	for _, n := range artifact.ImportedNames {
		imported[n] = true
	}
	exportedElsewhere := make(map[string]bool)
	for _, p := range rc.Batch {
		if p.ArtifactID == artifact.ArtifactID {
			continue
		}
		for _, e := range p.Exports {
			exportedElsewhere[e] = true
		}
	}

	var issues []Issue
	for _, u := range artifact.Units {
		for _, dep := range u.Dependencies {
			if imported[dep] || rc.Globals[dep] || exportedElsewhere[dep] {
				continue
			}
			if artifact.Unit(dep) != nil {
				continue
			}
			if strings.Contains(dep, "#") {
				continue
			}
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("unit %s references %q, which resolves to no unit, import, or known global", u.Name, dep),
				Location:   fmt.Sprintf("%s:%s", artifact.ArtifactID, u.Name),
				Suggestion: "check for a dropped import or a renamed symbol",
			})
		}
	}
	return issues, nil
}

func checkDependencyCycles(_ context.Context, _ *extractor.ProgramRepresentation, rc *Context) ([]Issue, error) {
	var issues []Issue
	for _, cycle := range rc.Graph.Cycles() {
		issues = append(issues, Issue{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("dependency cycle: %s", graph.FormatCycle(cycle)),
			Location:   cycle[0],
			Suggestion: "break the cycle by extracting the shared pieces into a separate artifact",
		})
	}
	return issues, nil
}

// Complexity tiers for the preservation warnings.
const (
	complexityWarnTier = 10
	complexityInfoTier = 5
)

func checkComplexityTiers(_ context.Context, artifact *extractor.ProgramRepresentation, _ *Context) ([]Issue, error) {
	var issues []Issue
	for _, u := range artifact.Units {
		switch {
		case u.Complexity > complexityWarnTier:
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("unit %s has complexity %d; behavior-preserving verification is less reliable on large units", u.Name, u.Complexity),
				Location:   fmt.Sprintf("%s:%s", artifact.ArtifactID, u.Name),
				Suggestion: "review this unit manually after migration",
			})
		case u.Complexity > complexityInfoTier:
			issues = append(issues, Issue{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("unit %s has complexity %d", u.Name, u.Complexity),
				Location: fmt.Sprintf("%s:%s", artifact.ArtifactID, u.Name),
			})
		}
	}
	return issues, nil
}
