package detect

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"semgate/internal/ast"
	"semgate/internal/extractor"
)

// ValidationFacts summarizes the validation logic found in one artifact.
// The guard-text heuristic is a coarse proxy: it finds conditionals whose
// condition mentions a validation word, plus explicit throw statements.
type ValidationFacts struct {
	Guards []string `json:"guards,omitempty"`
	Throws int      `json:"throws"`
}

// Count is the total number of validation sites.
func (f ValidationFacts) Count() int {
	return len(f.Guards) + f.Throws
}

// Validation scans the artifact for validation logic using the given
// vocabulary (DefaultValidationGuards when the caller has no override).
func Validation(tree *ast.Tree, vocab extractor.Vocabulary) ValidationFacts {
	var facts ValidationFacts

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeIfStatement, ast.NodeTernaryExpression:
				if guard := conditionOf(tree, child); guardMatches(guard, vocab) {
					facts.Guards = append(facts.Guards, extractor.NormalizeBody(guard))
				}
			case ast.NodeThrowStatement:
				facts.Throws++
			}
			walk(child)
		}
	}
	walk(tree.Root)

	sort.Strings(facts.Guards)
	return facts
}

// ValidationPreserved compares baseline and candidate facts under the
// configured policy: count equality by default, normalized-guard matching
// under MatchByNames.
func ValidationPreserved(baseline, candidate ValidationFacts, policy MatchPolicy) bool {
	if policy == MatchByNames {
		have := make(map[string]int, len(candidate.Guards))
		for _, g := range candidate.Guards {
			have[g]++
		}
		for _, g := range baseline.Guards {
			if have[g] == 0 {
				return false
			}
			have[g]--
		}
		return candidate.Throws >= baseline.Throws
	}
	return baseline.Count() == candidate.Count()
}

func conditionOf(tree *ast.Tree, node *sitter.Node) string {
	if c := node.ChildByFieldName("condition"); c != nil {
		return tree.Text(c)
	}
	return ""
}

func guardMatches(guard string, vocab extractor.Vocabulary) bool {
	if guard == "" {
		return false
	}
	lower := strings.ToLower(guard)
	for _, word := range vocab.Words {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
