package detect

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"semgate/internal/ast"
)

// Events collects every event binding in the artifact: declarative JSX
// attributes using the reserved "on" prefix, and explicit two-argument
// event-registration calls (target.addEventListener("click", fn)).
func Events(tree *ast.Tree) []string {
	seen := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeJSXAttribute:
				name := attributeName(tree, child)
				if isEventAttribute(name) {
					seen[name] = true
				}
			case ast.NodeCallExpression:
				if name := registrationEvent(tree, child); name != "" {
					seen[name] = true
				}
			}
			walk(child)
		}
	}
	walk(tree.Root)

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// EventsPreserved requires every baseline binding to exist in the candidate
// set. There is no partial credit.
func EventsPreserved(baseline, candidate []string) (bool, []string) {
	have := make(map[string]bool, len(candidate))
	for _, name := range candidate {
		have[name] = true
	}
	var missing []string
	for _, name := range baseline {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return len(missing) == 0, missing
}

// isEventAttribute matches the declarative event-binding convention: an "on"
// prefix followed by an uppercase letter (onClick) or a hyphen (on-click).
func isEventAttribute(name string) bool {
	if !strings.HasPrefix(name, "on") || len(name) < 3 {
		return false
	}
	c := name[2]
	return (c >= 'A' && c <= 'Z') || c == '-'
}

func attributeName(tree *ast.Tree, attr *sitter.Node) string {
	for i := 0; i < int(attr.ChildCount()); i++ {
		c := attr.Child(i)
		if c.Type() == ast.NodePropertyIdentifier || c.Type() == "jsx_attribute_name" {
			return tree.Text(c)
		}
	}
	if attr.NamedChildCount() > 0 {
		return tree.Text(attr.NamedChild(0))
	}
	return ""
}

// registrationEvent extracts the event name from a two-argument registration
// call whose first argument is a string literal.
func registrationEvent(tree *ast.Tree, call *sitter.Node) string {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != ast.NodeMemberExpression {
		return ""
	}
	prop := callee.ChildByFieldName("property")
	if prop == nil || tree.Text(prop) != "addEventListener" {
		return ""
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() < 2 {
		return ""
	}
	first := args.NamedChild(0)
	if first.Type() != ast.NodeString {
		return ""
	}
	for i := 0; i < int(first.ChildCount()); i++ {
		if c := first.Child(i); c.Type() == ast.NodeStringFragment {
			return tree.Text(c)
		}
	}
	return ""
}
