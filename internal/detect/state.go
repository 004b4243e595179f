package detect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"semgate/internal/ast"
	"semgate/internal/extractor"
)

// State collects declared reactive state bindings: destructured useState /
// useReducer declarations and their declaration kind.
func State(tree *ast.Tree) []StateBinding {
	var bindings []StateBinding

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == ast.NodeVariableDeclarator {
				if b, ok := stateDeclarator(tree, child); ok {
					bindings = append(bindings, b)
				}
			}
			walk(child)
		}
	}
	walk(tree.Root)
	return bindings
}

// StatePreserved requires every baseline binding key to exist in candidate.
// Kind changes are tolerated unless strictKinds is set.
func StatePreserved(baseline, candidate []StateBinding, strictKinds bool) (bool, []string) {
	have := make(map[string]StateKind, len(candidate))
	for _, b := range candidate {
		have[b.Name] = b.Kind
	}
	var missing []string
	for _, b := range baseline {
		kind, ok := have[b.Name]
		if !ok {
			missing = append(missing, b.Name)
			continue
		}
		if strictKinds && kind != b.Kind {
			missing = append(missing, b.Name)
		}
	}
	return len(missing) == 0, missing
}

// stateDeclarator matches `const [count, setCount] = useState(0)` and
// `const [state, dispatch] = useReducer(reducer, init)` shapes, plus plain
// identifier bindings of a state declarator call.
func stateDeclarator(tree *ast.Tree, decl *sitter.Node) (StateBinding, bool) {
	value := decl.ChildByFieldName("value")
	if value == nil || value.Type() != ast.NodeCallExpression {
		return StateBinding{}, false
	}
	callee := value.ChildByFieldName("function")
	if callee == nil {
		return StateBinding{}, false
	}

	var calleeName string
	switch callee.Type() {
	case ast.NodeIdentifier:
		calleeName = tree.Text(callee)
	case ast.NodeMemberExpression:
		if p := callee.ChildByFieldName("property"); p != nil {
			calleeName = tree.Text(p)
		}
	}

	kindWord, ok := extractor.DefaultStateDeclarators[calleeName]
	if !ok {
		return StateBinding{}, false
	}
	kind := StateSimple
	if kindWord == "reducer" {
		kind = StateReducer
	}

	name := decl.ChildByFieldName("name")
	if name == nil {
		return StateBinding{}, false
	}
	switch name.Type() {
	case ast.NodeArrayPattern:
		// the first element is the state cell; the second is its setter
		if name.NamedChildCount() > 0 {
			return StateBinding{Name: tree.Text(name.NamedChild(0)), Kind: kind}, true
		}
	case ast.NodeIdentifier:
		return StateBinding{Name: tree.Text(name), Kind: kind}, true
	}
	return StateBinding{}, false
}
