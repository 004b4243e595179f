package extractor

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"semgate/internal/ast"
)

// complexity counts 1 + decision points: conditionals, loops, case clauses,
// ternaries, catch clauses, and each short-circuit boolean operator.
func complexity(body *sitter.Node) int {
	count := 1
	if body == nil {
		return count
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeIfStatement, ast.NodeForStatement, ast.NodeForInStatement,
				ast.NodeWhileStatement, ast.NodeDoStatement, ast.NodeSwitchCase,
				ast.NodeTernaryExpression, ast.NodeCatchClause:
				count++
			case ast.NodeBinaryExpression:
				if op := child.ChildByFieldName("operator"); op != nil {
					if t := op.Type(); t == "&&" || t == "||" || t == "??" {
						count++
					}
				}
			}
			walk(child)
		}
	}
	walk(body)
	return count
}

// localBindings collects every name declared inside the unit: parameters,
// variable declarators, and nested function declarations.
func localBindings(tree *ast.Tree, fn *sitter.Node, params []Param) map[string]bool {
	locals := make(map[string]bool)
	for _, p := range params {
		locals[p.Name] = true
	}
	locals["this"] = true

	body := functionBody(fn)
	if body == nil {
		return locals
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeVariableDeclarator:
				if name := child.ChildByFieldName("name"); name != nil {
					collectPatternNames(tree, name, locals)
				}
			case ast.NodeFunctionDeclaration, ast.NodeGeneratorFunctionDecl:
				if name := child.ChildByFieldName("name"); name != nil {
					locals[tree.Text(name)] = true
				}
			case ast.NodeCatchClause:
				if p := child.ChildByFieldName("parameter"); p != nil {
					collectPatternNames(tree, p, locals)
				}
			case ast.NodeFormalParameters:
				// nested function parameters count as local to the outer scan
				for j := 0; j < int(child.NamedChildCount()); j++ {
					collectPatternNames(tree, child.NamedChild(j), locals)
				}
			}
			walk(child)
		}
	}
	walk(body)
	return locals
}

// collectPatternNames adds every identifier bound by a declaration pattern.
func collectPatternNames(tree *ast.Tree, pattern *sitter.Node, into map[string]bool) {
	switch pattern.Type() {
	case ast.NodeIdentifier, "shorthand_property_identifier_pattern":
		into[tree.Text(pattern)] = true
		return
	case ast.NodeAssignmentPattern:
		if l := pattern.ChildByFieldName("left"); l != nil {
			collectPatternNames(tree, l, into)
		}
		return
	}
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		collectPatternNames(tree, pattern.NamedChild(i), into)
	}
}

// dependencies collects every call target and non-local member-access root
// referenced in the body, excluding locally declared bindings and the unit's
// own name. The result is sorted and deduplicated.
func dependencies(tree *ast.Tree, body *sitter.Node, locals map[string]bool, self string) []string {
	if body == nil {
		return nil
	}
	seen := make(map[string]bool)

	add := func(name string) {
		if name == "" || name == self || locals[name] {
			return
		}
		seen[name] = true
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeCallExpression, ast.NodeNewExpression:
				callee := child.ChildByFieldName("function")
				if callee == nil {
					callee = child.ChildByFieldName("constructor")
				}
				if callee != nil {
					switch callee.Type() {
					case ast.NodeIdentifier:
						add(tree.Text(callee))
					case ast.NodeMemberExpression:
						add(memberRoot(tree, callee))
					}
				}
			case ast.NodeMemberExpression:
				add(memberRoot(tree, child))
			}
			walk(child)
		}
	}
	walk(body)

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

// memberRoot resolves a member-expression chain to its leftmost identifier.
func memberRoot(tree *ast.Tree, member *sitter.Node) string {
	n := member
	for n != nil {
		switch n.Type() {
		case ast.NodeMemberExpression, ast.NodeSubscriptExpression:
			n = n.ChildByFieldName("object")
		case ast.NodeCallExpression:
			n = n.ChildByFieldName("function")
		case ast.NodeIdentifier:
			return tree.Text(n)
		default:
			return ""
		}
	}
	return ""
}

// hasSideEffects reports whether the body contains a call matching the
// side-effect vocabulary, an assignment to a non-local binding, or a mutation
// of a UI-surface property. Documented heuristic, not a proof.
func hasSideEffects(tree *ast.Tree, body *sitter.Node, locals map[string]bool, vocab Vocabulary) bool {
	if body == nil {
		return false
	}
	found := false

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found {
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeCallExpression:
				callee := child.ChildByFieldName("function")
				if callee != nil {
					leaf := calleeLeafName(tree, callee)
					if IsSetterCall(leaf) || vocab.Contains(leaf) {
						found = true
						return
					}
					if callee.Type() == ast.NodeMemberExpression && vocab.Contains(memberRoot(tree, callee)) {
						found = true
						return
					}
				}
			case ast.NodeAssignmentExpression, ast.NodeAugmentedAssignment:
				left := child.ChildByFieldName("left")
				if left == nil {
					break
				}
				switch left.Type() {
				case ast.NodeIdentifier:
					if !locals[tree.Text(left)] {
						found = true
						return
					}
				case ast.NodeMemberExpression, ast.NodeSubscriptExpression:
					root := memberRoot(tree, left)
					if vocab.Contains(root) || (root != "" && !locals[root] && root != "this") {
						found = true
						return
					}
				}
			}
			walk(child)
		}
	}
	walk(body)
	return found
}

// inferReturnKind classifies the return behavior of a body: "" for no return
// statements, "undefined" for bare returns only, "value" otherwise. Nested
// function bodies are not descended into.
func inferReturnKind(body *sitter.Node) string {
	if body == nil {
		return ""
	}
	if body.Type() != ast.NodeStatementBlock {
		// concise arrow body is an expression
		return "value"
	}

	kind := ""
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if isFunctionNode(child.Type()) || child.Type() == ast.NodeFunctionDeclaration ||
				child.Type() == ast.NodeGeneratorFunctionDecl || child.Type() == ast.NodeMethodDefinition {
				continue
			}
			if child.Type() == "return_statement" {
				if child.NamedChildCount() > 0 {
					kind = "value"
				} else if kind == "" {
					kind = "undefined"
				}
			}
			walk(child)
		}
	}
	walk(body)
	return kind
}
