package extractor

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"semgate/internal/ast"
)

// Extractor walks a parse tree and produces metadata-rich semantic units.
// It holds only configuration; all per-call state lives on the stack, so one
// extraction cannot corrupt a concurrently running one.
type Extractor struct {
	sideEffects   Vocabulary
	registrations Vocabulary
}

// NewExtractor creates an extractor with the default vocabularies.
func NewExtractor() *Extractor {
	return &Extractor{
		sideEffects:   DefaultSideEffectCalls(),
		registrations: DefaultRegistrations(),
	}
}

// WithVocabularies overrides the side-effect and registration word lists.
func (e *Extractor) WithVocabularies(sideEffects, registrations Vocabulary) *Extractor {
	e.sideEffects = sideEffects
	e.registrations = registrations
	return e
}

// Extract builds the ProgramRepresentation for one parsed artifact.
func (e *Extractor) Extract(tree *ast.Tree) *ProgramRepresentation {
	pr := &ProgramRepresentation{ArtifactID: tree.ArtifactID}

	root := tree.Root
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case ast.NodeImportStatement:
			e.collectImport(tree, stmt, pr)
		case ast.NodeExportStatement:
			e.collectExport(tree, stmt, pr)
		default:
			e.collectDeclaration(tree, stmt, pr, false)
		}
	}

	// Registrations appearing directly at the top level, outside any unit.
	e.collectCallbacks(tree, root, pr, "", true)

	sort.Strings(pr.Imports)
	sort.Strings(pr.ImportedNames)
	sort.Strings(pr.Exports)
	return pr
}

func (e *Extractor) collectImport(tree *ast.Tree, node *sitter.Node, pr *ProgramRepresentation) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case ast.NodeString:
			pr.Imports = append(pr.Imports, stringContent(tree, child))
		case ast.NodeImportClause:
			e.collectImportNames(tree, child, pr)
		}
	}
}

func (e *Extractor) collectImportNames(tree *ast.Tree, clause *sitter.Node, pr *ProgramRepresentation) {
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case ast.NodeIdentifier:
			// default import
			pr.ImportedNames = append(pr.ImportedNames, tree.Text(child))
		case ast.NodeNamespaceImport:
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == ast.NodeIdentifier {
					pr.ImportedNames = append(pr.ImportedNames, tree.Text(gc))
				}
			}
		case ast.NodeNamedImports:
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != ast.NodeImportSpecifier {
					continue
				}
				// the local binding is the last identifier (handles "as" aliases)
				var local string
				for k := 0; k < int(spec.ChildCount()); k++ {
					if id := spec.Child(k); id.Type() == ast.NodeIdentifier {
						local = tree.Text(id)
					}
				}
				if local != "" {
					pr.ImportedNames = append(pr.ImportedNames, local)
				}
			}
		}
	}
}

func (e *Extractor) collectExport(tree *ast.Tree, node *sitter.Node, pr *ProgramRepresentation) {
	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case ast.NodeFunctionDeclaration, ast.NodeGeneratorFunctionDecl,
			ast.NodeLexicalDeclaration, ast.NodeVariableDeclaration,
			ast.NodeClassDeclaration:
			for _, name := range declaredNames(tree, child) {
				pr.Exports = append(pr.Exports, name)
			}
			e.collectDeclaration(tree, child, pr, true)
		case ast.NodeExportClause:
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != ast.NodeExportSpecifier {
					continue
				}
				// `export { a as b }` exposes the alias, not the local name.
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					pr.Exports = append(pr.Exports, tree.Text(alias))
				} else if name := spec.ChildByFieldName("name"); name != nil {
					pr.Exports = append(pr.Exports, tree.Text(name))
				}
			}
		case ast.NodeIdentifier:
			if isDefault {
				pr.Exports = append(pr.Exports, tree.Text(child))
			}
		}
	}
	if isDefault {
		pr.Exports = append(pr.Exports, "default")
	}
}

// collectDeclaration extracts the units declared by one top-level statement.
func (e *Extractor) collectDeclaration(tree *ast.Tree, node *sitter.Node, pr *ProgramRepresentation, exported bool) {
	switch node.Type() {
	case ast.NodeFunctionDeclaration, ast.NodeGeneratorFunctionDecl:
		name := tree.Text(node.ChildByFieldName("name"))
		if name == "" {
			return
		}
		unit := e.buildUnit(tree, name, KindFunction, node, "", exported)
		pr.AddUnit(unit)
		e.collectNested(tree, node.ChildByFieldName("body"), pr, name)

	case ast.NodeLexicalDeclaration, ast.NodeVariableDeclaration:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			decl := node.NamedChild(i)
			if decl.Type() != ast.NodeVariableDeclarator {
				continue
			}
			e.collectDeclarator(tree, decl, pr, "", exported)
		}

	case ast.NodeClassDeclaration:
		className := tree.Text(node.ChildByFieldName("name"))
		body := node.ChildByFieldName("body")
		if className == "" || body == nil {
			return
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() != ast.NodeMethodDefinition {
				continue
			}
			methodName := tree.Text(member.ChildByFieldName("name"))
			if methodName == "" {
				continue
			}
			full := className + "." + methodName
			unit := e.buildUnit(tree, full, KindMethod, member, "", exported)
			pr.AddUnit(unit)
			e.collectNested(tree, member.ChildByFieldName("body"), pr, full)
		}
	}
}

// collectDeclarator handles `const f = () => {}`, function expressions, and
// object literals whose properties are functions.
func (e *Extractor) collectDeclarator(tree *ast.Tree, decl *sitter.Node, pr *ProgramRepresentation, enclosing string, exported bool) {
	nameNode := decl.ChildByFieldName("name")
	value := decl.ChildByFieldName("value")
	if nameNode == nil || value == nil {
		return
	}
	// Nested units carry the enclosing path in their name so that two units
	// declaring the same local name stay distinguishable.
	path := joinPath(enclosing, tree.Text(nameNode))

	switch value.Type() {
	case ast.NodeArrowFunction, ast.NodeFunctionExpression, "function", ast.NodeGeneratorFunction:
		unit := e.buildUnit(tree, path, KindBound, value, enclosing, exported)
		pr.AddUnit(unit)
		e.collectNested(tree, functionBody(value), pr, path)

	case ast.NodeObject:
		for i := 0; i < int(value.NamedChildCount()); i++ {
			member := value.NamedChild(i)
			switch member.Type() {
			case ast.NodeMethodDefinition:
				mName := tree.Text(member.ChildByFieldName("name"))
				if mName == "" {
					continue
				}
				pr.AddUnit(e.buildUnit(tree, path+"."+mName, KindMethod, member, enclosing, exported))
			case ast.NodePair:
				v := member.ChildByFieldName("value")
				if v == nil || !isFunctionNode(v.Type()) {
					continue
				}
				key := tree.Text(member.ChildByFieldName("key"))
				if key == "" {
					continue
				}
				pr.AddUnit(e.buildUnit(tree, path+"."+key, KindMethod, v, enclosing, exported))
			}
		}
	}
}

// collectNested walks a unit body for locally-bound functions and anonymous
// reactive-callback registrations.
func (e *Extractor) collectNested(tree *ast.Tree, body *sitter.Node, pr *ProgramRepresentation, enclosing string) {
	if body == nil {
		return
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case ast.NodeVariableDeclarator:
				value := child.ChildByFieldName("value")
				if value != nil && (isFunctionNode(value.Type()) || value.Type() == ast.NodeObject) {
					e.collectDeclarator(tree, child, pr, enclosing, false)
					continue
				}
				walk(child)
			case ast.NodeFunctionDeclaration, ast.NodeGeneratorFunctionDecl:
				name := tree.Text(child.ChildByFieldName("name"))
				if name != "" {
					path := joinPath(enclosing, name)
					unit := e.buildUnit(tree, path, KindBound, child, enclosing, false)
					pr.AddUnit(unit)
					e.collectNested(tree, child.ChildByFieldName("body"), pr, path)
				}
			case ast.NodeArrowFunction, ast.NodeFunctionExpression, "function":
				// anonymous functions are picked up by the callback pass
			default:
				walk(child)
			}
		}
	}
	walk(body)

	e.collectCallbacks(tree, body, pr, enclosing, false)
}

// collectCallbacks finds registration calls whose argument is an anonymous
// function and keys them (enclosing unit, registration word, positional
// index). Positional keys are best-effort: they break under reordering,
// which the comparator flags.
func (e *Extractor) collectCallbacks(tree *ast.Tree, scope *sitter.Node, pr *ProgramRepresentation, enclosing string, topLevel bool) {
	counters := make(map[string]int)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)

			// Stay within the current scope: named units run their own pass.
			if child.Type() == ast.NodeVariableDeclarator {
				if v := child.ChildByFieldName("value"); v != nil && isFunctionNode(v.Type()) {
					continue
				}
			}
			if topLevel && (child.Type() == ast.NodeFunctionDeclaration ||
				child.Type() == ast.NodeGeneratorFunctionDecl ||
				child.Type() == ast.NodeClassDeclaration) {
				continue
			}

			if child.Type() == ast.NodeCallExpression {
				callee := calleeLeafName(tree, child.ChildByFieldName("function"))
				args := child.ChildByFieldName("arguments")
				if e.registrations.Contains(callee) && args != nil {
					for j := 0; j < int(args.NamedChildCount()); j++ {
						arg := args.NamedChild(j)
						if !isFunctionNode(arg.Type()) {
							continue
						}
						index := counters[callee]
						name := callbackName(enclosing, callee, index)
						unit := e.buildUnit(tree, name, KindCallback, arg, enclosing, false)
						unit.Anonymous = true
						unit.CallbackIndex = index
						pr.AddUnit(unit)
						counters[callee]++
					}
				}
			}
			walk(child)
		}
	}
	walk(scope)
}

// buildUnit computes all unit metadata for one function-like node.
func (e *Extractor) buildUnit(tree *ast.Tree, name string, kind UnitKind, fn *sitter.Node, enclosing string, exported bool) *SourceUnit {
	params := extractParams(tree, fn)
	body := functionBody(fn)

	bodyText := ""
	if body != nil {
		bodyText = tree.Text(body)
	}

	locals := localBindings(tree, fn, params)

	unit := &SourceUnit{
		Name:           name,
		Kind:           kind,
		Signature:      buildSignature(tree, name, fn),
		Parameters:     params,
		ReturnType:     inferReturnKind(body),
		Complexity:     complexity(body),
		Dependencies:   dependencies(tree, body, locals, leafName(name)),
		HasSideEffects: hasSideEffects(tree, body, locals, e.sideEffects),
		ContentHash:    ContentHash(bodyText),
		Enclosing:      enclosing,
		CallbackIndex:  -1,
		Exported:       exported,
		StartLine:      int(fn.StartPoint().Row) + 1,
		EndLine:        int(fn.EndPoint().Row) + 1,
	}
	return unit
}

// buildSignature renders the canonical signature string: the unit name plus
// the whitespace-normalized parameter list.
func buildSignature(tree *ast.Tree, name string, fn *sitter.Node) string {
	params := paramsNode(fn)
	if params == nil {
		return name + "()"
	}
	text := NormalizeBody(tree.Text(params))
	if !strings.HasPrefix(text, "(") {
		text = "(" + text + ")"
	}
	return name + text
}

func callbackName(enclosing, callee string, index int) string {
	if enclosing == "" {
		return fmt.Sprintf("%s#%d", callee, index)
	}
	return fmt.Sprintf("%s/%s#%d", enclosing, callee, index)
}

// leafName strips the enclosing path from a unit name so self-recursion is
// still excluded from a nested unit's dependencies.
func leafName(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func joinPath(enclosing, name string) string {
	if enclosing == "" {
		return name
	}
	return enclosing + "." + name
}

// declaredNames lists the names introduced by a declaration statement.
func declaredNames(tree *ast.Tree, node *sitter.Node) []string {
	switch node.Type() {
	case ast.NodeFunctionDeclaration, ast.NodeGeneratorFunctionDecl, ast.NodeClassDeclaration:
		if n := node.ChildByFieldName("name"); n != nil {
			return []string{tree.Text(n)}
		}
	case ast.NodeLexicalDeclaration, ast.NodeVariableDeclaration:
		var names []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			decl := node.NamedChild(i)
			if decl.Type() != ast.NodeVariableDeclarator {
				continue
			}
			if n := decl.ChildByFieldName("name"); n != nil && n.Type() == ast.NodeIdentifier {
				names = append(names, tree.Text(n))
			}
		}
		return names
	}
	return nil
}

func isFunctionNode(nodeType string) bool {
	switch nodeType {
	case ast.NodeArrowFunction, ast.NodeFunctionExpression, "function", ast.NodeGeneratorFunction:
		return true
	}
	return false
}

// functionBody returns the body of any function-like node, including the
// expression body of a concise arrow function.
func functionBody(fn *sitter.Node) *sitter.Node {
	if fn == nil {
		return nil
	}
	return fn.ChildByFieldName("body")
}

// paramsNode handles both full parameter lists and single-identifier arrows.
func paramsNode(fn *sitter.Node) *sitter.Node {
	if fn == nil {
		return nil
	}
	if p := fn.ChildByFieldName("parameters"); p != nil {
		return p
	}
	return fn.ChildByFieldName("parameter")
}

func extractParams(tree *ast.Tree, fn *sitter.Node) []Param {
	params := []Param{}
	node := paramsNode(fn)
	if node == nil {
		return params
	}
	if node.Type() == ast.NodeIdentifier {
		return append(params, Param{Name: tree.Text(node)})
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case ast.NodeIdentifier:
			params = append(params, Param{Name: tree.Text(child)})
		case ast.NodeAssignmentPattern:
			p := Param{Optional: true}
			if l := child.ChildByFieldName("left"); l != nil {
				p.Name = tree.Text(l)
			}
			if r := child.ChildByFieldName("right"); r != nil {
				p.Default = NormalizeBody(tree.Text(r))
			}
			params = append(params, p)
		case ast.NodeRestPattern:
			params = append(params, Param{Name: NormalizeBody(tree.Text(child))})
		case ast.NodeObjectPattern, ast.NodeArrayPattern:
			params = append(params, Param{Name: NormalizeBody(tree.Text(child))})
		}
	}
	return params
}

func stringContent(tree *ast.Tree, node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == ast.NodeStringFragment {
			return tree.Text(c)
		}
	}
	text := tree.Text(node)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func calleeLeafName(tree *ast.Tree, callee *sitter.Node) string {
	if callee == nil {
		return ""
	}
	switch callee.Type() {
	case ast.NodeIdentifier:
		return tree.Text(callee)
	case ast.NodeMemberExpression:
		if p := callee.ChildByFieldName("property"); p != nil {
			return tree.Text(p)
		}
	}
	return ""
}
