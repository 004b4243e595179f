package ast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Tree is one parsed artifact. It owns the source bytes so that node text
// can be recovered without threading the slice through every caller.
type Tree struct {
	ArtifactID string
	Source     []byte
	Root       *sitter.Node

	tree *sitter.Tree
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Text returns the source text covered by a node.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.Source)
}

// Parse turns JavaScript/JSX source text into a Tree.
//
// A fresh tree-sitter parser is created per call, so concurrent Parse calls
// cannot interfere with each other. Syntactically invalid input returns a
// *ParseError; no semantic judgment is attempted here.
func Parse(ctx context.Context, source []byte, artifactID string) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	st, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", artifactID, err)
	}

	root := st.RootNode()
	if root.HasError() {
		line, col, snippet := firstSyntaxError(root, source)
		st.Close()
		return nil, &ParseError{
			ArtifactID: artifactID,
			Line:       line,
			Column:     col,
			Snippet:    snippet,
		}
	}

	return &Tree{
		ArtifactID: artifactID,
		Source:     source,
		Root:       root,
		tree:       st,
	}, nil
}

// firstSyntaxError locates the first ERROR or missing node in the tree.
func firstSyntaxError(root *sitter.Node, source []byte) (line, col int, snippet string) {
	var found *sitter.Node

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	if found == nil {
		return 1, 0, ""
	}

	text := found.Content(source)
	if len(text) > 40 {
		text = text[:40]
	}
	return int(found.StartPoint().Row) + 1, int(found.StartPoint().Column), text
}
