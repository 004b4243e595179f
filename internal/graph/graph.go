// Package graph builds the cross-artifact dependency graph used by the rule
// validator and detects dependency cycles in it.
package graph

import (
	"path"
	"sort"
	"strings"

	"semgate/internal/extractor"
)

// Graph is a directed dependency graph over artifact IDs.
type Graph struct {
	nodes map[string]bool
	adj   map[string]map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		adj:   make(map[string]map[string]bool),
	}
}

// AddNode registers an artifact.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = true
}

// AddEdge records that from depends on to. Self-edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	if from == to {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	if g.adj[from] == nil {
		g.adj[from] = make(map[string]bool)
	}
	g.adj[from][to] = true
}

// Nodes returns all artifact IDs in sorted order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the dependencies of one artifact in sorted order.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.adj[id]))
	for to := range g.adj[id] {
		out = append(out, to)
	}
	sort.Strings(out)
	return out
}

// Build links a batch of program representations. Artifact A depends on B
// when A imports B's module path or references a symbol B exports.
func Build(programs []*extractor.ProgramRepresentation) *Graph {
	g := New()

	// Index artifacts by normalized reference key and by exported symbol.
	byRef := make(map[string]string)
	byExport := make(map[string]string)
	for _, p := range programs {
		g.AddNode(p.ArtifactID)
		byRef[refKey(p.ArtifactID)] = p.ArtifactID
		for _, e := range p.Exports {
			if e == "default" {
				continue
			}
			byExport[e] = p.ArtifactID
		}
	}

	for _, p := range programs {
		for _, imp := range p.Imports {
			if target, ok := byRef[refKey(imp)]; ok {
				g.AddEdge(p.ArtifactID, target)
			}
		}
		for _, u := range p.Units {
			for _, dep := range u.Dependencies {
				if target, ok := byExport[dep]; ok {
					g.AddEdge(p.ArtifactID, target)
				}
			}
		}
	}
	return g
}

// refKey normalizes an artifact ID or import path for matching: relative
// prefixes and source extensions are stripped, comparison is case-sensitive
// on the base name.
func refKey(ref string) string {
	ref = strings.TrimPrefix(ref, "./")
	for strings.HasPrefix(ref, "../") {
		ref = strings.TrimPrefix(ref, "../")
	}
	base := path.Base(ref)
	for _, ext := range []string{".jsx", ".js", ".mjs", ".cjs", ".tsx", ".ts"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}
