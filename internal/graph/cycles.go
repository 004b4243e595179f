package graph

import "strings"

// dfs colors for cycle detection.
const (
	white = iota // unvisited
	gray         // in the current recursion stack
	black        // fully explored
)

// Cycles detects dependency cycles with a three-state depth-first search.
// When a gray node is re-entered, the current path is sliced from the first
// occurrence of that node, producing a minimal, stable cycle. Node and
// adjacency iteration are sorted, so output order is deterministic.
func (g *Graph) Cycles() [][]string {
	color := make(map[string]int, len(g.nodes))
	var path []string
	var cycles [][]string
	seen := make(map[string]bool)

	var visit func(node string)
	visit = func(node string) {
		color[node] = gray
		path = append(path, node)

		for _, next := range g.Neighbors(node) {
			switch color[next] {
			case gray:
				// slice the path from the first occurrence of next
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), next)
				key := strings.Join(canonical(cycle), "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case white:
				visit(next)
			}
		}

		path = path[:len(path)-1]
		color[node] = black
	}

	for _, node := range g.Nodes() {
		if color[node] == white {
			visit(node)
		}
	}
	return cycles
}

// FormatCycle renders a cycle as "A → B → C → A".
func FormatCycle(cycle []string) string {
	return strings.Join(cycle, " → ")
}

// canonical rotates a cycle so equivalent cycles dedupe regardless of the
// node the search happened to enter them from. The trailing repeat of the
// first node is dropped before rotating.
func canonical(cycle []string) []string {
	if len(cycle) < 2 {
		return cycle
	}
	ring := cycle[:len(cycle)-1]
	min := 0
	for i := range ring {
		if ring[i] < ring[min] {
			min = i
		}
	}
	out := make([]string, 0, len(ring))
	out = append(out, ring[min:]...)
	out = append(out, ring[:min]...)
	return out
}
