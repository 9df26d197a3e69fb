package model

import (
	"slices"
	"strings"
)

// refGraph maps an operator name to the operator names it references.
type refGraph map[string][]string

// findCycles returns every reference cycle in g, each as a path that starts
// and ends at the same name, e.g. ["A", "B", "A"]. Results are sorted so
// error messages are stable.
func findCycles(g refGraph) [][]string {
	var cycles [][]string
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || slices.Contains(g[scc[0]], scc[0]) {
			cycles = append(cycles, cyclePath(scc, g))
		}
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return strings.Compare(strings.Join(a, ","), strings.Join(b, ","))
	})
	return cycles
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order for deterministic output.
func tarjanSCC(g refGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of an SCC: pop it
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// cyclePath walks edges inside scc from its smallest member back to itself.
func cyclePath(scc []string, g refGraph) []string {
	start := slices.Min(scc)
	if len(scc) == 1 {
		return []string{start, start}
	}

	in := make(map[string]bool, len(scc))
	for _, n := range scc {
		in[n] = true
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, w := range g[current] {
			if w == start && len(path) > 1 {
				next = w
				break
			}
			if in[w] && !visited[w] && next == "" {
				next = w
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}
