// Package depgraph tracks cell-to-cell dependencies and produces a safe
// evaluation order, including per-cell cycle attribution rather than
// aborting the whole pass when a cycle exists.
package depgraph

import (
	"sort"

	"golang.org/x/exp/maps"
)

// FQK is a fully-qualified cell key, "SheetName!CellId" (e.g. "Sheet1!A1"),
// the identity used throughout the dependency graph and result cache.
type FQK string

type node struct {
	precedents map[FQK]struct{} // cells this cell's formula reads
	dependents map[FQK]struct{} // cells that read this cell
}

// Graph is a directed graph of cell dependencies.
type Graph struct {
	nodes map[FQK]*node
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[FQK]*node)}
}

func (g *Graph) getOrCreate(k FQK) *node {
	if n, ok := g.nodes[k]; ok {
		return n
	}
	n := &node{precedents: make(map[FQK]struct{}), dependents: make(map[FQK]struct{})}
	g.nodes[k] = n
	return n
}

// AddDependency records that from's formula reads to's value.
func (g *Graph) AddDependency(from, to FQK) {
	fromNode := g.getOrCreate(from)
	toNode := g.getOrCreate(to)
	fromNode.precedents[to] = struct{}{}
	toNode.dependents[from] = struct{}{}
}

// EnsureNode registers k in the graph even if it has no dependencies, so
// formula-less or dependency-free cells still appear in the evaluation
// plan.
func (g *Graph) EnsureNode(k FQK) { g.getOrCreate(k) }

// Precedents returns the cells k's formula directly reads.
func (g *Graph) Precedents(k FQK) []FQK {
	n, ok := g.nodes[k]
	if !ok {
		return nil
	}
	out := maps.Keys(n.precedents)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Plan is the result of analyzing a graph: which cells are cycle members
// (to be resolved directly to #CYCLE! without evaluation) and the safe
// evaluation order for everything else, precedents always appearing
// before their dependents.
type Plan struct {
	CycleMembers map[FQK]bool
	Order        []FQK
}

// Plan computes the evaluation plan for the whole graph using a 3-state
// DFS (unvisited/visiting/visited) over precedent edges: a back edge to a
// node still in the "visiting" state means every node on the current
// path from that node to the top of the stack participates in a cycle.
// Nodes outside any cycle are appended to Order in postorder, which is a
// valid topological order (every precedent appears before its dependent).
func (g *Graph) Plan() Plan {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[FQK]int, len(g.nodes))
	var stack []FQK
	stackIndex := make(map[FQK]int)
	plan := Plan{CycleMembers: make(map[FQK]bool)}

	var visit func(k FQK)
	visit = func(k FQK) {
		switch state[k] {
		case done:
			return
		case visiting:
			start := stackIndex[k]
			for _, member := range stack[start:] {
				plan.CycleMembers[member] = true
			}
			return
		}

		state[k] = visiting
		stackIndex[k] = len(stack)
		stack = append(stack, k)

		if n, ok := g.nodes[k]; ok {
			precedents := maps.Keys(n.precedents)
			sort.Slice(precedents, func(i, j int) bool { return precedents[i] < precedents[j] })
			for _, p := range precedents {
				visit(p)
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackIndex, k)
		state[k] = done
		if !plan.CycleMembers[k] {
			plan.Order = append(plan.Order, k)
		}
	}

	keys := maps.Keys(g.nodes)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		visit(k)
	}

	return plan
}

// Dependents returns every cell that transitively depends on k, sorted by
// key.
func (g *Graph) Dependents(k FQK) []FQK {
	seen := make(map[FQK]struct{})
	var collect func(FQK)
	collect = func(cur FQK) {
		n, ok := g.nodes[cur]
		if !ok {
			return
		}
		for dep := range n.dependents {
			if _, visited := seen[dep]; visited {
				continue
			}
			seen[dep] = struct{}{}
			collect(dep)
		}
	}
	collect(k)
	out := maps.Keys(seen)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
