// Package graph provides the dependency graph built from a pin list.
//
// Nodes are normalized package names; an edge A -> B means A declares a
// runtime dependency on B. The synthetic root [RootID] stands in for the
// manifest itself, with one edge to each top-level pin.
package graph

import (
	"fmt"
	"slices"
	"sort"
)

// RootID is the synthetic node representing the manifest.
const RootID = "__manifest__"

// Node is one package in the dependency graph.
type Node struct {
	ID      string            // normalized package name
	Version string            // exact version, where known
	Meta    map[string]string // optional display metadata (summary, license)
}

// IsRoot reports whether the node is the synthetic manifest root.
func (n Node) IsRoot() bool { return n.ID == RootID }

// Edge is one dependency relation.
type Edge struct {
	From string
	To   string
}

// Graph is a directed dependency graph. The zero value is not usable;
// call New. Graph is not safe for concurrent mutation.
type Graph struct {
	nodes    map[string]*Node
	order    []string // insertion order of node IDs
	edges    []Edge
	edgeSet  map[Edge]bool
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeSet:  make(map[Edge]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode inserts a node. Re-adding an existing ID merges non-empty
// fields instead of erroring, so crawl results can refine placeholders.
func (g *Graph) AddNode(n Node) {
	if existing, ok := g.nodes[n.ID]; ok {
		if n.Version != "" {
			existing.Version = n.Version
		}
		for k, v := range n.Meta {
			if existing.Meta == nil {
				existing.Meta = make(map[string]string)
			}
			existing.Meta[k] = v
		}
		return
	}
	copied := n
	g.nodes[n.ID] = &copied
	g.order = append(g.order, n.ID)
}

// AddEdge inserts an edge, creating missing endpoint nodes. Duplicate
// edges and self-loops are ignored.
func (g *Graph) AddEdge(e Edge) {
	if e.From == e.To || g.edgeSet[e] {
		return
	}
	g.AddNode(Node{ID: e.From})
	g.AddNode(Node{ID: e.To})
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes, excluding the synthetic root.
func (g *Graph) NodeCount() int {
	n := len(g.nodes)
	if _, ok := g.nodes[RootID]; ok {
		n--
	}
	return n
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs that id depends on.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs that depend on id.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// Reachable returns the set of IDs reachable from id, excluding id
// itself, sorted.
func (g *Graph) Reachable(id string) []string {
	visited := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range g.outgoing[cur] {
			if !visited[child] {
				visited[child] = true
				stack = append(stack, child)
			}
		}
	}
	delete(visited, id)
	out := make([]string, 0, len(visited))
	for k := range visited {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Walk visits nodes depth-first from id, calling fn with each node and
// its depth. Shared dependencies are visited once.
func (g *Graph) Walk(id string, fn func(n *Node, depth int)) {
	visited := make(map[string]bool)
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		if n, ok := g.nodes[id]; ok {
			fn(n, depth)
		}
		for _, child := range g.outgoing[id] {
			walk(child, depth+1)
		}
	}
	walk(id, 0)
}

// Validate checks internal consistency: every edge endpoint must exist.
// Cycles are legal here; PyPI metadata contains real mutual dependencies.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return fmt.Errorf("edge %s -> %s: unknown source", e.From, e.To)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return fmt.Errorf("edge %s -> %s: unknown target", e.From, e.To)
		}
	}
	return nil
}
