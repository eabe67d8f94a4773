package analysis

import (
	"sort"

	"github.com/aretw0/knots/pkg/domain"
)

// Graph is the directed graph derived from a story. Every node is addressed by
// its opaque key (see domain.NodeKey).
type Graph struct {
	// Entry is the key of the story's entry point. It may be absent from Nodes.
	Entry string

	// Nodes is the set of all node keys.
	Nodes map[string]struct{}

	// Order lists all node keys in a fixed (sorted) iteration order.
	Order []string

	// Edges maps every node key to its targets, in choice order.
	// Targets are not validated: a key missing from Nodes is a dangling edge.
	Edges map[string][]string

	// Terminal is the set of node keys carrying an ending marker.
	Terminal map[string]struct{}
}

// Build derives the graph of a story. It never fails: malformed references
// simply produce dangling edges.
func Build[E any](story *domain.Story[E]) *Graph {
	g := &Graph{
		Nodes:    make(map[string]struct{}),
		Edges:    make(map[string][]string),
		Terminal: make(map[string]struct{}),
	}
	if story == nil {
		return g
	}
	g.Entry = story.EntryPosition().Key()

	for knotID, knot := range story.Knots {
		if knot == nil {
			continue
		}
		for nodeID, node := range knot.Nodes {
			if node == nil {
				continue
			}
			key := domain.NodeKey(knotID, nodeID)
			g.Nodes[key] = struct{}{}

			targets := make([]string, 0, len(node.Choices))
			for _, c := range node.Choices {
				targets = append(targets, c.Target.Resolve(knotID).Key())
			}
			g.Edges[key] = targets

			if node.IsTerminal() {
				g.Terminal[key] = struct{}{}
			}
		}
	}

	g.Order = make([]string, 0, len(g.Nodes))
	for key := range g.Nodes {
		g.Order = append(g.Order, key)
	}
	sort.Strings(g.Order)

	return g
}

// Has reports whether key names an existing node.
func (g *Graph) Has(key string) bool {
	_, ok := g.Nodes[key]
	return ok
}

// IsTerminal reports whether key names a node with an ending.
func (g *Graph) IsTerminal(key string) bool {
	_, ok := g.Terminal[key]
	return ok
}

// Dangling returns every edge whose target does not exist, as (source, target) pairs
// in iteration order.
func (g *Graph) Dangling() [][2]string {
	var out [][2]string
	for _, key := range g.Order {
		for _, target := range g.Edges[key] {
			if !g.Has(target) {
				out = append(out, [2]string{key, target})
			}
		}
	}
	return out
}

// label renders a key as "knot/node" for messages.
func label(key string) string {
	knot, node := domain.SplitKey(key)
	return domain.Position{KnotID: knot, NodeID: node}.String()
}
