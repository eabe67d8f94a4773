package analysis

import (
	"fmt"
	"strings"

	"github.com/aretw0/knots/pkg/domain"
)

// Component is a strongly connected set of node keys, listed in discovery order.
type Component []string

// frame is one simulated activation of Tarjan's recursive visit.
type frame struct {
	key  string
	next int // index of the next outgoing edge to inspect
}

// tarjan holds the per-run bookkeeping of the SCC search.
type tarjan struct {
	g       *Graph
	within  map[string]struct{}
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	out     []Component
}

// StronglyConnected partitions the nodes of within into strongly connected
// components. Edges leaving within are ignored. Roots are taken in g.Order and
// components are emitted in the order Tarjan's algorithm completes them.
func StronglyConnected(g *Graph, within map[string]struct{}) []Component {
	t := &tarjan{
		g:       g,
		within:  within,
		index:   make(map[string]int, len(within)),
		low:     make(map[string]int, len(within)),
		onStack: make(map[string]bool, len(within)),
	}

	for _, key := range g.Order {
		if !t.includes(key) {
			continue
		}
		if _, seen := t.index[key]; seen {
			continue
		}
		t.run(key)
	}

	return t.out
}

func (t *tarjan) includes(key string) bool {
	_, ok := t.within[key]
	return ok
}

func (t *tarjan) discover(key string) {
	t.index[key] = t.counter
	t.low[key] = t.counter
	t.counter++
	t.stack = append(t.stack, key)
	t.onStack[key] = true
}

func (t *tarjan) run(root string) {
	t.discover(root)
	work := []frame{{key: root}}

	for len(work) > 0 {
		top := &work[len(work)-1]
		edges := t.g.Edges[top.key]

		if top.next < len(edges) {
			target := edges[top.next]
			top.next++

			if !t.includes(target) {
				continue
			}
			if _, seen := t.index[target]; !seen {
				t.discover(target)
				work = append(work, frame{key: target})
				continue
			}
			if t.onStack[target] && t.index[target] < t.low[top.key] {
				t.low[top.key] = t.index[target]
			}
			continue
		}

		// All edges of top are done: close the component if top is its root,
		// then propagate the low-link to the caller frame.
		done := top.key
		if t.low[done] == t.index[done] {
			t.pop(done)
		}
		work = work[:len(work)-1]

		if len(work) > 0 {
			parent := work[len(work)-1].key
			if t.low[done] < t.low[parent] {
				t.low[parent] = t.low[done]
			}
		}
	}
}

// pop removes the component rooted at root from the stack.
func (t *tarjan) pop(root string) {
	var members []string
	for {
		n := len(t.stack) - 1
		key := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[key] = false
		members = append(members, key)
		if key == root {
			break
		}
	}
	// Stack order is reverse discovery order.
	for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
		members[i], members[j] = members[j], members[i]
	}
	t.out = append(t.out, Component(members))
}

// IsCandidateLoop reports whether the component can be cycled through: more
// than one member, or a single member with an edge to itself.
func (c Component) IsCandidateLoop(g *Graph) bool {
	if len(c) > 1 {
		return true
	}
	if len(c) == 0 {
		return false
	}
	for _, target := range g.Edges[c[0]] {
		if target == c[0] {
			return true
		}
	}
	return false
}

// IsInescapable reports whether a candidate loop has no ending inside and no
// traversable edge leaving it. Dangling edges cannot be followed and do not
// count as exits.
func (c Component) IsInescapable(g *Graph) bool {
	if !c.IsCandidateLoop(g) {
		return false
	}
	members := make(map[string]struct{}, len(c))
	for _, key := range c {
		members[key] = struct{}{}
	}
	for _, key := range c {
		if g.IsTerminal(key) {
			return false
		}
		for _, target := range g.Edges[key] {
			if _, inside := members[target]; inside {
				continue
			}
			if g.Has(target) {
				return false
			}
		}
	}
	return true
}

func loopIssues(g *Graph, visited map[string]struct{}) []domain.AnalysisIssue {
	var issues []domain.AnalysisIssue
	for _, comp := range StronglyConnected(g, visited) {
		if !comp.IsInescapable(g) {
			continue
		}
		labels := make([]string, len(comp))
		for i, key := range comp {
			labels[i] = label(key)
		}
		members := []string(comp)
		issues = append(issues, domain.AnalysisIssue{
			Kind:        domain.IssueInescapableLoop,
			PathExample: append([]string(nil), members...),
			SCC:         append([]string(nil), members...),
			Message:     fmt.Sprintf("inescapable loop: %s", strings.Join(labels, ", ")),
		})
	}
	return issues
}
