package analysis

import (
	"fmt"

	"github.com/aretw0/knots/pkg/domain"
)

// Reachable performs a breadth-first traversal from the graph's entry point and
// returns the visited set. Dangling edges do not extend reachability.
// A missing entry yields an empty set.
func Reachable(g *Graph) map[string]struct{} {
	visited := make(map[string]struct{})
	if !g.Has(g.Entry) {
		return visited
	}

	visited[g.Entry] = struct{}{}
	queue := []string{g.Entry}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range g.Edges[current] {
			if !g.Has(target) {
				continue
			}
			if _, seen := visited[target]; seen {
				continue
			}
			visited[target] = struct{}{}
			queue = append(queue, target)
		}
	}

	return visited
}

// unreachableIssues reports the missing entry point (if any) followed by one
// issue per node that the traversal did not visit.
func unreachableIssues(g *Graph, visited map[string]struct{}) []domain.AnalysisIssue {
	var issues []domain.AnalysisIssue

	if !g.Has(g.Entry) {
		issues = append(issues, domain.AnalysisIssue{
			Kind:        domain.IssueUnreachable,
			PathExample: []string{g.Entry},
			Message:     fmt.Sprintf("entry point '%s' does not exist", label(g.Entry)),
		})
	}

	for _, key := range g.Order {
		if _, ok := visited[key]; ok {
			continue
		}
		issues = append(issues, domain.AnalysisIssue{
			Kind:        domain.IssueUnreachable,
			PathExample: []string{key},
			Message:     fmt.Sprintf("node '%s' is unreachable from the entry point", label(key)),
		})
	}

	return issues
}
