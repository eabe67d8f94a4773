package analysis

import (
	"fmt"

	"github.com/aretw0/knots/pkg/domain"
)

// deadEndIssues flags reachable nodes with no outgoing edge and no ending.
func deadEndIssues(g *Graph, visited map[string]struct{}) []domain.AnalysisIssue {
	var issues []domain.AnalysisIssue
	for _, key := range g.Order {
		if _, ok := visited[key]; !ok {
			continue
		}
		if len(g.Edges[key]) > 0 || g.IsTerminal(key) {
			continue
		}
		issues = append(issues, domain.AnalysisIssue{
			Kind:        domain.IssueDeadEnd,
			PathExample: []string{key},
			Message:     fmt.Sprintf("node '%s' has no choices and no ending", label(key)),
		})
	}
	return issues
}
