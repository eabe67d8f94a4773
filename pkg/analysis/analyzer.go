package analysis

import "github.com/aretw0/knots/pkg/domain"

// Analyze reports the structural defects of a story: the missing entry point and
// unreachable nodes first, then dead ends, then inescapable loops. It is a pure
// function; calling it twice on the same story yields equal results.
func Analyze[E any](story *domain.Story[E]) domain.AnalysisResult {
	return AnalyzeGraph(Build(story))
}

// AnalyzeGraph runs the analysis on an already derived graph.
func AnalyzeGraph(g *Graph) domain.AnalysisResult {
	visited := Reachable(g)

	issues := make([]domain.AnalysisIssue, 0)
	issues = append(issues, unreachableIssues(g, visited)...)
	issues = append(issues, deadEndIssues(g, visited)...)
	issues = append(issues, loopIssues(g, visited)...)

	return domain.AnalysisResult{Issues: issues}
}
