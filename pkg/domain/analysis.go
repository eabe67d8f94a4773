package domain

// IssueKind classifies a structural defect.
type IssueKind string

const (
	IssueInescapableLoop IssueKind = "INESCAPABLE_LOOP"
	IssueDeadEnd         IssueKind = "DEAD_END"
	IssueUnreachable     IssueKind = "UNREACHABLE"
)

// AnalysisIssue describes a single structural defect. Issues are data, not errors.
type AnalysisIssue struct {
	Kind        IssueKind `json:"kind"`
	PathExample []string  `json:"path_example"`
	SCC         []string  `json:"scc,omitempty"`
	Message     string    `json:"message"`
}

// AnalysisResult is the analyzer's report.
type AnalysisResult struct {
	Issues []AnalysisIssue `json:"issues"`
}

// OK reports whether no issues were found.
func (r AnalysisResult) OK() bool {
	return len(r.Issues) == 0
}

// ByKind returns the issues of the given kind, in report order.
func (r AnalysisResult) ByKind(kind IssueKind) []AnalysisIssue {
	var out []AnalysisIssue
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// Counts tallies issues per kind.
func (r AnalysisResult) Counts() map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, issue := range r.Issues {
		counts[issue.Kind]++
	}
	return counts
}
