package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/knots/pkg/analysis"
	"github.com/aretw0/knots/pkg/domain"
)

// Options tunes which findings fail validation.
type Options struct {
	// AllowUnreachable downgrades unreachable nodes to warnings.
	AllowUnreachable bool
}

// Report is the outcome of validating a story.
type Report struct {
	Errors   []string
	Warnings []string
	Result   domain.AnalysisResult
}

// Err folds the errors of the report into a single error, or nil.
func (r Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// Inspect runs the analyzer and checks for broken links, which the analyzer
// never traverses.
func Inspect[E any](story *domain.Story[E], opts Options) Report {
	g := analysis.Build(story)
	result := analysis.AnalyzeGraph(g)

	var report Report
	report.Result = result

	for _, edge := range g.Dangling() {
		report.Errors = append(report.Errors,
			fmt.Sprintf("Missing node '%s' (linked from '%s')", keyLabel(edge[1]), keyLabel(edge[0])))
	}

	for _, issue := range result.Issues {
		msg := fmt.Sprintf("%s: %s", issue.Kind, issue.Message)
		if issue.Kind == domain.IssueUnreachable && opts.AllowUnreachable && g.Has(g.Entry) {
			report.Warnings = append(report.Warnings, msg)
			continue
		}
		report.Errors = append(report.Errors, msg)
	}

	return report
}

// Validate returns an error listing every finding that fails validation.
func Validate[E any](story *domain.Story[E], opts Options) error {
	return Inspect(story, opts).Err()
}

func keyLabel(key string) string {
	knot, node := domain.SplitKey(key)
	return domain.Position{KnotID: knot, NodeID: node}.String()
}
