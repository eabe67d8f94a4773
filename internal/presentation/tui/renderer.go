package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a Renderer backed by glamour, with the style picked from
// the terminal background. When plain is set the markdown is returned as is,
// which is what pipes and CI logs want.
func NewRenderer(plain bool) Renderer {
	if plain {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return NewRenderer(true)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// StepMarkdown formats a step as markdown: the text as paragraphs, tags as an
// italic line, then either the ending or a numbered list of choices.
func StepMarkdown[E any](step domain.StepResult[E]) string {
	var sb strings.Builder

	for _, line := range step.Text {
		sb.WriteString(line)
		sb.WriteString("\n\n")
	}

	if len(step.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("_%s_\n\n", strings.Join(step.Tags, ", ")))
	}

	if step.Ending != nil {
		label := step.Ending.Label
		if label == "" {
			label = step.Ending.ID
		}
		sb.WriteString(fmt.Sprintf("**THE END: %s**\n", label))
		return sb.String()
	}

	for i, c := range step.Choices {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Label))
	}
	return sb.String()
}
