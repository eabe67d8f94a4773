package ports

import (
	"context"

	"github.com/aretw0/knots/pkg/domain"
)

// Engine is the session-oriented facade transports are written against.
// Effects are exposed as domain.Payload, the shape used by file-loaded stories.
type Engine interface {
	// Start creates a session at the story entry and returns its first step.
	Start(ctx context.Context, sessionID string, state any) (domain.StepResult[domain.Payload], error)

	// Current renders the session's current step without moving.
	Current(ctx context.Context, sessionID string, state any) (domain.StepResult[domain.Payload], error)

	// Choose takes a choice on the session's current node.
	Choose(ctx context.Context, sessionID, choiceID string, state any) (domain.StepResult[domain.Payload], error)

	// Divert jumps the session unconditionally to target.
	Divert(ctx context.Context, sessionID string, target domain.Target, state any) (domain.StepResult[domain.Payload], error)

	// End deletes the session.
	End(ctx context.Context, sessionID string) error

	// Session returns the stored session record.
	Session(ctx context.Context, sessionID string) (*domain.Session, error)

	// Analyze reports the structural defects of the loaded story.
	Analyze() domain.AnalysisResult

	// Diagram renders the story as a Mermaid flowchart, highlighting the
	// session's trail when sessionID is not empty.
	Diagram(ctx context.Context, sessionID string) (string, error)
}
