package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/knots/pkg/domain"
)

// LogHooks logs every lifecycle event at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "node_enter",
				"knot_id", e.KnotID,
				"node_id", e.NodeID,
				"terminal", e.Terminal,
			)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "node_leave",
				"knot_id", e.KnotID,
				"node_id", e.NodeID,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, string(e.Type),
				"from", e.From.String(),
				"to", e.To.String(),
				"choice_id", e.ChoiceID,
			)
		},
	}
}

// Combine returns hooks that call each of the given hook sets in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var enter, leave []func(context.Context, *domain.NodeEvent)
	var trans []func(context.Context, *domain.TransitionEvent)
	for _, s := range sets {
		if s.OnNodeEnter != nil {
			enter = append(enter, s.OnNodeEnter)
		}
		if s.OnNodeLeave != nil {
			leave = append(leave, s.OnNodeLeave)
		}
		if s.OnTransition != nil {
			trans = append(trans, s.OnTransition)
		}
	}

	if len(enter) > 0 {
		out.OnNodeEnter = func(ctx context.Context, e *domain.NodeEvent) {
			for _, fn := range enter {
				fn(ctx, e)
			}
		}
	}
	if len(leave) > 0 {
		out.OnNodeLeave = func(ctx context.Context, e *domain.NodeEvent) {
			for _, fn := range leave {
				fn(ctx, e)
			}
		}
	}
	if len(trans) > 0 {
		out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
			for _, fn := range trans {
				fn(ctx, e)
			}
		}
	}
	return out
}
