package runtime

import (
	"log/slog"

	"github.com/aretw0/knots/internal/logging"
)

type settings struct {
	conditions Conditions
	logger     *slog.Logger
}

// Option configures a Runtime at construction.
type Option func(*settings)

// WithConditions replaces the whole condition capability set.
func WithConditions(c Conditions) Option {
	return func(s *settings) {
		s.conditions = c.clone()
	}
}

// WithConditionHook registers a single named hook.
func WithConditionHook(name string, fn HookFunc) Option {
	return func(s *settings) {
		if s.conditions.Hooks == nil {
			s.conditions.Hooks = make(map[string]HookFunc)
		}
		s.conditions.Hooks[name] = fn
	}
}

// WithExpressionEvaluator sets the evaluator used for expression guards.
func WithExpressionEvaluator(eval ExpressionEvaluator) Option {
	return func(s *settings) {
		s.conditions.Evaluate = eval
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	s.conditions = s.conditions.clone()
	return s
}
