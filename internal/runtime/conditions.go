package runtime

import (
	"fmt"

	"github.com/aretw0/knots/pkg/domain"
)

// HookFunc is a named predicate registered by the host.
type HookFunc func(state any) bool

// ExpressionEvaluator resolves an expression guard against the caller's state.
type ExpressionEvaluator func(expression string, state any) (bool, error)

// Conditions is the capability set a Runtime uses to resolve choice guards.
// A guard whose resolver is missing fails with *domain.MissingResolverError;
// it is never silently treated as false.
type Conditions struct {
	Hooks    map[string]HookFunc
	Evaluate ExpressionEvaluator
}

// Allows reports whether cond holds for state. A nil condition always holds.
func (c Conditions) Allows(cond *domain.Condition, state any) (bool, error) {
	if cond == nil {
		return true, nil
	}

	switch cond.Kind() {
	case domain.ConditionHook:
		hook, ok := c.Hooks[cond.Hook]
		if !ok || hook == nil {
			return false, &domain.MissingResolverError{Condition: cond}
		}
		return hook(state), nil
	default:
		if c.Evaluate == nil {
			return false, &domain.MissingResolverError{Condition: cond}
		}
		ok, err := c.Evaluate(cond.Expression, state)
		if err != nil {
			return false, fmt.Errorf("evaluating '%s': %w", cond.Expression, err)
		}
		return ok, nil
	}
}

func (c Conditions) clone() Conditions {
	hooks := make(map[string]HookFunc, len(c.Hooks))
	for name, fn := range c.Hooks {
		hooks[name] = fn
	}
	return Conditions{Hooks: hooks, Evaluate: c.Evaluate}
}
