package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural matches every *StructuralError.
	ErrStructural = errors.New("structural error")

	// ErrConditionUnmet is returned when a guarded choice is taken while its condition does not hold.
	ErrConditionUnmet = errors.New("condition unmet")

	// ErrMissingResolver is returned when a condition names a hook or carries an
	// expression but the host registered no resolver for it.
	ErrMissingResolver = errors.New("missing condition resolver")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// StructuralKind names what was missing.
type StructuralKind string

const (
	MissingKnot   StructuralKind = "knot"
	MissingNode   StructuralKind = "node"
	MissingChoice StructuralKind = "choice"
)

// StructuralError reports a reference to a knot, node or choice that does not exist.
type StructuralError struct {
	Kind     StructuralKind
	KnotID   string
	NodeID   string
	ChoiceID string
}

func (e *StructuralError) Error() string {
	switch e.Kind {
	case MissingKnot:
		return fmt.Sprintf("knot '%s' does not exist", e.KnotID)
	case MissingChoice:
		return fmt.Sprintf("choice '%s' does not exist on node '%s/%s'", e.ChoiceID, e.KnotID, e.NodeID)
	default:
		return fmt.Sprintf("node '%s' does not exist in knot '%s'", e.NodeID, e.KnotID)
	}
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// ConditionUnmetError is returned by Choose when the guard of the requested choice is false.
type ConditionUnmetError struct {
	ChoiceID  string
	Condition *Condition
}

func (e *ConditionUnmetError) Error() string {
	return fmt.Sprintf("choice '%s' is not available: %s does not hold", e.ChoiceID, e.Condition)
}

func (e *ConditionUnmetError) Is(target error) bool {
	return target == ErrConditionUnmet
}

// MissingResolverError identifies the hook name or expression nobody can resolve.
type MissingResolverError struct {
	Condition *Condition
}

func (e *MissingResolverError) Error() string {
	if e.Condition.Kind() == ConditionHook {
		return fmt.Sprintf("no condition hook registered for '%s'", e.Condition.Hook)
	}
	return fmt.Sprintf("no expression evaluator registered to resolve '%s'", e.Condition.Expression)
}

func (e *MissingResolverError) Is(target error) bool {
	return target == ErrMissingResolver
}
