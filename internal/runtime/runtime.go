package runtime

import (
	"log/slog"

	"github.com/aretw0/knots/pkg/domain"
)

// Runtime walks a story one step at a time.
type Runtime[E any] struct {
	story      *domain.Story[E]
	pos        domain.Position
	conditions Conditions
	logger     *slog.Logger
}

// New creates a runtime positioned at the story's entry point.
// It fails with a *domain.StructuralError if the entry knot or node does not exist.
func New[E any](story *domain.Story[E], opts ...Option) (*Runtime[E], error) {
	s := newSettings(opts)

	r := &Runtime[E]{
		story:      story,
		conditions: s.conditions,
		logger:     s.logger,
	}

	entry := story.EntryPosition()
	if _, err := r.lookup(entry); err != nil {
		return nil, err
	}
	r.pos = entry

	return r, nil
}

// Position returns the current position.
func (r *Runtime[E]) Position() domain.Position {
	return r.pos
}

// Story returns the story the runtime walks.
func (r *Runtime[E]) Story() *domain.Story[E] {
	return r.story
}

// Restore moves the runtime to a previously saved position without building a
// step or evaluating any condition. The position must exist in the story.
func (r *Runtime[E]) Restore(pos domain.Position) error {
	if _, err := r.lookup(pos); err != nil {
		return err
	}
	r.pos = pos
	return nil
}

// Current builds the step result for the current position without moving.
func (r *Runtime[E]) Current(state any) (domain.StepResult[E], error) {
	node, err := r.lookup(r.pos)
	if err != nil {
		return domain.StepResult[E]{}, err
	}
	return r.buildStep(r.pos, node, state)
}

// Choose takes the named choice on the current node. The choice must exist and
// its condition must hold for state. The choice's effect is reported ahead of
// the target node's arrival effect.
func (r *Runtime[E]) Choose(choiceID string, state any) (domain.StepResult[E], error) {
	node, err := r.lookup(r.pos)
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	choice, ok := node.Choice(choiceID)
	if !ok {
		return domain.StepResult[E]{}, &domain.StructuralError{
			Kind:     domain.MissingChoice,
			KnotID:   r.pos.KnotID,
			NodeID:   r.pos.NodeID,
			ChoiceID: choiceID,
		}
	}

	allowed, err := r.conditions.Allows(choice.Condition, state)
	if err != nil {
		return domain.StepResult[E]{}, err
	}
	if !allowed {
		return domain.StepResult[E]{}, &domain.ConditionUnmetError{
			ChoiceID:  choiceID,
			Condition: choice.Condition,
		}
	}

	dest := choice.Target.Resolve(r.pos.KnotID)
	var extra []E
	if choice.Effect != nil {
		extra = append(extra, *choice.Effect)
	}

	step, err := r.moveTo(dest, state, extra...)
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	r.logger.Debug("choice taken",
		"choice_id", choiceID,
		"knot_id", step.KnotID,
		"node_id", step.NodeID,
	)
	return step, nil
}

// Divert jumps unconditionally to target. An empty target knot means the
// current knot. No choice effect is involved.
func (r *Runtime[E]) Divert(target domain.Target, state any) (domain.StepResult[E], error) {
	step, err := r.moveTo(target.Resolve(r.pos.KnotID), state)
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	r.logger.Debug("diverted", "knot_id", step.KnotID, "node_id", step.NodeID)
	return step, nil
}

// moveTo validates dest, builds its step and only then commits the position.
func (r *Runtime[E]) moveTo(dest domain.Position, state any, extra ...E) (domain.StepResult[E], error) {
	node, err := r.lookup(dest)
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	step, err := r.buildStep(dest, node, state, extra...)
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	r.pos = dest
	return step, nil
}

// lookup resolves a position to its node or reports which part is missing.
func (r *Runtime[E]) lookup(pos domain.Position) (*domain.Node[E], error) {
	knot, ok := r.story.Knot(pos.KnotID)
	if !ok {
		return nil, &domain.StructuralError{Kind: domain.MissingKnot, KnotID: pos.KnotID, NodeID: pos.NodeID}
	}
	node, ok := knot.Node(pos.NodeID)
	if !ok {
		return nil, &domain.StructuralError{Kind: domain.MissingNode, KnotID: pos.KnotID, NodeID: pos.NodeID}
	}
	return node, nil
}
