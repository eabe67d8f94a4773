package runtime

import (
	"github.com/aretw0/knots/pkg/domain"
)

// buildStep renders the host-facing view of node. Effects are the extra effects
// (the taken choice's, if any) followed by the node's own arrival effect.
func (r *Runtime[E]) buildStep(pos domain.Position, node *domain.Node[E], state any, extra ...E) (domain.StepResult[E], error) {
	choices, err := r.visibleChoices(node, state)
	if err != nil {
		return domain.StepResult[E]{}, err
	}

	effects := make([]E, 0, len(extra)+1)
	effects = append(effects, extra...)
	if node.Effect != nil {
		effects = append(effects, *node.Effect)
	}

	tags := make([]string, len(node.Tags))
	copy(tags, node.Tags)

	var ending *domain.Ending
	if node.Ending != nil {
		e := *node.Ending
		ending = &e
	}

	return domain.StepResult[E]{
		NodeID:  pos.NodeID,
		KnotID:  pos.KnotID,
		Text:    node.Text.Lines(),
		Tags:    tags,
		Ending:  ending,
		Choices: choices,
		Effects: effects,
	}, nil
}

// visibleChoices filters the node's choices by their conditions.
func (r *Runtime[E]) visibleChoices(node *domain.Node[E], state any) ([]domain.ChoiceView, error) {
	views := make([]domain.ChoiceView, 0, len(node.Choices))
	for _, c := range node.Choices {
		ok, err := r.conditions.Allows(c.Condition, state)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		views = append(views, domain.ChoiceView{ID: c.ID, Label: c.Label})
	}
	return views, nil
}
