package dsl

import "github.com/aretw0/knots/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder[E any] struct {
	node domain.Node[E]
	knot *KnotBuilder[E]
}

// Text sets the display text of the node.
func (n *NodeBuilder[E]) Text(lines ...string) *NodeBuilder[E] {
	n.node.Text = domain.NewText(lines...)
	return n
}

// Tags appends free-form tags.
func (n *NodeBuilder[E]) Tags(tags ...string) *NodeBuilder[E] {
	n.node.Tags = append(n.node.Tags, tags...)
	return n
}

// Effect sets the effect triggered when the node is arrived at.
func (n *NodeBuilder[E]) Effect(effect E) *NodeBuilder[E] {
	n.node.Effect = &effect
	return n
}

// Ending marks the node terminal.
func (n *NodeBuilder[E]) Ending(id, label string) *NodeBuilder[E] {
	n.node.Ending = &domain.Ending{ID: id, Label: label}
	return n
}

// Choice appends a choice leading to target ("node" or "knot/node").
func (n *NodeBuilder[E]) Choice(id, label, target string) *ChoiceBuilder[E] {
	n.node.Choices = append(n.node.Choices, domain.Choice[E]{
		ID:     id,
		Label:  label,
		Target: domain.ParseTarget(target),
	})
	return &ChoiceBuilder[E]{node: n, index: len(n.node.Choices) - 1}
}

// Node switches to another node of the same knot.
func (n *NodeBuilder[E]) Node(id string) *NodeBuilder[E] {
	return n.knot.Node(id)
}

// snapshot copies the node so later builder calls do not leak into built stories.
func (n *NodeBuilder[E]) snapshot() *domain.Node[E] {
	node := n.node
	node.Text = append(domain.Text(nil), n.node.Text...)
	node.Tags = append([]string(nil), n.node.Tags...)
	node.Choices = append([]domain.Choice[E](nil), n.node.Choices...)
	return &node
}

// ChoiceBuilder configures the choice most recently added to a node.
type ChoiceBuilder[E any] struct {
	node  *NodeBuilder[E]
	index int
}

func (c *ChoiceBuilder[E]) choice() *domain.Choice[E] {
	return &c.node.node.Choices[c.index]
}

// Effect sets the effect triggered when the choice is taken.
func (c *ChoiceBuilder[E]) Effect(effect E) *ChoiceBuilder[E] {
	c.choice().Effect = &effect
	return c
}

// When guards the choice with a named hook.
func (c *ChoiceBuilder[E]) When(hook string) *ChoiceBuilder[E] {
	c.choice().Condition = domain.HookCondition(hook)
	return c
}

// If guards the choice with an expression for the host's evaluator.
func (c *ChoiceBuilder[E]) If(expression string) *ChoiceBuilder[E] {
	c.choice().Condition = domain.ExpressionCondition(expression)
	return c
}

// Choice appends another choice to the same node.
func (c *ChoiceBuilder[E]) Choice(id, label, target string) *ChoiceBuilder[E] {
	return c.node.Choice(id, label, target)
}

// Done returns to the node builder.
func (c *ChoiceBuilder[E]) Done() *NodeBuilder[E] {
	return c.node
}
