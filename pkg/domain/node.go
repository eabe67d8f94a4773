package domain

// Node represents a single story beat.
type Node[E any] struct {
	ID   string   `json:"id" yaml:"id" mapstructure:"id"`
	Text Text     `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`

	// Choices are the outgoing edges, in display order.
	Choices []Choice[E] `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`

	// Effect is surfaced to the host every time the node is arrived at.
	Effect *E `json:"effect,omitempty" yaml:"effect,omitempty" mapstructure:"effect"`

	// Ending marks the node terminal.
	Ending *Ending `json:"ending,omitempty" yaml:"ending,omitempty" mapstructure:"ending"`
}

// Ending marks a node as terminal.
type Ending struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// IsTerminal reports whether the node carries an ending marker.
func (n *Node[E]) IsTerminal() bool {
	return n != nil && n.Ending != nil
}

// Choice looks up a choice by ID.
func (n *Node[E]) Choice(id string) (*Choice[E], bool) {
	if n == nil {
		return nil, false
	}
	for i := range n.Choices {
		if n.Choices[i].ID == id {
			return &n.Choices[i], true
		}
	}
	return nil, false
}
