package domain

// ChoiceView is the host-facing projection of a choice. Targets and effects
// are transition-only data and are never exposed.
type ChoiceView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// StepResult is what the runtime returns after every operation.
type StepResult[E any] struct {
	NodeID  string       `json:"node_id"`
	KnotID  string       `json:"knot_id"`
	Text    []string     `json:"text"`
	Tags    []string     `json:"tags"`
	Ending  *Ending      `json:"ending,omitempty"`
	Choices []ChoiceView `json:"choices"`

	// Effects holds the effects triggered by this step: the taken choice's
	// effect first, then the arrived-at node's effect.
	Effects []E `json:"effects"`
}

// Position returns the position the result was built at.
func (r StepResult[E]) Position() Position {
	return Position{KnotID: r.KnotID, NodeID: r.NodeID}
}

// Terminal reports whether the step reached an ending.
func (r StepResult[E]) Terminal() bool {
	return r.Ending != nil
}
