package domain

// Payload is the effect type used by stories decoded from files and by every
// transport adapter. Embedders building stories in Go may use any type.
type Payload = map[string]any

// Story is a complete narrative graph. It is immutable once constructed.
type Story[E any] struct {
	Version string              `json:"version" yaml:"version" mapstructure:"version"`
	Entry   string              `json:"entry" yaml:"entry" mapstructure:"entry"`
	Knots   map[string]*Knot[E] `json:"knots" yaml:"knots" mapstructure:"knots"`
}

// Knot is a named section of the story.
type Knot[E any] struct {
	ID    string              `json:"id" yaml:"id" mapstructure:"id"`
	Entry string              `json:"entry" yaml:"entry" mapstructure:"entry"`
	Nodes map[string]*Node[E] `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
}

// Knot returns the knot registered under id.
func (s *Story[E]) Knot(id string) (*Knot[E], bool) {
	if s == nil || s.Knots == nil {
		return nil, false
	}
	k, ok := s.Knots[id]
	if !ok || k == nil {
		return nil, false
	}
	return k, true
}

// Node returns the node addressed by (knotID, nodeID).
func (s *Story[E]) Node(knotID, nodeID string) (*Node[E], bool) {
	k, ok := s.Knot(knotID)
	if !ok {
		return nil, false
	}
	return k.Node(nodeID)
}

// Node returns the node registered under id inside the knot.
func (k *Knot[E]) Node(id string) (*Node[E], bool) {
	if k == nil || k.Nodes == nil {
		return nil, false
	}
	n, ok := k.Nodes[id]
	if !ok || n == nil {
		return nil, false
	}
	return n, true
}

// EntryPosition returns the position a fresh runtime starts at.
// The knot's entry node is only known when the entry knot exists.
func (s *Story[E]) EntryPosition() Position {
	pos := Position{KnotID: s.Entry}
	if k, ok := s.Knot(s.Entry); ok {
		pos.NodeID = k.Entry
	}
	return pos
}
