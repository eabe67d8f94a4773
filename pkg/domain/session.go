package domain

// Session is the persisted form of a runtime: its position plus the trail of
// positions visited so far.
type Session struct {
	ID       string     `json:"id"`
	Position Position   `json:"position"`
	History  []Position `json:"history,omitempty"`
	Ended    bool       `json:"ended,omitempty"`

	// Sealed carries the encrypted session when a store middleware hides
	// the trail. Position and History are empty in that case.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a session starting at pos.
func NewSession(id string, pos Position) *Session {
	return &Session{
		ID:       id,
		Position: pos,
		History:  []Position{pos},
	}
}

// Advance records a move to pos.
func (s *Session) Advance(pos Position, ended bool) {
	s.Position = pos
	s.History = append(s.History, pos)
	s.Ended = ended
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]Position(nil), s.History...)
	return &c
}
