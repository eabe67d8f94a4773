package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Text is the display text of a node. Story files may write it as a single
// string or as a list of lines; both decode into an ordered sequence.
type Text []string

// NewText wraps the given lines, returning an empty (non-nil) sequence when none are given.
func NewText(lines ...string) Text {
	if len(lines) == 0 {
		return Text{}
	}
	return Text(lines)
}

// Lines returns a copy of the text lines, never nil.
func (t Text) Lines() []string {
	out := make([]string, len(t))
	copy(out, t)
	return out
}

// UnmarshalYAML accepts a scalar string or a sequence of strings.
func (t *Text) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*t = Text{s}
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := value.Decode(&lines); err != nil {
			return err
		}
		*t = Text(lines)
		return nil
	default:
		return fmt.Errorf("text: expected string or list of strings at line %d", value.Line)
	}
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text{s}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("text: expected string or array of strings: %w", err)
	}
	*t = Text(lines)
	return nil
}
