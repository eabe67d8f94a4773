package domain

import (
	"fmt"
	"strings"
)

// Position is the runtime's only mutable state.
type Position struct {
	KnotID string `json:"knot_id" yaml:"knot_id"`
	NodeID string `json:"node_id" yaml:"node_id"`
}

// Key returns the opaque graph key for the position.
func (p Position) Key() string {
	return NodeKey(p.KnotID, p.NodeID)
}

// Target converts the position into a fully qualified divert target.
func (p Position) Target() Target {
	return Target{Knot: p.KnotID, Node: p.NodeID}
}

func (p Position) String() string {
	return p.KnotID + TargetSeparator + p.NodeID
}

// NodeKey concatenates a knot and node ID into a single graph key.
func NodeKey(knotID, nodeID string) string {
	return knotID + KeySeparator + nodeID
}

// CheckID rejects knot and node IDs that would make NodeKey ambiguous.
func CheckID(id string) error {
	if strings.Contains(id, KeySeparator) {
		return fmt.Errorf("id %q must not contain %q", id, KeySeparator)
	}
	return nil
}

// SplitKey reverses NodeKey. Keys without a separator yield an empty knot.
func SplitKey(key string) (knotID, nodeID string) {
	if knot, node, ok := strings.Cut(key, KeySeparator); ok {
		return knot, node
	}
	return "", key
}
