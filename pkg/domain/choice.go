package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Choice is a labeled, optionally guarded edge from one node to another.
type Choice[E any] struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`

	Target Target `json:"target" yaml:"target" mapstructure:"target"`

	// Effect is surfaced ahead of the target node's own effect when the choice is taken.
	Effect *E `json:"effect,omitempty" yaml:"effect,omitempty" mapstructure:"effect"`

	// Condition guards the choice. Nil means always available.
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
}

// Target addresses the node a choice or a divert leads to.
// An empty Knot means "stay in the current knot".
type Target struct {
	Knot string `json:"knot,omitempty" yaml:"knot,omitempty" mapstructure:"knot"`
	Node string `json:"node" yaml:"node" mapstructure:"node"`
}

// ParseTarget reads the "knot/node" or "node" shorthand.
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	if knot, node, ok := strings.Cut(s, TargetSeparator); ok {
		return Target{Knot: knot, Node: node}
	}
	return Target{Node: s}
}

// Resolve fills in the knot from the current one when omitted.
func (t Target) Resolve(currentKnot string) Position {
	knot := t.Knot
	if knot == "" {
		knot = currentKnot
	}
	return Position{KnotID: knot, NodeID: t.Node}
}

func (t Target) String() string {
	if t.Knot == "" {
		return t.Node
	}
	return t.Knot + TargetSeparator + t.Node
}

// UnmarshalYAML accepts either the shorthand string or a {knot, node} mapping.
func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*t = ParseTarget(s)
		return nil
	}
	type plain Target
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	*t = Target(p)
	return nil
}

// UnmarshalJSON accepts either the shorthand string or a {knot, node} object.
func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTarget(s)
		return nil
	}
	type plain Target
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	*t = Target(p)
	return nil
}

// ConditionKind identifies how a condition is resolved.
type ConditionKind string

const (
	ConditionHook       ConditionKind = "hook"
	ConditionExpression ConditionKind = "expression"
)

// Condition guards a choice. Exactly one of Hook or Expression is set:
// Hook names a predicate registered by the host, Expression is handed verbatim
// to the host's expression evaluator.
type Condition struct {
	Hook       string `json:"hook,omitempty" yaml:"hook,omitempty" mapstructure:"hook"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`
}

// HookCondition builds a hook guard.
func HookCondition(name string) *Condition {
	return &Condition{Hook: name}
}

// ExpressionCondition builds an expression guard.
func ExpressionCondition(expr string) *Condition {
	return &Condition{Expression: expr}
}

// Kind reports which resolver the condition needs. Hook wins if both are set.
func (c *Condition) Kind() ConditionKind {
	if c.Hook != "" {
		return ConditionHook
	}
	return ConditionExpression
}

func (c *Condition) String() string {
	if c == nil {
		return "<none>"
	}
	if c.Kind() == ConditionHook {
		return "hook:" + c.Hook
	}
	return "expression:" + c.Expression
}
