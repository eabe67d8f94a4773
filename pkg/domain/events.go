package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventChoice    EventType = "choice"
	EventDivert    EventType = "divert"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	KnotID   string `json:"knot_id"`
	NodeID   string `json:"node_id"`
	Terminal bool   `json:"terminal,omitempty"`
}

// TransitionEvent represents a choice taken or a divert performed.
type TransitionEvent struct {
	EventBase
	From     Position `json:"from"`
	To       Position `json:"to"`
	ChoiceID string   `json:"choice_id,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// They are only invoked after a transition has been committed.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnTransition func(context.Context, *TransitionEvent)
}
