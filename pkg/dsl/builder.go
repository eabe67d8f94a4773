package dsl

import (
	"fmt"

	"github.com/aretw0/knots/pkg/domain"
)

// Builder manages the story construction.
type Builder[E any] struct {
	version string
	entry   string
	knots   map[string]*KnotBuilder[E]
	order   []string
}

// New creates a new story builder.
func New[E any]() *Builder[E] {
	return &Builder[E]{
		version: domain.DefaultVersion,
		knots:   make(map[string]*KnotBuilder[E]),
	}
}

// Version sets the story version tag.
func (b *Builder[E]) Version(v string) *Builder[E] {
	b.version = v
	return b
}

// Entry overrides the entry knot.
func (b *Builder[E]) Entry(knotID string) *Builder[E] {
	b.entry = knotID
	return b
}

// Knot creates a knot, or returns the existing builder if it was already added.
func (b *Builder[E]) Knot(id string) *KnotBuilder[E] {
	if kb, ok := b.knots[id]; ok {
		return kb
	}
	kb := &KnotBuilder[E]{
		id:    id,
		nodes: make(map[string]*NodeBuilder[E]),
	}
	b.knots[id] = kb
	b.order = append(b.order, id)
	return kb
}

// Build compiles the story. The builder may keep being used afterwards; every
// call returns an independent story.
func (b *Builder[E]) Build() (*domain.Story[E], error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("story has no knots")
	}

	story := &domain.Story[E]{
		Version: b.version,
		Entry:   b.entry,
		Knots:   make(map[string]*domain.Knot[E], len(b.knots)),
	}
	if story.Entry == "" {
		story.Entry = b.order[0]
	}

	for _, id := range b.order {
		if id == "" {
			return nil, fmt.Errorf("knot missing ID")
		}
		if err := domain.CheckID(id); err != nil {
			return nil, fmt.Errorf("knot %s: %w", id, err)
		}
		knot, err := b.knots[id].build()
		if err != nil {
			return nil, fmt.Errorf("knot %s: %w", id, err)
		}
		story.Knots[id] = knot
	}

	return story, nil
}

// MustBuild is Build for tests and static fixtures; it panics on error.
func (b *Builder[E]) MustBuild() *domain.Story[E] {
	story, err := b.Build()
	if err != nil {
		panic(err)
	}
	return story
}

// KnotBuilder configures a knot.
type KnotBuilder[E any] struct {
	id    string
	entry string
	nodes map[string]*NodeBuilder[E]
	order []string
}

// Entry overrides the knot's entry node.
func (k *KnotBuilder[E]) Entry(nodeID string) *KnotBuilder[E] {
	k.entry = nodeID
	return k
}

// Node creates a node in the knot, or returns the existing builder.
func (k *KnotBuilder[E]) Node(id string) *NodeBuilder[E] {
	if nb, ok := k.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder[E]{
		node: domain.Node[E]{ID: id},
		knot: k,
	}
	k.nodes[id] = nb
	k.order = append(k.order, id)
	return nb
}

func (k *KnotBuilder[E]) build() (*domain.Knot[E], error) {
	knot := &domain.Knot[E]{
		ID:    k.id,
		Entry: k.entry,
		Nodes: make(map[string]*domain.Node[E], len(k.nodes)),
	}
	if knot.Entry == "" && len(k.order) > 0 {
		knot.Entry = k.order[0]
	}

	for _, id := range k.order {
		if id == "" {
			return nil, fmt.Errorf("node missing ID")
		}
		if err := domain.CheckID(id); err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		node := k.nodes[id].snapshot()
		seen := make(map[string]bool, len(node.Choices))
		for _, c := range node.Choices {
			if seen[c.ID] {
				return nil, fmt.Errorf("node %s: duplicate choice ID %q", id, c.ID)
			}
			seen[c.ID] = true
		}
		knot.Nodes[id] = node
	}

	return knot, nil
}
