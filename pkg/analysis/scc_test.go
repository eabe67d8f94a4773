package analysis_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/knots/pkg/analysis"
	"github.com/aretw0/knots/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStronglyConnected_Partition(t *testing.T) {
	// start -> a <-> b -> c -> d -> c, d -> end, e isolated
	b := dsl.New[string]()
	k := b.Knot("k")
	k.Node("start").Choice("1", "", "a")
	k.Node("a").Choice("1", "", "b")
	k.Node("b").Choice("1", "", "a").Choice("2", "", "c")
	k.Node("c").Choice("1", "", "d")
	k.Node("d").Choice("1", "", "c").Choice("2", "", "end")
	k.Node("end").Ending("fin", "")
	k.Node("e")

	g := analysis.Build(b.MustBuild())
	reachable := analysis.Reachable(g)
	comps := analysis.StronglyConnected(g, reachable)

	seen := make(map[string]int)
	for _, c := range comps {
		for _, m := range c {
			seen[m]++
		}
	}
	assert.Len(t, seen, len(reachable))
	for m, count := range seen {
		assert.Equal(t, 1, count, "node %s must belong to exactly one component", m)
		_, ok := reachable[m]
		assert.True(t, ok)
	}

	var loops [][]string
	for _, c := range comps {
		if c.IsCandidateLoop(g) {
			loops = append(loops, c)
		}
	}
	require.Len(t, loops, 2)
	for _, c := range comps {
		assert.False(t, c.IsInescapable(g), "every loop has an exit: %v", c)
	}
}

func TestStronglyConnected_SingletonWithoutSelfEdge(t *testing.T) {
	b := dsl.New[string]()
	b.Knot("k").Node("a").Choice("1", "", "b")
	b.Knot("k").Node("b").Ending("fin", "")

	g := analysis.Build(b.MustBuild())
	comps := analysis.StronglyConnected(g, analysis.Reachable(g))

	require.Len(t, comps, 2)
	for _, c := range comps {
		assert.Len(t, c, 1)
		assert.False(t, c.IsCandidateLoop(g))
	}
}

func TestStronglyConnected_DeepChainDoesNotRecurse(t *testing.T) {
	const depth = 200000

	b := dsl.New[struct{}]()
	k := b.Knot("k")
	for i := 0; i < depth; i++ {
		k.Node(fmt.Sprintf("n%06d", i)).Choice("next", "", fmt.Sprintf("n%06d", i+1))
	}
	// Close the chain into one giant cycle.
	k.Node(fmt.Sprintf("n%06d", depth)).Choice("wrap", "", "n000000")

	g := analysis.Build(b.MustBuild())
	comps := analysis.StronglyConnected(g, analysis.Reachable(g))

	require.Len(t, comps, 1)
	assert.Len(t, comps[0], depth+1)
	assert.True(t, comps[0].IsInescapable(g))
	assert.Equal(t, "k::n000000", comps[0][0], "members are listed in discovery order")
}
