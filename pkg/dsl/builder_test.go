package dsl_test

import (
	"testing"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleStory(t *testing.T) {
	b := dsl.New[string]()

	b.Knot("intro").Node("start").
		Text("You wake up.", "It is dark.").
		Tags("opening").
		Choice("look", "Look around", "look").Effect("looked").
		Choice("leave", "Leave", "hallway/entry").When("hasKey")

	b.Knot("intro").Node("look").
		Text("A door.").
		Effect("saw_door").
		Choice("open", "Open", "hallway/entry").If("strength > 3")

	b.Knot("hallway").Node("entry").Ending("escaped", "You escaped")

	story, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultVersion, story.Version)
	assert.Equal(t, "intro", story.Entry)
	assert.Equal(t, "start", story.Knots["intro"].Entry)
	assert.Equal(t, "entry", story.Knots["hallway"].Entry)

	start, ok := story.Node("intro", "start")
	require.True(t, ok)
	assert.Equal(t, domain.Text{"You wake up.", "It is dark."}, start.Text)
	assert.Equal(t, []string{"opening"}, start.Tags)
	require.Len(t, start.Choices, 2)

	look := start.Choices[0]
	assert.Equal(t, domain.Target{Node: "look"}, look.Target)
	require.NotNil(t, look.Effect)
	assert.Equal(t, "looked", *look.Effect)
	assert.Nil(t, look.Condition)

	leave := start.Choices[1]
	assert.Equal(t, domain.Target{Knot: "hallway", Node: "entry"}, leave.Target)
	require.NotNil(t, leave.Condition)
	assert.Equal(t, domain.ConditionHook, leave.Condition.Kind())

	lookNode, _ := story.Node("intro", "look")
	require.NotNil(t, lookNode.Effect)
	assert.Equal(t, domain.ConditionExpression, lookNode.Choices[0].Condition.Kind())

	end, _ := story.Node("hallway", "entry")
	assert.True(t, end.IsTerminal())
	assert.Equal(t, "You escaped", end.Ending.Label)
}

func TestBuilder_Overrides(t *testing.T) {
	b := dsl.New[int]().Version("2").Entry("second")
	b.Knot("first").Node("a").Choice("go", "Go", "second/b")
	b.Knot("second").Entry("b").Node("z")
	b.Knot("second").Node("b").Ending("end", "")

	story, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "2", story.Version)
	assert.Equal(t, "second", story.Entry)
	assert.Equal(t, "b", story.Knots["second"].Entry)
}

func TestBuilder_Errors(t *testing.T) {
	_, err := dsl.New[int]().Build()
	assert.Error(t, err)

	b := dsl.New[int]()
	b.Knot("k").Node("n").Choice("x", "X", "n").Choice("x", "Again", "n")
	_, err = b.Build()
	assert.ErrorContains(t, err, "duplicate choice ID")

	// knot "a" / node "b::c" and knot "a::b" / node "c" would share a graph key.
	b = dsl.New[int]().Entry("a::b")
	b.Knot("a").Node("b::c").Choice("loop", "Loop", "b::c")
	b.Knot("a::b").Node("c").Text("Plain")
	_, err = b.Build()
	assert.ErrorContains(t, err, "must not contain")

	b = dsl.New[int]()
	b.Knot("a").Node("b::c")
	_, err = b.Build()
	assert.ErrorContains(t, err, "must not contain")
}

func TestBuilder_IndependentSnapshots(t *testing.T) {
	b := dsl.New[int]()
	n := b.Knot("k").Node("n").Ending("end", "")

	first := b.MustBuild()
	n.Choice("more", "More", "n")
	second := b.MustBuild()

	assert.Empty(t, first.Knots["k"].Nodes["n"].Choices)
	assert.Len(t, second.Knots["k"].Nodes["n"].Choices, 1)
}
