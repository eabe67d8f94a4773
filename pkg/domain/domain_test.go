package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestText_Unmarshal(t *testing.T) {
	t.Run("YAML scalar", func(t *testing.T) {
		var txt domain.Text
		require.NoError(t, yaml.Unmarshal([]byte(`"Hello"`), &txt))
		assert.Equal(t, domain.Text{"Hello"}, txt)
	})

	t.Run("YAML sequence", func(t *testing.T) {
		var txt domain.Text
		require.NoError(t, yaml.Unmarshal([]byte("- one\n- two\n"), &txt))
		assert.Equal(t, domain.Text{"one", "two"}, txt)
	})

	t.Run("YAML mapping is rejected", func(t *testing.T) {
		var txt domain.Text
		assert.Error(t, yaml.Unmarshal([]byte("a: b\n"), &txt))
	})

	t.Run("JSON string and array", func(t *testing.T) {
		var a, b domain.Text
		require.NoError(t, json.Unmarshal([]byte(`"Hi"`), &a))
		require.NoError(t, json.Unmarshal([]byte(`["x","y"]`), &b))
		assert.Equal(t, domain.Text{"Hi"}, a)
		assert.Equal(t, domain.Text{"x", "y"}, b)
	})

	t.Run("JSON number is rejected", func(t *testing.T) {
		var txt domain.Text
		assert.Error(t, json.Unmarshal([]byte(`42`), &txt))
	})
}

func TestTarget_Shorthand(t *testing.T) {
	assert.Equal(t, domain.Target{Knot: "hallway", Node: "entry"}, domain.ParseTarget("hallway/entry"))
	assert.Equal(t, domain.Target{Node: "look"}, domain.ParseTarget(" look "))

	var fromYAML domain.Target
	require.NoError(t, yaml.Unmarshal([]byte(`hallway/entry`), &fromYAML))
	assert.Equal(t, "hallway/entry", fromYAML.String())

	var fromJSON domain.Target
	require.NoError(t, json.Unmarshal([]byte(`{"node":"look"}`), &fromJSON))
	assert.Equal(t, domain.Position{KnotID: "intro", NodeID: "look"}, fromJSON.Resolve("intro"))
}

func TestPosition_Key(t *testing.T) {
	pos := domain.Position{KnotID: "intro", NodeID: "start"}
	knot, node := domain.SplitKey(pos.Key())
	assert.Equal(t, "intro", knot)
	assert.Equal(t, "start", node)

	knot, node = domain.SplitKey("bare")
	assert.Empty(t, knot)
	assert.Equal(t, "bare", node)
}

func TestCheckID(t *testing.T) {
	assert.NoError(t, domain.CheckID("intro"))
	assert.NoError(t, domain.CheckID("a:b"))
	assert.Error(t, domain.CheckID("a::b"))
	assert.Error(t, domain.CheckID("::"))
}

func TestErrors_Is(t *testing.T) {
	var err error = &domain.StructuralError{Kind: domain.MissingChoice, KnotID: "k", NodeID: "n", ChoiceID: "c"}
	assert.True(t, errors.Is(err, domain.ErrStructural))
	assert.Contains(t, err.Error(), "choice 'c'")

	err = &domain.ConditionUnmetError{ChoiceID: "open", Condition: domain.HookCondition("hasKey")}
	assert.True(t, errors.Is(err, domain.ErrConditionUnmet))
	assert.Contains(t, err.Error(), "hook:hasKey")

	err = &domain.MissingResolverError{Condition: domain.ExpressionCondition("gold > 3")}
	assert.True(t, errors.Is(err, domain.ErrMissingResolver))
	assert.Contains(t, err.Error(), "gold > 3")
}

func TestStory_Lookup(t *testing.T) {
	story := &domain.Story[string]{
		Entry: "intro",
		Knots: map[string]*domain.Knot[string]{
			"intro": {ID: "intro", Entry: "start", Nodes: map[string]*domain.Node[string]{
				"start": {ID: "start", Choices: []domain.Choice[string]{{ID: "go", Target: domain.Target{Node: "start"}}}},
			}},
		},
	}

	assert.Equal(t, domain.Position{KnotID: "intro", NodeID: "start"}, story.EntryPosition())

	node, ok := story.Node("intro", "start")
	require.True(t, ok)
	_, ok = node.Choice("go")
	assert.True(t, ok)
	_, ok = node.Choice("nope")
	assert.False(t, ok)

	_, ok = story.Node("missing", "start")
	assert.False(t, ok)

	missing := &domain.Story[string]{Entry: "ghost"}
	assert.Equal(t, domain.Position{KnotID: "ghost"}, missing.EntryPosition())
}
