package knots_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/knots"
	"github.com/aretw0/knots/pkg/adapters/redis"
	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/dsl"
	"github.com/aretw0/knots/pkg/observability"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type player struct {
	HasKey bool
}

func escapeStory() *domain.Story[string] {
	b := dsl.New[string]()
	b.Knot("cell").Node("wake").
		Text("You wake up in a cell.").
		Choice("search", "Search the straw", "straw").Effect("searched").
		Choice("wait", "Wait", "wake")
	b.Knot("cell").Node("straw").
		Text("A rusty key.").
		Effect("key").
		Choice("unlock", "Unlock the door", "yard/gate").When("has_key").
		Choice("back", "Lie down", "wake")
	b.Knot("yard").Node("gate").
		Text("Fresh air.").
		Ending("escaped", "You escaped")
	return b.MustBuild()
}

func hasKey(state any) bool {
	p, ok := state.(player)
	return ok && p.HasKey
}

func newEngine(t *testing.T, opts ...knots.Option) *knots.Engine[string] {
	t.Helper()
	opts = append([]knots.Option{knots.WithConditionHook("has_key", hasKey)}, opts...)
	eng, err := knots.New(escapeStory(), opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_Playthrough(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	step, err := eng.Start(ctx, "s1", player{})
	require.NoError(t, err)
	assert.Equal(t, "wake", step.NodeID)
	assert.Len(t, step.Choices, 2)

	step, err = eng.Choose(ctx, "s1", "search", player{})
	require.NoError(t, err)
	assert.Equal(t, "straw", step.NodeID)
	assert.Equal(t, []string{"searched", "key"}, step.Effects)
	assert.Equal(t, []domain.ChoiceView{{ID: "back", Label: "Lie down"}}, step.Choices, "guarded choice hidden without key")

	_, err = eng.Choose(ctx, "s1", "unlock", player{})
	assert.ErrorIs(t, err, domain.ErrConditionUnmet)

	s, err := eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Position{KnotID: "cell", NodeID: "straw"}, s.Position, "rejected choice does not move the session")

	step, err = eng.Choose(ctx, "s1", "unlock", player{HasKey: true})
	require.NoError(t, err)
	assert.True(t, step.Terminal())
	assert.Equal(t, "escaped", step.Ending.ID)

	s, err = eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.Ended)
	assert.Equal(t, []domain.Position{
		{KnotID: "cell", NodeID: "wake"},
		{KnotID: "cell", NodeID: "straw"},
		{KnotID: "yard", NodeID: "gate"},
	}, s.History)

	current, err := eng.Current(ctx, "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "gate", current.NodeID)
	assert.Empty(t, current.Choices)
}

func TestEngine_StartResumes(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.Start(ctx, "s1", nil)
	require.NoError(t, err)
	_, err = eng.Choose(ctx, "s1", "search", nil)
	require.NoError(t, err)

	step, err := eng.Start(ctx, "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "straw", step.NodeID)

	_, err = eng.Start(ctx, "", nil)
	assert.Error(t, err)
}

func TestEngine_Errors(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.Current(ctx, "ghost", nil)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = eng.Choose(ctx, "ghost", "search", nil)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = eng.Start(ctx, "s1", nil)
	require.NoError(t, err)

	_, err = eng.Choose(ctx, "s1", "fly", nil)
	assert.ErrorIs(t, err, domain.ErrStructural)

	_, err = eng.Divert(ctx, "s1", domain.Target{Knot: "nowhere", Node: "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrStructural)

	require.NoError(t, eng.End(ctx, "s1"))
	_, err = eng.Current(ctx, "s1", nil)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_MissingResolver(t *testing.T) {
	eng, err := knots.New(escapeStory())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Start(ctx, "s1", nil)
	require.NoError(t, err)

	_, err = eng.Choose(ctx, "s1", "search", nil)
	assert.ErrorIs(t, err, domain.ErrMissingResolver, "rendering the guarded choice needs the hook")

	s, err := eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "wake", s.Position.NodeID)
}

func TestEngine_FailedStartStoresNothing(t *testing.T) {
	b := dsl.New[string]()
	b.Knot("gate").Node("door").
		Text("A sealed door.").
		Choice("open", "Open it", "hall").If("ready")
	b.Knot("gate").Node("hall").Ending("in", "Inside")

	entered := 0
	eng, err := knots.New(b.MustBuild(),
		knots.WithExpressionEvaluator(func(expr string, state any) (bool, error) {
			if state == nil {
				return false, errors.New("no state")
			}
			return true, nil
		}),
		knots.WithLifecycleHooks(domain.LifecycleHooks{
			OnNodeEnter: func(context.Context, *domain.NodeEvent) { entered++ },
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Start(ctx, "s1", nil)
	require.Error(t, err)
	_, err = eng.Session(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "a start that fails to render must not be stored")
	assert.Zero(t, entered)

	step, err := eng.Start(ctx, "s1", player{})
	require.NoError(t, err)
	assert.Equal(t, "door", step.NodeID)
	assert.Equal(t, 1, entered, "the retried start creates the session and enters the entry node")
}

func TestEngine_Divert(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.Start(ctx, "s1", nil)
	require.NoError(t, err)

	step, err := eng.Divert(ctx, "s1", domain.Target{Knot: "yard", Node: "gate"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gate", step.NodeID)
	assert.True(t, step.Terminal())
}

func TestEngine_NewRejectsBadEntry(t *testing.T) {
	story := escapeStory()
	story.Entry = "attic"

	_, err := knots.New(story)
	assert.ErrorIs(t, err, domain.ErrStructural)

	_, err = knots.New[string](nil)
	assert.Error(t, err)
}

func TestEngine_Hooks(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s)
	}

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) { record("enter:" + e.NodeID) },
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) { record("leave:" + e.NodeID) },
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			record(string(e.Type) + ":" + e.From.NodeID + "->" + e.To.NodeID)
		},
	}

	eng := newEngine(t, knots.WithLifecycleHooks(hooks))
	ctx := context.Background()

	_, err := eng.Start(ctx, "s1", nil)
	require.NoError(t, err)
	_, err = eng.Choose(ctx, "s1", "search", nil)
	require.NoError(t, err)
	_, err = eng.Choose(ctx, "s1", "unlock", nil)
	require.Error(t, err)
	_, err = eng.Divert(ctx, "s1", domain.Target{Node: "wake"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"enter:wake",
		"leave:wake", "choice:wake->straw", "enter:straw",
		"leave:straw", "divert:straw->wake", "enter:wake",
	}, events, "failed transitions fire no hooks")
}

func TestEngine_MetricsAndAnalyze(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	story := escapeStory()
	story.Knots["cell"].Nodes["dark"] = &domain.Node[string]{ID: "dark"}

	eng, err := knots.New(story, knots.WithMetrics(m), knots.WithConditionHook("has_key", hasKey))
	require.NoError(t, err)

	result := eng.Analyze()
	assert.Len(t, result.ByKind(domain.IssueUnreachable), 1)
	assert.Equal(t, result, eng.Analyze(), "analysis is deterministic")

	ctx := context.Background()
	_, err = eng.Start(ctx, "s1", nil)
	require.NoError(t, err)
	_, err = eng.Choose(ctx, "s1", "search", nil)
	require.NoError(t, err)

	diagram, err := eng.Diagram(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, diagram, "class cell__dark unreachable;")
	assert.Contains(t, diagram, "class cell__straw current;")
	assert.Contains(t, diagram, "class cell__wake visited;")

	_, err = eng.Diagram(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_RedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	opts := []knots.Option{
		knots.WithStore(store),
		knots.WithLocker(redis.NewLocker(client, store.Prefix())),
	}
	ctx := context.Background()

	first := newEngine(t, opts...)
	_, err := first.Start(ctx, "shared", nil)
	require.NoError(t, err)
	_, err = first.Choose(ctx, "shared", "search", nil)
	require.NoError(t, err)

	// A second replica sees the position written by the first.
	second := newEngine(t, opts...)
	step, err := second.Current(ctx, "shared", nil)
	require.NoError(t, err)
	assert.Equal(t, "straw", step.NodeID)
}

func TestEngine_ConcurrentChoices(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.Start(ctx, "s1", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Choose(ctx, "s1", "wait", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := eng.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, s.History, 11)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	content := []byte(`
entry: intro
knots:
  intro:
    entry: start
    nodes:
      start:
        text: Hello
        choices:
          - id: go
            label: Go
            target: end
            effect: {gold: 1}
      end:
        text: Bye
        ending: {id: done}
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	eng, err := knots.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, eng.Name)

	ctx := context.Background()
	_, err = eng.Start(ctx, "s", nil)
	require.NoError(t, err)
	step, err := eng.Choose(ctx, "s", "go", nil)
	require.NoError(t, err)
	require.Len(t, step.Effects, 1)
	assert.Equal(t, 1, step.Effects[0]["gold"])
	assert.True(t, step.Terminal())

	_, err = knots.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrStructural))
}

func TestNewSessionID(t *testing.T) {
	a, b := knots.NewSessionID(), knots.NewSessionID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
