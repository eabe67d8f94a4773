package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeEnter(ctx, &domain.NodeEvent{KnotID: "intro", NodeID: "start"})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{KnotID: "finale", NodeID: "win", Terminal: true})
	hooks.OnTransition(ctx, &domain.TransitionEvent{EventBase: domain.EventBase{Type: domain.EventChoice}})
	hooks.OnTransition(ctx, &domain.TransitionEvent{EventBase: domain.EventBase{Type: domain.EventChoice}})
	hooks.OnTransition(ctx, &domain.TransitionEvent{EventBase: domain.EventBase{Type: domain.EventDivert}})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `knots_node_visits_total{knot_id="intro",node_id="start"} 1`)
	assert.Contains(t, body, `knots_endings_total{knot_id="finale",node_id="win"} 1`)
	assert.Contains(t, body, `knots_transitions_total{type="choice"} 2`)
	assert.Contains(t, body, `knots_transitions_total{type="divert"} 1`)
	assert.NotContains(t, body, `knots_endings_total{knot_id="intro"`)
}

func TestMetrics_ObserveAnalysis(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	m.ObserveAnalysis(domain.AnalysisResult{Issues: []domain.AnalysisIssue{
		{Kind: domain.IssueDeadEnd},
		{Kind: domain.IssueDeadEnd},
		{Kind: domain.IssueInescapableLoop},
	}})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `knots_analysis_issues{kind="DEAD_END"} 2`)
	assert.Contains(t, body, `knots_analysis_issues{kind="INESCAPABLE_LOOP"} 1`)
	assert.Contains(t, body, `knots_analysis_issues{kind="UNREACHABLE"} 0`)
}

func TestNewMetricsWith_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetricsWith(reg, reg)
	require.NoError(t, err)

	_, err = observability.NewMetricsWith(reg, reg)
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, "a-enter") },
	}
	b := domain.LifecycleHooks{
		OnNodeEnter:  func(context.Context, *domain.NodeEvent) { calls = append(calls, "b-enter") },
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "b-trans") },
	}

	hooks := observability.Combine(a, domain.LifecycleHooks{}, b)
	require.NotNil(t, hooks.OnNodeEnter)
	require.NotNil(t, hooks.OnTransition)
	assert.Nil(t, hooks.OnNodeLeave)

	hooks.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	hooks.OnTransition(context.Background(), &domain.TransitionEvent{})
	assert.Equal(t, []string{"a-enter", "b-enter", "b-trans"}, calls)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := observability.LogHooks(logger)

	hooks.OnNodeEnter(context.Background(), &domain.NodeEvent{KnotID: "k", NodeID: "n", Terminal: true})
	hooks.OnTransition(context.Background(), &domain.TransitionEvent{
		EventBase: domain.EventBase{Type: domain.EventChoice},
		From:      domain.Position{KnotID: "k", NodeID: "a"},
		To:        domain.Position{KnotID: "k", NodeID: "b"},
		ChoiceID:  "go",
	})

	out := buf.String()
	assert.Contains(t, out, "msg=node_enter")
	assert.Contains(t, out, "terminal=true")
	assert.Contains(t, out, "msg=choice")
	assert.Contains(t, out, "from=k/a")
	assert.Contains(t, out, "choice_id=go")
}
