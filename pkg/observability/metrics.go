package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "knots"

// Metrics holds the Prometheus collectors fed by the engine.
type Metrics struct {
	registry prometheus.Registerer
	gatherer prometheus.Gatherer

	nodeVisits  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	endings     *prometheus.CounterVec
	issues      *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the collectors on reg and serves them from gatherer.
// Pass prometheus.DefaultRegisterer and prometheus.DefaultGatherer to share the
// process-wide registry.
func NewMetricsWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		registry: reg,
		gatherer: gatherer,
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Total number of node visits",
			},
			[]string{"knot_id", "node_id"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of committed transitions by type",
			},
			[]string{"type"},
		),
		endings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "endings_total",
				Help:      "Total number of terminal nodes reached",
			},
			[]string{"knot_id", "node_id"},
		),
		issues: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "analysis_issues",
				Help:      "Issues found by the last story analysis, by kind",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.nodeVisits, m.transitions, m.endings, m.issues} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record visits, transitions and endings.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.KnotID, e.NodeID).Inc()
			if e.Terminal {
				m.endings.WithLabelValues(e.KnotID, e.NodeID).Inc()
			}
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(e.Type)).Inc()
		},
	}
}

// ObserveAnalysis publishes the issue counts of an analysis run.
// Every kind is set, so a fixed story drops back to zero.
func (m *Metrics) ObserveAnalysis(result domain.AnalysisResult) {
	counts := result.Counts()
	for _, kind := range []domain.IssueKind{domain.IssueUnreachable, domain.IssueDeadEnd, domain.IssueInescapableLoop} {
		m.issues.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
