package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/recoverly/flowedit/pkg/domain"
)

const namespace = "flowedit"

// Metrics holds the editor collectors.
type Metrics struct {
	registry *prometheus.Registry

	edits        *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	undos        prometheus.Counter
	redos        prometheus.Counter
	saves        prometheus.Counter
	historyDepth prometheus.Histogram
}

// NewMetrics creates the collectors on a private registry, so several
// instances can coexist in tests.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edits_total",
				Help:      "Committed graph edits by operation.",
			},
			[]string{"op"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edits_rejected_total",
				Help:      "Rejected graph edits by operation.",
			},
			[]string{"op"},
		),
		undos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_total",
			Help:      "Successful undo steps.",
		}),
		redos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redo_total",
			Help:      "Successful redo steps.",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Automations persisted.",
		}),
		historyDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Snapshots held by a session after each committed edit.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50},
		}),
	}
	m.registry.MustRegister(
		m.edits, m.rejected, m.undos, m.redos, m.saves, m.historyDepth,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record every event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdit: func(e *domain.EditEvent) {
			m.edits.WithLabelValues(e.Op).Inc()
			m.historyDepth.Observe(float64(e.HistoryLen))
		},
		OnEditRejected: func(e *domain.EditEvent) {
			m.rejected.WithLabelValues(e.Op).Inc()
		},
		OnUndo: func(*domain.EditEvent) { m.undos.Inc() },
		OnRedo: func(*domain.EditEvent) { m.redos.Inc() },
		OnSave: func(*domain.EditEvent) { m.saves.Inc() },
	}
}
