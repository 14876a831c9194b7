package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the matching module.
type Metrics struct {
	// Matching runs by urgency
	MatchRuns *prometheus.CounterVec

	// Eligible candidates per run
	CandidatesScored prometheus.Histogram

	// Full ranking latency
	MatchLatency prometheus.Histogram
}

// New creates a new Metrics instance with all matching module metrics registered.
func New() *Metrics {
	return &Metrics{
		MatchRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careflow_matching_runs_total",
			Help: "Total matching runs by urgency",
		}, []string{"urgency"}), // urgency: "standard", "immediate"

		CandidatesScored: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "careflow_matching_candidates_scored",
			Help:    "Number of candidates surviving the eligibility gate per run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		MatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "careflow_matching_duration_seconds",
			Help:    "Duration of a full matching run including risk lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRuns records a completed matching run.
func (m *Metrics) IncrementRuns(urgency string) {
	if m != nil {
		m.MatchRuns.WithLabelValues(urgency).Inc()
	}
}

// ObserveCandidates records how many candidates were scored in a run.
func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.CandidatesScored.Observe(float64(n))
	}
}

// ObserveMatchLatency records the duration of a matching run.
func (m *Metrics) ObserveMatchLatency(d time.Duration) {
	if m != nil {
		m.MatchLatency.Observe(d.Seconds())
	}
}
