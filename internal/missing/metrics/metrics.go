package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the missing-episode module.
type Metrics struct {
	// Episodes reported by risk level
	EpisodesReported *prometheus.CounterVec

	// Episodes marked returned
	EpisodesReturned prometheus.Counter

	// Episode duration from report to return
	EpisodeDuration prometheus.Histogram
}

// New creates a new Metrics instance with all missing module metrics registered.
func New() *Metrics {
	return &Metrics{
		EpisodesReported: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careflow_missing_episodes_reported_total",
			Help: "Total missing episodes reported by risk level",
		}, []string{"risk_level"}), // risk_level: "LOW", "MEDIUM", "HIGH"

		EpisodesReturned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "careflow_missing_episodes_returned_total",
			Help: "Total missing episodes marked returned",
		}),

		EpisodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "careflow_missing_episode_duration_hours",
			Help:    "Duration of a missing episode from report to return",
			Buckets: []float64{1, 4, 12, 24, 48, 72, 168, 336},
		}),
	}
}

// IncrementReported records a new episode.
func (m *Metrics) IncrementReported(riskLevel string) {
	if m != nil {
		m.EpisodesReported.WithLabelValues(riskLevel).Inc()
	}
}

// ObserveReturn records a return and the episode's duration.
func (m *Metrics) ObserveReturn(d time.Duration) {
	if m != nil {
		m.EpisodesReturned.Inc()
		m.EpisodeDuration.Observe(d.Hours())
	}
}
