// Package metrics records series request outcomes with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the client's metrics hook using Prometheus. A nil
// *Recorder records nothing.
type Recorder struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	filled   prometheus.Counter
}

// New creates a Recorder registered with reg. Pass prometheus.DefaultRegisterer
// for the process-wide registry, or a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fredseries_requests_total",
				Help: "Series requests by selector and outcome (ok or error kind)",
			},
			[]string{"selector", "outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fredseries_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		filled: f.NewCounter(
			prometheus.CounterOpts{
				Name: "fredseries_filled_dates_total",
				Help: "Requested dates that had no value and were gap-filled",
			},
		),
	}
}

// RecordRequest counts a finished request.
func (r *Recorder) RecordRequest(selector, outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(selector, outcome).Inc()
}

// RecordStage records how long a pipeline stage took.
func (r *Recorder) RecordStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFilled counts gap-filled dates.
func (r *Recorder) RecordFilled(n int) {
	if r == nil {
		return
	}
	r.filled.Add(float64(n))
}
