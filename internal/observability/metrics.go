// Package observability exports resolution-pass metrics.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives the outcome of each resolution pass.
type Recorder interface {
	// Observe records an operation outcome and its duration.
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// CountFiles records how many files of a pass ended up in each outcome
	// ("classified", "unstructured", "matched").
	CountFiles(ctx context.Context, operation, outcome string, n int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Observe(context.Context, string, bool, time.Duration) {}

func (Nop) CountFiles(context.Context, string, string, int) {}

// PrometheusRecorder publishes pass durations and file counts.
type PrometheusRecorder struct {
	durations *prometheus.HistogramVec
	passes    *prometheus.CounterVec
	files     *prometheus.CounterVec
}

// NewPrometheusRecorder registers the collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hcsgrid",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of resolution passes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"operation"}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hcsgrid",
			Name:      "resolve_passes_total",
			Help:      "Resolution passes by outcome.",
		}, []string{"operation", "status"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hcsgrid",
			Name:      "resolve_files_total",
			Help:      "Files seen by resolution passes, by outcome.",
		}, []string{"operation", "outcome"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.passes, r.files} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.passes.WithLabelValues(operation, status).Inc()
}

func (r *PrometheusRecorder) CountFiles(_ context.Context, operation, outcome string, n int) {
	if operation == "" || n <= 0 {
		return
	}
	r.files.WithLabelValues(operation, outcome).Add(float64(n))
}
