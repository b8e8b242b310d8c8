// Package metrics exposes Prometheus instrumentation for the capture and
// classification pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters and histograms. It carries its own
// registry so tests can create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	FramesTotal       prometheus.Counter
	FacesTotal        prometheus.Counter
	AbsentFramesTotal prometheus.Counter
	CommandsTotal     *prometheus.CounterVec
	DispatchFailures  prometheus.Counter
	DetectDuration    prometheus.Histogram
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kathakali_frames_total",
			Help: "Frames read from the camera.",
		}),
		FacesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kathakali_faces_total",
			Help: "Frames in which a face was detected.",
		}),
		AbsentFramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kathakali_absent_frames_total",
			Help: "Frames in which no face was detected.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kathakali_commands_total",
			Help: "Media commands emitted, by command.",
		}, []string{"command"}),
		DispatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kathakali_dispatch_failures_total",
			Help: "Media command dispatches that returned an error.",
		}),
		DetectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kathakali_detect_duration_seconds",
			Help:    "Face detection latency per frame.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.FramesTotal,
		m.FacesTotal,
		m.AbsentFramesTotal,
		m.CommandsTotal,
		m.DispatchFailures,
		m.DetectDuration,
	)

	return m
}

// Handler returns an HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
