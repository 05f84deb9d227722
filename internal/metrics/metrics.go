// internal/metrics/metrics.go

// Package metrics exposes build and watch counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inkwell"

// Recorder owns its registry so several recorders (tests, parallel servers)
// never collide on registration.
type Recorder struct {
	registry      *prometheus.Registry
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	itemsWritten  *prometheus.GaugeVec
	watchEvents   *prometheus.CounterVec
}

// NewRecorder creates a Recorder with Go runtime collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "builds_total", Help: "Build passes by result",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "build_duration_seconds", Help: "Wall time of build passes",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		itemsWritten: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "items_written", Help: "Files written by the most recent successful build",
		}, []string{"kind"}),
		watchEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "watch_events_total", Help: "Filesystem events seen by the watcher",
		}, []string{"decision"}),
	}
	r.registry.MustRegister(r.builds, r.buildDuration, r.itemsWritten, r.watchEvents)
	r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// BuildSucceeded records a completed build and the number of files it wrote.
func (r *Recorder) BuildSucceeded(d time.Duration, posts, pages, static int) {
	if r == nil {
		return
	}
	r.builds.WithLabelValues("success").Inc()
	r.buildDuration.Observe(d.Seconds())
	r.itemsWritten.WithLabelValues("post").Set(float64(posts))
	r.itemsWritten.WithLabelValues("page").Set(float64(pages))
	r.itemsWritten.WithLabelValues("static").Set(float64(static))
}

// BuildFailed records a build that aborted.
func (r *Recorder) BuildFailed(d time.Duration) {
	if r == nil {
		return
	}
	r.builds.WithLabelValues("failure").Inc()
	r.buildDuration.Observe(d.Seconds())
}

// WatchEvent records whether an event triggered a rebuild or was ignored.
func (r *Recorder) WatchEvent(rebuild bool) {
	if r == nil {
		return
	}
	decision := "ignored"
	if rebuild {
		decision = "rebuild"
	}
	r.watchEvents.WithLabelValues(decision).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
