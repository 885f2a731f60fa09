// Package metrics records regeneration outcomes as Prometheus metrics.
//
// Metrics collected:
//   - keepblock_regenerations_total: artifacts processed by language and status
//   - keepblock_regeneration_errors_total: failures by kind
//   - keepblock_preserved_bytes: size of preserved regions carried over
//   - keepblock_regeneration_duration_seconds: time spent per artifact
//
// The CLI writes them to a node-exporter textfile after a run; the HTTP
// service exposes them on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "keepblock").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry.
	Registry *prometheus.Registry
}

// Option configures a Recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "keepblock",
		Buckets:   prometheus.DefBuckets,
	}
}

// Recorder holds the regeneration metrics.
type Recorder struct {
	registry       *prometheus.Registry
	regenerations  *prometheus.CounterVec
	errors         *prometheus.CounterVec
	preservedBytes prometheus.Histogram
	duration       *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: config.Registry,
		regenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "regenerations_total",
			Help:        "Total number of artifacts processed, by language and result status",
			ConstLabels: config.ConstLabels,
		}, []string{"language", "status"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "regeneration_errors_total",
			Help:        "Total number of failed regenerations, by error kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		preservedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "preserved_bytes",
			Help:        "Size of the preserved region carried into regenerated artifacts",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 64, 256, 1024, 4096, 16384, 65536},
		}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "regeneration_duration_seconds",
			Help:        "Time spent regenerating one artifact",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"language"}),
	}

	config.Registry.MustRegister(r.regenerations, r.errors, r.preservedBytes, r.duration)
	return r
}

// Observe records one successful regeneration.
func (r *Recorder) Observe(language, status string, preservedBytes int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.regenerations.WithLabelValues(language, status).Inc()
	r.preservedBytes.Observe(float64(preservedBytes))
	r.duration.WithLabelValues(language).Observe(elapsed.Seconds())
}

// Fail records one failed regeneration.
func (r *Recorder) Fail(kind string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(kind).Inc()
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler exposing the metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics in the text exposition format for the
// node-exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
