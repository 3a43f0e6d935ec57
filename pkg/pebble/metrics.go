package pebble

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics of a Boundary.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pebble").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pebble",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics counts cell activity. One Metrics may be shared by many
// boundaries. A nil *Metrics records nothing.
type Metrics struct {
	instancesCreated   *prometheus.CounterVec
	reads              *prometheus.CounterVec
	writes             *prometheus.CounterVec
	contractViolations *prometheus.CounterVec
	liveInstances      *prometheus.GaugeVec
}

// NewMetrics registers pebble's metrics and returns them.
// Registering twice with the same registry panics, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		instancesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "instances_created_total",
			Help:        "Total number of live cell instances constructed",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		reads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reads_total",
			Help:        "Total number of cell reads through a manager",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of cell writes through a manager",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		contractViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "contract_violations_total",
			Help:        "Total number of cell contract violations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		liveInstances: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_instances",
			Help:        "Number of live cell instances across undisposed boundaries",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

func (m *Metrics) created(kind Kind) {
	if m == nil {
		return
	}
	m.instancesCreated.WithLabelValues(kind.String()).Inc()
	m.liveInstances.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) released(kind Kind, n int) {
	if m == nil || n == 0 {
		return
	}
	m.liveInstances.WithLabelValues(kind.String()).Sub(float64(n))
}

func (m *Metrics) read(kind Kind) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) write(kind Kind) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) violation(code string) {
	if m == nil {
		return
	}
	m.contractViolations.WithLabelValues(code).Inc()
}
