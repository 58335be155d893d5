package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// climatology build pipeline.
type Metrics struct {
	IngestsTotal      *prometheus.CounterVec // labels: source={http,kafka}, outcome={success,error}
	TrainingFallbacks prometheus.Counter
	BiasCorrections   prometheus.Counter
	Relocations       prometheus.Counter
	ParsedRecords     prometheus.Histogram
	BuildDuration     prometheus.Histogram
	ConsumerRunning   prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		IngestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatology",
			Name:      "ingests_total",
			Help:      "Climatology builds by ingestion source and outcome.",
		}, []string{"source", "outcome"}),
		TrainingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatology",
			Name:      "training_fallbacks_total",
			Help:      "Builds that degraded to the midpoint-weight fallback.",
		}),
		BiasCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatology",
			Name:      "bias_corrections_total",
			Help:      "Builds where the temperature bias calibration was applied.",
		}),
		Relocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatology",
			Name:      "relocations_total",
			Help:      "Builds that included a latitude relocation.",
		}),
		ParsedRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climatology",
			Name:      "parsed_records",
			Help:      "Valid daily records parsed per ingestion event.",
			Buckets:   []float64{10, 100, 365, 1000, 3650, 10000, 20000},
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climatology",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete parse-train-forecast build.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ConsumerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climatology",
			Name:      "consumer_running",
			Help:      "1 when the Kafka consume loop is active, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.IngestsTotal,
		m.TrainingFallbacks,
		m.BiasCorrections,
		m.Relocations,
		m.ParsedRecords,
		m.BuildDuration,
		m.ConsumerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		IngestsTotal:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climatology", Name: "ingests_total"}, []string{"source", "outcome"}),
		TrainingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climatology", Name: "training_fallbacks_total"}),
		BiasCorrections:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climatology", Name: "bias_corrections_total"}),
		Relocations:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climatology", Name: "relocations_total"}),
		ParsedRecords:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climatology", Name: "parsed_records"}),
		BuildDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climatology", Name: "build_duration_seconds"}),
		ConsumerRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climatology", Name: "consumer_running"}),
	}
}
