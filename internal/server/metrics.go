package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/RyanBlaney/brainwave-monitor/pkg/eeg"
)

const namespace = "brainwave"

// Metrics holds the Prometheus collectors exposed on /metrics
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	assessments     *prometheus.CounterVec
	bandPower       *prometheus.GaugeVec
	thetaAlphaRatio prometheus.Gauge
}

// NewMetrics registers the monitor collectors on a fresh registry. Window and
// ingest figures are read at scrape time through the given providers.
func NewMetrics(assessor AssessmentProvider, stats StatsProvider) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		requestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		assessments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Assessments served, by cognitive state",
			},
			[]string{"state"},
		),

		bandPower: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "band_relative_power",
				Help:      "Relative band power of the last complete assessment",
			},
			[]string{"band"},
		),

		thetaAlphaRatio: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "theta_alpha_ratio",
				Help:      "Theta/alpha ratio of the last complete assessment",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_fill_ratio",
			Help:      "Fraction of the rolling window currently filled",
		},
		func() float64 {
			n, capacity := assessor.WindowFill()
			if capacity == 0 {
				return 0
			}
			return float64(n) / float64(capacity)
		},
	)

	if stats != nil {
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_ingested_total",
				Help:      "Samples pushed into the rolling window",
			},
			func() float64 { return float64(stats().SamplesIngested) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_pull_errors_total",
				Help:      "Failed reads from the sample source",
			},
			func() float64 { return float64(stats().PullErrors) },
		)
	}

	registry.MustRegister(collectors.NewGoCollector())

	return m
}

// Registry returns the registry backing /metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAssessment records a served assessment
func (m *Metrics) ObserveAssessment(a eeg.Assessment) {
	m.assessments.WithLabelValues(a.CognitiveState).Inc()
	if !a.Ready() {
		return
	}

	m.bandPower.WithLabelValues("theta").Set(a.Theta)
	m.bandPower.WithLabelValues("alpha").Set(a.Alpha)
	m.bandPower.WithLabelValues("beta").Set(a.Beta)
	m.thetaAlphaRatio.Set(a.ThetaAlphaRatio)
}

// middleware records request count and latency per route
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.requestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
