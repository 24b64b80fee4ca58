// Package metrics exposes sync outcomes as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pulse-go/internal/pulse"
)

// DefaultNamespace prefixes every metric name unless the caller picks another.
const DefaultNamespace = "pulse"

// Collector implements pulse.Recorder on a private registry.
type Collector struct {
	registry *prometheus.Registry

	syncs         *prometheus.CounterVec
	syncDuration  *prometheus.HistogramVec
	batches       prometheus.Counter
	batchAccounts *prometheus.CounterVec
	batchDuration prometheus.Histogram
	lastBatch     prometheus.Gauge
}

// NewCollector creates a collector whose metrics are prefixed with namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.syncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "accounts_total",
			Help:      "Account sync attempts by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)

	c.syncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "account_duration_seconds",
			Help:      "Time taken to sync one account, fetch through persist",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"platform", "outcome"},
	)

	c.batches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "batches_total",
		Help:      "Completed batch syncs",
	})

	c.batchAccounts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "batch_accounts_total",
			Help:      "Accounts covered by batch syncs by outcome",
		},
		[]string{"outcome"},
	)

	c.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "batch_duration_seconds",
		Help:      "Time taken by one batch sync",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~200s
	})

	c.lastBatch = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "last_batch_timestamp_seconds",
		Help:      "Unix time the last batch sync finished",
	})

	c.registry.MustRegister(
		c.syncs,
		c.syncDuration,
		c.batches,
		c.batchAccounts,
		c.batchDuration,
		c.lastBatch,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordSync(platform pulse.Platform, outcome string, elapsed time.Duration) {
	c.syncs.WithLabelValues(string(platform), outcome).Inc()
	c.syncDuration.WithLabelValues(string(platform), outcome).Observe(elapsed.Seconds())
}

func (c *Collector) RecordBatch(synced, failed int, elapsed time.Duration) {
	c.batches.Inc()
	c.batchAccounts.WithLabelValues(pulse.OutcomeSuccess).Add(float64(synced))
	c.batchAccounts.WithLabelValues(pulse.OutcomeFailure).Add(float64(failed))
	c.batchDuration.Observe(elapsed.Seconds())
	c.lastBatch.SetToCurrentTime()
}

var _ pulse.Recorder = (*Collector)(nil)
