// Package metrics exposes Prometheus collectors for catalog lookups and RPC probes.
package metrics

import (
	"time"

	"chain-registry/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Collector records registry and probe telemetry on its own registry.
type Collector struct {
	registry *prometheus.Registry

	lookups      *prometheus.CounterVec
	probes       *prometheus.CounterVec
	probeLatency *prometheus.HistogramVec
	catalogSize  *prometheus.GaugeVec
	sweeps       prometheus.Counter
}

// NewCollector creates a collector; an empty namespace defaults to "chain_registry".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "chain_registry"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "lookups_total",
			Help:      "Chain lookups by kind (key, evm, solana) and result (hit, miss)",
		},
		[]string{"kind", "result"},
	)

	c.probes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "probes_total",
			Help:      "RPC probes by chain type and outcome",
		},
		[]string{"chain_type", "working"},
	)

	c.probeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "probe_duration_seconds",
			Help:      "Latency of successful RPC probes",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"chain_type"},
	)

	c.catalogSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "chains",
			Help:      "Number of chains in the loaded catalog",
		},
		[]string{"chain_type"},
	)

	c.sweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "sweeps_total",
			Help:      "Completed background RPC sweeps",
		},
	)

	c.registry.MustRegister(c.lookups, c.probes, c.probeLatency, c.catalogSize, c.sweeps)

	return c
}

// Registry returns the underlying registry for exposition.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordLookup(kind string, found bool) {
	result := ResultMiss
	if found {
		result = ResultHit
	}
	c.lookups.WithLabelValues(kind, result).Inc()
}

func (c *Collector) RecordProbe(chainType entity.ChainType, working bool, latency time.Duration) {
	label := "false"
	if working {
		label = "true"
		c.probeLatency.WithLabelValues(chainType.String()).Observe(latency.Seconds())
	}
	c.probes.WithLabelValues(chainType.String(), label).Inc()
}

// RecordCatalog sets the catalog size gauge per chain type.
func (c *Collector) RecordCatalog(chains []entity.Chain) {
	counts := make(map[entity.ChainType]int)
	for _, chain := range chains {
		counts[chain.ChainType]++
	}
	c.catalogSize.Reset()
	for chainType, n := range counts {
		c.catalogSize.WithLabelValues(chainType.String()).Set(float64(n))
	}
}

func (c *Collector) RecordSweep() {
	c.sweeps.Inc()
}
