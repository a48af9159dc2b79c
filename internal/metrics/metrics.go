// Package metrics holds Prometheus instruments that are used across the
// resolver.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehost_resolutions_total",
			Help: "Requests classified, partitioned by origin (frontend, backend, external).",
		}, []string{"origin"})

	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehost_lookup_total",
			Help: "Domain-mapping lookups, partitioned by result.",
		}, []string{"result"})

	ContextualizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehost_contextualize_total",
			Help: "Session contextualisation changes, partitioned by operation.",
		}, []string{"op"})

	CachedHosts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursehost_cached_hosts",
			Help: "Number of host mappings currently held in memory.",
		})

	CacheEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursehost_cache_evict_total",
			Help: "Cumulative number of host mappings evicted from the cache.",
		})
)

func init() {
	prometheus.MustRegister(
		ResolutionsTotal,
		LookupTotal,
		ContextualizeTotal,
		CachedHosts,
		CacheEvictTotal,
	)
}
