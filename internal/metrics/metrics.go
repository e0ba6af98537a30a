// Package metrics registers the Prometheus collectors surfaced at
// GET /api/v1/health/detailed: parser throughput, job queue depth, and
// cache hit/miss counters (spec.md §6, SPEC_FULL.md §3 domain stack).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the process-wide collector registry. A dedicated registry
// (rather than prometheus.DefaultRegisterer) keeps test runs from
// panicking on duplicate registration across package-level test binaries.
var Registry = prometheus.NewRegistry()

var (
	// ClaimsParsedTotal counts claims successfully assembled by the EDI
	// parser, labeled by transaction kind (837/835).
	ClaimsParsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimrisk",
			Name:      "parser_records_parsed_total",
			Help:      "Total EDI records assembled by the streaming parser.",
		},
		[]string{"transaction_kind"},
	)

	// ParseErrorsTotal counts records that failed to assemble.
	ParseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimrisk",
			Name:      "parser_errors_total",
			Help:      "Total EDI records that failed to parse.",
		},
		[]string{"transaction_kind"},
	)

	// JobQueueDepth reports the number of tasks currently queued in the
	// job dispatcher's inbox.
	JobQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claimrisk",
			Name:      "job_queue_depth",
			Help:      "Current number of tasks waiting in the job dispatcher inbox.",
		},
	)

	// CacheHitsTotal and CacheMissesTotal mirror the in-process cache's
	// own Stats(), exported for scraping.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimrisk",
			Name:      "cache_hits_total",
			Help:      "Total cache hits.",
		},
		[]string{"cache"},
	)
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimrisk",
			Name:      "cache_misses_total",
			Help:      "Total cache misses.",
		},
		[]string{"cache"},
	)
)

func init() {
	Registry.MustRegister(ClaimsParsedTotal, ParseErrorsTotal, JobQueueDepth, CacheHitsTotal, CacheMissesTotal)
}
