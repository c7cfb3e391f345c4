package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ETL service

var (
	// Resolver metrics
	ResolverLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sportsviz_resolver_load_duration_seconds",
			Help:    "Duration of ranking history loads in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	ResolverResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sportsviz_resolver_resolve_duration_seconds",
			Help:    "Duration of rank query batches in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	ResolverLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsviz_resolver_lookups_total",
			Help: "Total number of rank lookups by outcome",
		},
		[]string{"outcome"},
	)

	ResolverDuplicatesCollapsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsviz_resolver_duplicates_collapsed_total",
			Help: "Total number of same-day ranking snapshots collapsed on load",
		},
	)

	ResolverEntities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsviz_resolver_entities",
			Help: "Number of entities in the most recently loaded history",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsviz_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsviz_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsviz_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsviz_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsviz_rows_written_total",
			Help: "Total number of rows written per sink and table",
		},
		[]string{"sink", "table"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsviz_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsviz_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsviz_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Pipeline metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsviz_job_runs_total",
			Help: "Total number of pipeline job runs",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsviz_job_duration_seconds",
			Help:    "Duration of pipeline jobs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	NotableOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsviz_notable_outcomes_total",
			Help: "Total number of classified matches by outcome",
		},
		[]string{"job", "outcome"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsviz_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsviz_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsviz_last_successful_run_timestamp",
			Help: "Timestamp of last successful pipeline run",
		},
	)
)

// RecordLoad records a ranking history load
func RecordLoad(entities, collapsed int, duration float64) {
	ResolverLoadDuration.Observe(duration)
	ResolverEntities.Set(float64(entities))
	ResolverDuplicatesCollapsed.Add(float64(collapsed))
}

// RecordResolve records a batch of rank lookups
func RecordResolve(resolved, unresolved int, duration float64) {
	ResolverResolveDuration.Observe(duration)
	ResolverLookupsTotal.WithLabelValues("resolved").Add(float64(resolved))
	ResolverLookupsTotal.WithLabelValues("unresolved").Add(float64(unresolved))
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordRowsWritten records rows written to a sink ("db" or "csv")
func RecordRowsWritten(sink, table string, n int) {
	RowsWritten.WithLabelValues(sink, table).Add(float64(n))
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordJob records a pipeline job run
func RecordJob(job, status string, duration float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration)
}

// RecordRunSuccess marks the end of a fully successful pipeline run
func RecordRunSuccess() {
	LastSuccessfulRun.SetToCurrentTime()
}

// RecordOutcome records n classified matches with the same outcome
func RecordOutcome(job, outcome string, n int) {
	NotableOutcomesTotal.WithLabelValues(job, outcome).Add(float64(n))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
