package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strata_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strata_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Analysis metrics
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_analysis_runs_total",
			Help: "Total number of level analysis runs",
		},
		[]string{"symbol", "status"}, // status: success|error|cached
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strata_analysis_duration_seconds",
			Help:    "Level analysis duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"symbol"},
	)

	LevelsComputed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strata_levels_computed",
			Help: "Number of levels produced by the latest analysis run",
		},
		[]string{"symbol", "classification"}, // classification: support|resistance
	)

	SwingsDetected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strata_swings_detected",
			Help: "Number of swing points detected in the latest analysis run",
		},
		[]string{"symbol"},
	)

	// Cache metrics
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_cache_operations_total",
			Help: "Total analysis cache operations",
		},
		[]string{"operation"}, // operation: hit|miss|set|evict
	)

	// Report metrics
	ReportsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_reports_written_total",
			Help: "Total number of report files written",
		},
		[]string{"report", "status"}, // report: levels|swings
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"}, // database: clickhouse|redis
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strata_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"database", "operation"},
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_kafka_messages_total",
			Help: "Total Kafka messages produced",
		},
		[]string{"topic", "status"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(AnalysisRuns)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(LevelsComputed)
	prometheus.MustRegister(SwingsDetected)

	prometheus.MustRegister(CacheOperations)
	prometheus.MustRegister(ReportsWritten)

	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)

	prometheus.MustRegister(KafkaMessages)
}

// Register adds an extra collector to the default registry
func Register(c prometheus.Collector) {
	prometheus.MustRegister(c)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordAnalysisRun records one level analysis run
func RecordAnalysisRun(symbol string, duration time.Duration, supportCount, resistanceCount, swingCount int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AnalysisRuns.WithLabelValues(symbol, status).Inc()
	AnalysisDuration.WithLabelValues(symbol).Observe(duration.Seconds())

	if err == nil {
		LevelsComputed.WithLabelValues(symbol, "support").Set(float64(supportCount))
		LevelsComputed.WithLabelValues(symbol, "resistance").Set(float64(resistanceCount))
		SwingsDetected.WithLabelValues(symbol).Set(float64(swingCount))
	}
}

// RecordCachedAnalysis marks a run served entirely from cache
func RecordCachedAnalysis(symbol string) {
	AnalysisRuns.WithLabelValues(symbol, "cached").Inc()
}

// RecordCacheOperation records a cache hit, miss, set or eviction
func RecordCacheOperation(operation string) {
	CacheOperations.WithLabelValues(operation).Inc()
}

// RecordReportWritten records a report file write
func RecordReportWritten(report string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ReportsWritten.WithLabelValues(report, status).Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}
