// Package metrics provides Prometheus metrics for the rate-card pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every pipeline metric.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Pipeline throughput
	documents    *prometheus.CounterVec
	tables       *prometheus.CounterVec
	rows         *prometheus.CounterVec
	stageLatency *prometheus.HistogramVec

	// Runs
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastRunUnix    prometheus.Gauge
	sinkWrites     *prometheus.CounterVec
	benchmarkLevel *prometheus.GaugeVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	storedRuns           prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ratecards",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.documents = auto.NewCounterVec(m.counterOpts("documents_total",
		"Documents seen by outcome (processed, skipped, failed, duplicate)"), []string{"outcome"})
	m.tables = auto.NewCounterVec(m.counterOpts("tables_total",
		"Extracted tables by kind (raw, rate_card, rejected)"), []string{"kind"})
	m.rows = auto.NewCounterVec(m.counterOpts("rows_total",
		"Rows written per dataset (single, range, gold)"), []string{"dataset"})
	m.stageLatency = auto.NewHistogramVec(m.histogramOpts("stage_latency_milliseconds",
		"Per-document stage latency in milliseconds"), []string{"stage"})

	m.runs = auto.NewCounterVec(m.counterOpts("runs_total",
		"Pipeline runs by status"), []string{"status"})
	m.runDuration = auto.NewHistogram(m.histogramOpts("run_duration_milliseconds",
		"Pipeline run duration in milliseconds"))
	m.lastRunUnix = auto.NewGauge(m.gaugeOpts("last_run_unix",
		"Unix timestamp of the last finished run"))
	m.sinkWrites = auto.NewCounterVec(m.counterOpts("sink_writes_total",
		"Dataset writes by sink and status"), []string{"sink", "status"})
	m.benchmarkLevel = auto.NewGaugeVec(m.gaugeOpts("benchmark_mean_rate",
		"Mean day rate per benchmarked level"), []string{"target"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Documents waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Documents enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Documents dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Failed enqueues"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers processing a document"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Time to process one document in milliseconds"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Documents a worker failed to process"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Allocated heap bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Live goroutines"))
	m.storedRuns = auto.NewGauge(m.gaugeOpts("stored_runs", "Runs held in the run store"))
}

// RecordDocument counts a document outcome.
func RecordDocument(outcome string) {
	globalManager.documents.WithLabelValues(outcome).Inc()
}

// RecordTables counts extracted tables of a kind.
func RecordTables(kind string, n int) {
	globalManager.tables.WithLabelValues(kind).Add(float64(n))
}

// RecordRows counts rows produced for a dataset.
func RecordRows(dataset string, n int) {
	globalManager.rows.WithLabelValues(dataset).Add(float64(n))
}

// RecordStageLatency records how long a stage took for one document.
func RecordStageLatency(stage string, d time.Duration) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(float64(d.Microseconds()) / 1000)
}

// RecordRun records a finished run.
func RecordRun(status string, d time.Duration, finished time.Time) {
	globalManager.runs.WithLabelValues(status).Inc()
	globalManager.runDuration.Observe(float64(d.Microseconds()) / 1000)
	globalManager.lastRunUnix.Set(float64(finished.Unix()))
}

// RecordSinkWrite counts a dataset write.
func RecordSinkWrite(sink, status string) {
	globalManager.sinkWrites.WithLabelValues(sink, status).Inc()
}

// UpdateBenchmarkMean publishes the mean rate of a benchmark target.
func UpdateBenchmarkMean(target string, mean float64) {
	globalManager.benchmarkLevel.WithLabelValues(target).Set(mean)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records per-document worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry holding the pipeline metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// UpdateStoredRuns sets the number of runs in the store.
func UpdateStoredRuns(n int) {
	globalManager.storedRuns.Set(float64(n))
}
