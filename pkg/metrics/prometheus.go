package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingest
	recordsIngested  *prometheus.CounterVec
	recordsRejected  *prometheus.CounterVec
	batchesDuplicate prometheus.Counter
	stagedRecords    prometheus.Gauge

	// Linkage
	reconcileRuns     *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	groupsProcessed   prometheus.Counter
	matches           *prometheus.CounterVec
	singletons        prometheus.Counter
	originConflicts   prometheus.Counter
	masterRows        *prometheus.GaugeVec
	identities        *prometheus.GaugeVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeWriteLatency prometheus.Histogram
	storeQueryLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "licmaster",
		subsystem:        "linkage",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounterVec(
		m.counterOpts("records_ingested_total", "Records accepted into staging by source state"),
		[]string{"state"},
	)
	m.recordsRejected = auto.NewCounterVec(
		m.counterOpts("records_rejected_total", "Records rejected during ingest by source state and reason"),
		[]string{"state", "reason"},
	)
	m.batchesDuplicate = auto.NewCounter(m.counterOpts("batches_duplicate_total", "Ingest batches ignored because their batch id was already seen"))
	m.stagedRecords = auto.NewGauge(m.gaugeOpts("staged_records", "Records waiting for the next reconcile"))

	m.reconcileRuns = auto.NewCounterVec(
		m.counterOpts("reconcile_runs_total", "Reconcile runs by result"),
		[]string{"result"},
	)
	m.reconcileDuration = auto.NewHistogram(m.histogramOpts("reconcile_duration_milliseconds", "Wall time of a reconcile run in milliseconds"))
	m.groupsProcessed = auto.NewCounter(m.counterOpts("groups_processed_total", "Name groups linked"))
	m.matches = auto.NewCounterVec(
		m.counterOpts("matches_total", "Clusters merged into one identity by confidence"),
		[]string{"confidence"},
	)
	m.singletons = auto.NewCounter(m.counterOpts("singletons_total", "Records emitted as their own identity"))
	m.originConflicts = auto.NewCounter(m.counterOpts("origin_conflicts_total", "Name groups split because of conflicting origin states"))
	m.masterRows = auto.NewGaugeVec(
		m.gaugeOpts("master_rows", "Rows in the current master list by view"),
		[]string{"view"},
	)
	m.identities = auto.NewGaugeVec(
		m.gaugeOpts("identities", "Distinct identities in the current master list by view"),
		[]string{"view"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Name groups waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum number of queued name groups"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Name groups enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Name groups dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Failed enqueue attempts"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured linkage workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active", "Workers currently linking a name group"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Time to link one name group in milliseconds"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Name groups that failed to link"))

	m.storeWriteLatency = auto.NewHistogram(m.histogramOpts("store_write_latency_milliseconds", "Time to replace a master list in milliseconds"))
	m.storeQueryLatency = auto.NewHistogram(m.histogramOpts("store_query_latency_milliseconds", "Time to answer a store query in milliseconds"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds"))
}

// Ingest

// RecordIngested counts n records staged from state.
func RecordIngested(state string, n int) {
	globalManager.recordsIngested.WithLabelValues(state).Add(float64(n))
}

// RecordRejected counts a record dropped during ingest.
func RecordRejected(state, reason string) {
	globalManager.recordsRejected.WithLabelValues(state, reason).Inc()
}

// RecordBatchDuplicate counts a resubmitted batch.
func RecordBatchDuplicate() {
	globalManager.batchesDuplicate.Inc()
}

// UpdateStagedRecords sets the staged record gauge.
func UpdateStagedRecords(count int) {
	globalManager.stagedRecords.Set(float64(count))
}

// Linkage

// RecordReconcileRun counts a reconcile run; result is "success" or "error".
func RecordReconcileRun(result string, latencyMs float64) {
	globalManager.reconcileRuns.WithLabelValues(result).Inc()
	globalManager.reconcileDuration.Observe(latencyMs)
}

// RecordGroupProcessed counts a linked name group.
func RecordGroupProcessed() {
	globalManager.groupsProcessed.Inc()
}

// RecordMatch counts a merged cluster.
func RecordMatch(confidence string) {
	globalManager.matches.WithLabelValues(confidence).Inc()
}

// RecordSingletons counts records emitted alone.
func RecordSingletons(n int) {
	globalManager.singletons.Add(float64(n))
}

// RecordOriginConflict counts a group split by origin state.
func RecordOriginConflict() {
	globalManager.originConflicts.Inc()
}

// UpdateMasterList sets the row and identity gauges for a view.
func UpdateMasterList(view string, rows, identities int) {
	globalManager.masterRows.WithLabelValues(view).Set(float64(rows))
	globalManager.identities.WithLabelValues(view).Set(float64(identities))
}

// Queue

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
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

// Worker

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records how long one group took.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Store

// RecordStoreWriteLatency records a master list replacement.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records a store read.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// HTTP

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
