package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshare_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"scope"},
	)

	// Upload Metrics
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_media_uploads_total",
			Help: "Total number of media uploads by kind",
		},
		[]string{"kind", "status"},
	)

	MediaUploadSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshare_media_upload_size_bytes",
			Help:    "Size of uploaded media in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 10), // 64KB to 16GB
		},
		[]string{"kind"},
	)

	// Read model Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_read_model_queries_total",
			Help: "Total number of read model pipeline executions",
		},
		[]string{"pipeline", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshare_read_model_query_duration_seconds",
			Help:    "Read model pipeline latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"pipeline"},
	)

	// Mutation Metrics
	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_toggles_total",
			Help: "Total number of toggles by target kind and resulting state",
		},
		[]string{"kind", "state"},
	)

	CascadeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_cascade_failures_total",
			Help: "Total number of failed best-effort dependent cleanups",
		},
		[]string{"entity"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshare_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)

	StorageBytesTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_storage_bytes_transferred_total",
			Help: "Total bytes transferred to/from storage",
		},
		[]string{"operation"},
	)

	// Database Metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshare_database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Event Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_events_published_total",
			Help: "Total number of side-effect events published",
		},
		[]string{"type", "status"},
	)

	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_events_processed_total",
			Help: "Total number of side-effect events processed",
		},
		[]string{"type", "status"},
	)

	EventsDeadLetteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_events_dead_lettered_total",
			Help: "Total number of events moved to the dead letter queue",
		},
		[]string{"type"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshare_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRateLimited records a throttled request
func RecordRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

// RecordUpload records a media upload of the given kind
func RecordUpload(kind string, size int64, err error) {
	MediaUploadsTotal.WithLabelValues(kind, status(err)).Inc()
	if err == nil {
		MediaUploadSizeBytes.WithLabelValues(kind).Observe(float64(size))
	}
}

// RecordQuery records a read model pipeline execution
func RecordQuery(pipeline string, duration float64, err error) {
	QueriesTotal.WithLabelValues(pipeline, status(err)).Inc()
	QueryDuration.WithLabelValues(pipeline).Observe(duration)
}

// RecordToggle records the state a toggle left behind
func RecordToggle(kind string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	TogglesTotal.WithLabelValues(kind, state).Inc()
}

// RecordCascadeFailure records a failed dependent cleanup
func RecordCascadeFailure(entity string) {
	CascadeFailuresTotal.WithLabelValues(entity).Inc()
}

// RecordStorageOperation records a storage operation
func RecordStorageOperation(operation, status string, duration float64, bytesTransferred int64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
	StorageBytesTransferred.WithLabelValues(operation).Add(float64(bytesTransferred))
}

// RecordDatabaseOperation records a database operation
func RecordDatabaseOperation(operation, status string, duration float64) {
	DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheAccess records cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordEventPublished records a publish attempt
func RecordEventPublished(eventType string, err error) {
	EventsPublishedTotal.WithLabelValues(eventType, status(err)).Inc()
}

// RecordEventProcessed records a consumed event
func RecordEventProcessed(eventType string, err error) {
	EventsProcessedTotal.WithLabelValues(eventType, status(err)).Inc()
}

// RecordEventDeadLettered records an event given up on
func RecordEventDeadLettered(eventType string) {
	EventsDeadLetteredTotal.WithLabelValues(eventType).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
