package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthErrorsCounter prometheus.Counter

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Interview scheduling metrics
	InterviewOperationsCounter prometheus.CounterVec
	ConflictsDetectedCounter   prometheus.CounterVec
	BulkScheduledCounter       prometheus.CounterVec
	SideChannelFailuresCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with the configured prefix
func InitMetrics(prefix string) {
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	InterviewOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_interview_operations_total",
			Help: "Total number of interview scheduling operations",
		},
		[]string{"operation"},
	)

	ConflictsDetectedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_conflicts_detected_total",
			Help: "Total number of scheduling conflicts detected",
		},
		[]string{"path"},
	)

	BulkScheduledCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_bulk_scheduled_total",
			Help: "Candidates scheduled or skipped by bulk runs",
		},
		[]string{"mode", "outcome"},
	)

	SideChannelFailuresCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_side_channel_failures_total",
			Help: "Total number of failed best-effort dispatches",
		},
		[]string{"task"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordInterviewOperation increments the counter for interview operations
func RecordInterviewOperation(operation string) {
	InterviewOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordConflictDetected increments the conflict counter for one check path
func RecordConflictDetected(path string) {
	ConflictsDetectedCounter.WithLabelValues(path).Inc()
}

// RecordBulkOutcome records how many candidates a bulk run scheduled and skipped
func RecordBulkOutcome(mode string, scheduled, skipped int) {
	BulkScheduledCounter.WithLabelValues(mode, "scheduled").Add(float64(scheduled))
	BulkScheduledCounter.WithLabelValues(mode, "skipped").Add(float64(skipped))
}

// RecordSideChannelFailure increments the failure counter for a task
func RecordSideChannelFailure(task string) {
	SideChannelFailuresCounter.WithLabelValues(task).Inc()
}

// RecordHTTPRequest records one handled HTTP request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(method, path, s).Inc()
	HttpRequestDuration.WithLabelValues(method, path, s).Observe(duration.Seconds())
}
