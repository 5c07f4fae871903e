package metrics

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var idSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path", "status"},
	)

	ImagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "images_processed_total",
			Help: "Total number of images processed by flow and outcome",
		},
		[]string{"flow", "status"},
	)

	ImageProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_processing_duration_seconds",
			Help:    "Duration of a single image transform and encode",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"flow"},
	)

	ImageOutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_output_bytes",
			Help:    "Size of encoded output images in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"format"},
	)

	QualitySearchIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quality_search_iterations",
			Help:    "Encodes spent by the size-constrained quality search",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	QualitySearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quality_search_total",
			Help: "Quality searches by result",
		},
		[]string{"result"},
	)

	PreviewCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_cache_total",
			Help: "Preview cache lookups by result",
		},
		[]string{"result"},
	)

	FileDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_deletions_total",
			Help: "Total number of file deletions",
		},
		[]string{"status"},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	StorageBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_bytes_total",
			Help: "Total bytes transferred to/from storage",
		},
		[]string{"operation"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		},
	)

	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total webhook delivery attempts by outcome",
		},
		[]string{"status"},
	)

	WebhookDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_seconds",
			Help:    "Webhook delivery duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "environment", "service"},
	)

	AppUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_up",
			Help: "Application is up and running",
		},
	)
)

// NormalizePath collapses numeric path segments so record ids do not
// explode label cardinality.
func NormalizePath(path string) string {
	return idSegment.ReplaceAllString(path, "/:id$1")
}

func RecordImageProcessed(flow, status string, durationSeconds float64) {
	ImagesProcessedTotal.WithLabelValues(flow, status).Inc()
	if status == "ok" {
		ImageProcessingDuration.WithLabelValues(flow).Observe(durationSeconds)
	}
}

func RecordImageOutput(format string, sizeBytes int) {
	ImageOutputBytes.WithLabelValues(format).Observe(float64(sizeBytes))
}

// RecordQualitySearch records a search that was applicable to the format.
func RecordQualitySearch(converged bool, iterations int) {
	result := "converged"
	if !converged {
		result = "best_effort"
	}
	QualitySearchTotal.WithLabelValues(result).Inc()
	QualitySearchIterations.Observe(float64(iterations))
}

func RecordPreviewCache(hit bool) {
	if hit {
		PreviewCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	PreviewCacheTotal.WithLabelValues("miss").Inc()
}

func RecordFileDeletion(status string) {
	FileDeletionsTotal.WithLabelValues(status).Inc()
}

func RecordRateLimitHit() {
	RateLimitHits.Inc()
}

func RecordWebhookDelivery(status string, durationSeconds float64) {
	WebhookDeliveriesTotal.WithLabelValues(status).Inc()
	WebhookDeliveryDuration.Observe(durationSeconds)
}

// RecordWebhookDropped counts events that never reached an endpoint, for
// example because the queue was full or the circuit was open.
func RecordWebhookDropped(reason string) {
	WebhookDeliveriesTotal.WithLabelValues("dropped_" + reason).Inc()
}

func SetAppInfo(version, environment, service string) {
	AppInfo.WithLabelValues(version, environment, service).Set(1)
	AppUp.Set(1)
}
