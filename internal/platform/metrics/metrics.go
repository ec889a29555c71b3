package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skydeals_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skydeals_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ListingOperations counts listing lifecycle events.
	ListingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skydeals_listing_operations_total",
			Help: "Total number of listing operations",
		},
		[]string{"operation", "status"},
	)

	// MediaUploadBytes observes uploaded asset sizes.
	MediaUploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skydeals_media_upload_bytes",
			Help:    "Size of uploaded media assets in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
		},
		[]string{"resource_type"},
	)

	// MailSent counts outbound emails by kind and outcome.
	MailSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skydeals_mail_sent_total",
			Help: "Total number of outbound emails",
		},
		[]string{"kind", "status"},
	)
)
