// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the portal.
package observability

import "github.com/prometheus/client_golang/prometheus"

// HTTPBuckets covers page renders and API calls, 5ms to 10s.
var HTTPBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts HTTP requests by method, route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nordweb_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nordweb_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: HTTPBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthAttemptsTotal counts authentication outcomes by method
	// (password, session, apikey) and result.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nordweb_auth_attempts_total",
			Help: "Authentication attempts",
		},
		[]string{"method", "outcome"},
	)

	// RateLimitRejectedTotal counts requests rejected by a rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nordweb_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"scope"},
	)

	// ContactSubmissionsTotal counts contact form submissions by outcome
	// (delivered, undelivered, invalid, spam, limited).
	ContactSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nordweb_contact_submissions_total",
			Help: "Contact form submissions",
		},
		[]string{"outcome"},
	)

	// MailRequestsTotal counts requests to the mail provider.
	MailRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nordweb_mail_requests_total",
			Help: "Mail provider requests",
		},
		[]string{"provider", "status"},
	)

	// MailLatency records mail provider latency in seconds.
	MailLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nordweb_mail_latency_seconds",
			Help:    "Mail provider latency",
			Buckets: HTTPBuckets,
		},
		[]string{"provider"},
	)

	// DocumentBytesTotal counts bytes of uploaded document content.
	DocumentBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nordweb_document_upload_bytes_total",
			Help: "Uploaded document bytes",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthAttemptsTotal,
		RateLimitRejectedTotal,
		ContactSubmissionsTotal,
		MailRequestsTotal,
		MailLatency,
		DocumentBytesTotal,
	)
}
