package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyportal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	KeyValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyportal_key_validations_total",
			Help: "Key validations by outcome",
		},
		[]string{"result"},
	)

	CodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyportal_codes_issued_total",
			Help: "Total number of codes handed out",
		},
	)

	CodeRequestsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyportal_code_requests_rejected_total",
			Help: "Code requests refused, by reason",
		},
		[]string{"reason"},
	)
)
