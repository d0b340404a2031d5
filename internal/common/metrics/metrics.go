// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdmissionsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_admissions_accepted_total",
			Help: "Total number of applications accepted against job capacity",
		},
	)

	AdmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_admissions_rejected_total",
			Help: "Total number of rejected admission attempts",
		},
		[]string{"reason"},
	)

	AdmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "coordinator_admission_duration_seconds",
			Help: "Duration of the atomic apply transaction in seconds",
		},
	)

	JobsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_jobs_created_total",
			Help: "Total number of jobs created",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
