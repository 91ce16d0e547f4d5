// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheme_reports_built_total",
			Help: "Total number of recommendation reports built",
		},
		[]string{"source", "status"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheme_report_duration_seconds",
			Help:    "Duration of report builds including the catalog load",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheme_recommendations_returned",
			Help:    "Number of eligible schemes returned per report",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	CatalogLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_load_failures_total",
			Help: "Total number of failed catalog loads",
		},
		[]string{"source", "error_code"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
