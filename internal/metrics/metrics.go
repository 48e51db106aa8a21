package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codejudge_executions_total",
			Help: "Total number of sandbox executions by outcome",
		},
		[]string{"language", "status"},
	)

	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codejudge_phase_duration_ms",
			Help:    "Pipeline phase duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"language", "phase"}, // phase: "compile", "run", "grade", "total"
	)

	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codejudge_active_jobs",
			Help: "Number of jobs currently being driven to a terminal state",
		},
	)

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codejudge_jobs_finished_total",
			Help: "Jobs that reached a terminal state",
		},
		[]string{"status"}, // completed, timeout, error
	)

	RegistrySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codejudge_job_registry_size",
			Help: "Jobs currently retained in memory",
		},
	)

	ContainerCreationTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codejudge_container_creation_ms",
			Help:    "Time to create and start a container",
			Buckets: []float64{50, 100, 200, 500, 1000, 2000},
		},
	)

	ContainerLifetime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codejudge_container_lifetime_ms",
			Help:    "Time from container creation to removal",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
	)

	CleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codejudge_cleanup_failures_total",
			Help: "Containers or workspaces that could not be released",
		},
	)

	ImagePulls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codejudge_image_pulls_total",
			Help: "Sandbox images pulled from a registry",
		},
		[]string{"image"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codejudge_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)
)
