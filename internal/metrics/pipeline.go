package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsTotal tracks accepted alerts per severity
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_total",
			Help: "Total number of alerts accepted",
		},
		[]string{"severity"},
	)

	// AlertsRejectedTotal tracks alerts rejected during validation
	AlertsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_rejected_total",
			Help: "Total number of alerts rejected during validation",
		},
	)

	// EscalationsTotal tracks escalation dispatches per path
	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_escalations_total",
			Help: "Total number of escalation dispatches",
		},
		[]string{"path"},
	)

	// RetryAttemptsTotal tracks attempts made by the retry engine
	RetryAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_retry_attempts_total",
			Help: "Total number of retry engine attempts",
		},
	)

	// ContainmentCapturesTotal tracks failures captured per containment level
	ContainmentCapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_containment_captures_total",
			Help: "Total number of failures captured by containment scopes",
		},
		[]string{"level"},
	)

	// LogEntriesDroppedTotal tracks ingested log entries dropped as invalid
	LogEntriesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_log_entries_dropped_total",
			Help: "Total number of ingested log entries dropped as invalid",
		},
	)

	// SamplesIngestedTotal tracks custom metric samples recorded
	SamplesIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_samples_ingested_total",
			Help: "Total number of custom metric samples recorded",
		},
	)
)
