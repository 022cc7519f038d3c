// Package metrics holds the Prometheus instruments of the analytics pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record paths.
const (
	PathAuthenticated = "authenticated"
	PathAnonymous     = "anonymous"
	PathBuffered      = "buffered"
)

// Drop reasons.
const (
	ReasonConsent  = "consent"
	ReasonMismatch = "mismatch"
	ReasonDisposed = "disposed"
)

// Write targets.
const (
	TargetEvents         = "events"
	TargetBuffer         = "buffer"
	TargetUserSummary    = "user_summary"
	TargetProductSummary = "product_summary"
	TargetMirror         = "mirror"
)

// Merge outcomes.
const (
	MergeEmpty   = "empty"
	MergeDrained = "drained"
	MergeFailed  = "failed"
	MergeSkipped = "skipped"
)

var (
	// EventsRecorded counts events written, by path.
	// Labels:
	//   - path: "authenticated", "anonymous", "buffered"
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_events_recorded_total",
			Help: "Total number of analytics events recorded",
		},
		[]string{"event_type", "path"},
	)

	// EventsDropped counts events discarded before any write.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_events_dropped_total",
			Help: "Total number of analytics events dropped before writing",
		},
		[]string{"reason"},
	)

	// WriteFailures counts swallowed write errors, by target.
	WriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_write_failures_total",
			Help: "Total number of failed analytics writes",
		},
		[]string{"target"},
	)

	// Merges counts anonymous buffer merges, by outcome.
	Merges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_merges_total",
			Help: "Total number of anonymous buffer merges",
		},
		[]string{"outcome"},
	)

	// MergedEvents counts buffered events moved to the shared store.
	MergedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitrine_merged_events_total",
			Help: "Total number of buffered events merged into the shared store",
		},
	)

	// ActivePipelines is the number of device pipelines held by the registry.
	ActivePipelines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitrine_active_pipelines",
			Help: "Number of device pipelines currently held in memory",
		},
	)

	// BreakerTransitions counts shared-store circuit breaker state changes.
	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "to"},
	)
)
