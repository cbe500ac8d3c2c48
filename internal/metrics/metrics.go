// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medilens"

var (
	RegistryLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "lookups_total",
			Help:      "Drug registry lookups by outcome (ok, not_configured, no_data, error).",
		},
		[]string{"outcome"},
	)

	VisionExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vision",
			Name:      "extractions_total",
			Help:      "Prescription image analyses by provider and result.",
		},
		[]string{"provider", "result"},
	)

	MedicationsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "medications",
			Name:      "registered_total",
			Help:      "Medication records written by replace-all registrations.",
		},
	)

	AdherenceToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "toggles_total",
			Help:      "Adherence checkmark writes by new value.",
		},
		[]string{"taken"},
	)

	StorageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Storage operations that returned an error.",
		},
		[]string{"op"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30},
		},
		[]string{"route", "method"},
	)
)
