package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricApplies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adapterd",
		Subsystem: "engine",
		Name:      "adapter_applies_total",
		Help:      "Adapter apply attempts by outcome.",
	}, []string{"outcome"})

	metricReverts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "adapterd",
		Subsystem: "engine",
		Name:      "patch_reverts_total",
		Help:      "Patch reverts restoring the pristine base model.",
	})

	metricClassifications = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "adapterd",
		Subsystem: "engine",
		Name:      "classifications_total",
		Help:      "Completed classifications.",
	})

	metricPatchBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "adapterd",
		Subsystem: "engine",
		Name:      "patch_bytes_written_total",
		Help:      "Bytes written into the weight buffer by patch applies.",
	})

	metricClassifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "adapterd",
		Subsystem: "engine",
		Name:      "classify_duration_seconds",
		Help:      "Wall time of Classify, lock wait included.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		metricApplies,
		metricReverts,
		metricClassifications,
		metricPatchBytes,
		metricClassifyDuration,
	)
}
