package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitplan"

var (
	planGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "requests_total",
		Help:      "Plan generation requests by plan kind, response mode and outcome.",
	}, []string{"kind", "mode", "outcome"})

	planGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "duration_seconds",
		Help:      "Latency of completion calls made while generating plans.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"kind"})

	tdeeComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tdee",
		Name:      "computations_total",
		Help:      "TDEE calculations by outcome.",
	}, []string{"outcome"})

	plansSaved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "plans",
		Name:      "saved_total",
		Help:      "Plans persisted by plan type and payload kind.",
	}, []string{"plan_type", "payload"})

	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter.",
	})
)

func init() {
	prometheus.MustRegister(planGenerations, planGenerationDuration, tdeeComputations, plansSaved, rateLimited)
}

// RecordGeneration counts one generation attempt and its completion latency.
func RecordGeneration(kind, mode, outcome string, elapsed time.Duration) {
	planGenerations.WithLabelValues(kind, mode, outcome).Inc()
	if elapsed > 0 {
		planGenerationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

// RecordTDEE counts one TDEE calculation.
func RecordTDEE(outcome string) {
	tdeeComputations.WithLabelValues(outcome).Inc()
}

// RecordPlanSaved counts one persisted plan. payload is "plan" or "screenshot".
func RecordPlanSaved(planType, payload string) {
	plansSaved.WithLabelValues(planType, payload).Inc()
}

// RecordRateLimited counts one throttled request.
func RecordRateLimited() {
	rateLimited.Inc()
}
