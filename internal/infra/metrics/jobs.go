package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(enrichmentJobsTotal, enrichmentLatencyMs, enrichmentQueueDepth, enrichmentTriggersTotal)
}

var enrichmentJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "enrichment_jobs_processed_total",
		Help: "Total number of enrichment jobs processed, labeled by terminal status and coach type.",
	},
	[]string{"status", "coach"}, // status: 'completed', 'retried', 'failed'
)

var enrichmentLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "enrichment_job_latency_ms",
		Help:    "Per-invocation enrichment latency distribution in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	},
	[]string{"coach"},
)

var enrichmentQueueDepth = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "enrichment_queue_depth",
		Help: "Current number of queue jobs per status.",
	},
	[]string{"status"},
)

var enrichmentTriggersTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "enrichment_trigger_wakeups_total",
		Help: "Number of processor wake-ups fired after enqueues.",
	},
)

func IncEnrichmentJob(status, coach string) {
	enrichmentJobsTotal.WithLabelValues(norm(status), norm(coach)).Inc()
}

func ObserveEnrichmentLatency(coach string, ms float64) {
	enrichmentLatencyMs.WithLabelValues(norm(coach)).Observe(ms)
}

func SetQueueDepth(status string, n int) {
	enrichmentQueueDepth.WithLabelValues(norm(status)).Set(float64(n))
}

func IncTriggerWakeup() {
	enrichmentTriggersTotal.Inc()
}

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
