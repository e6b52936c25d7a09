// Package metrics holds the enrichment pipeline's Prometheus collectors:
// job outcome counters, per-coach latency, queue depth gauges and trigger
// wake-ups. Collectors self-enqueue via init() and are registered once at
// startup, so tests can import the package without double-register panics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

// register enqueues collectors; called from init() in each metrics file.
func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister registers every enqueued collector with the default
// Prometheus registry. Safe to call more than once; only the first call
// does the work.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}
