// Package metrics declares the prometheus collectors the pruner and
// static-file service publish. Grounded in the domain-stack wiring for
// prometheus/client_golang; registered lazily so importing this package
// never panics on double-registration in tests.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PruneDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "archive",
		Subsystem: "prune",
		Name:      "pass_duration_seconds",
		Help:      "Duration of one pruner pass, labeled by whether it found more data to do.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"more_data"})

	SegmentHighestPruned = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "archive",
		Subsystem: "prune",
		Name:      "segment_highest_pruned_block",
		Help:      "Highest block number pruned so far, per segment.",
	}, []string{"segment"})

	OldestSidecarsHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "archive",
		Subsystem: "prune",
		Name:      "oldest_sidecars_height",
		Help:      "Lowest block number with sidecars still archived.",
	})

	registerOnce sync.Once
)

// Register adds every collector in this package to reg. Safe to call
// more than once; only the first call has any effect.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(PruneDuration, SegmentHighestPruned, OldestSidecarsHeight)
	})
}
