package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeComputed labels summaries derived from scratch.
	OutcomeComputed = "computed"
	// OutcomeMemoHit labels summaries served from the memo.
	OutcomeMemoHit = "memo_hit"
)

var (
	summariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadigest",
			Name:      "summaries_total",
			Help:      "Total number of summary requests, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	summaryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datadigest",
			Name:      "summary_seconds",
			Help:      "Time spent deriving a dataset summary.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	datasetsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadigest",
			Name:      "datasets_ingested_total",
			Help:      "Datasets accepted for analysis, partitioned by source format.",
		},
		[]string{"format"},
	)

	datasetRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datadigest",
			Name:      "dataset_rows",
			Help:      "Row counts of ingested datasets.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		},
	)
)

// Register attaches datadigest collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		summariesTotal,
		summaryDurationSeconds,
		datasetsIngestedTotal,
		datasetRows,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSummary records a summary request. Durations are only observed for
// computed summaries.
func ObserveSummary(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeMemoHit {
		label = OutcomeComputed
	}
	summariesTotal.WithLabelValues(label).Inc()
	if label == OutcomeComputed {
		if duration < 0 {
			duration = 0
		}
		summaryDurationSeconds.Observe(duration.Seconds())
	}
}

// ObserveIngest records an accepted dataset
func ObserveIngest(format string, rows int) {
	datasetsIngestedTotal.WithLabelValues(format).Inc()
	datasetRows.Observe(float64(rows))
}
