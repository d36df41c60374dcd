package analysis

import (
	"sync"
	"time"

	"datadigest/domain/dataset"
	"datadigest/internal"
	"datadigest/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// Summarize derives the full DataSummary of a dataset: column statistics,
// pairwise correlations and precomputed aggregations over every row.
func Summarize(ds *dataset.Dataset, opts Options) *dataset.DataSummary {
	opts = opts.Normalize()
	return &dataset.DataSummary{
		DatasetID:               ds.ID(),
		DatasetName:             ds.Name(),
		RowCount:                ds.RowCount(),
		ColumnCount:             ds.ColumnCount(),
		ColumnOrder:             ds.Columns(),
		ColumnStats:             ComputeColumnStats(ds, opts),
		Correlations:            ComputeCorrelations(ds, opts),
		PrecomputedAggregations: GenerateAggregations(ds, opts),
	}
}

// Summarizer serves the summary of the active dataset from a memo keyed by
// dataset identity. A dataset with a different ID replaces the memo.
type Summarizer struct {
	opts   Options
	logger *internal.Logger

	mu      sync.RWMutex
	current *dataset.DataSummary
	group   singleflight.Group
}

// NewSummarizer creates a memoizing summarizer
func NewSummarizer(opts Options, logger *internal.Logger) *Summarizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Summarizer{
		opts:   opts.Normalize(),
		logger: logger.With("Summarizer"),
	}
}

// Options returns the caps the summarizer applies
func (s *Summarizer) Options() Options { return s.opts }

// Summary returns the memoized summary for ds, computing it on first use.
// Concurrent first requests for the same dataset share one computation.
func (s *Summarizer) Summary(ds *dataset.Dataset) *dataset.DataSummary {
	id := ds.ID()

	s.mu.RLock()
	cached := s.current
	s.mu.RUnlock()
	if cached != nil && cached.DatasetID == id {
		metrics.ObserveSummary(0, metrics.OutcomeMemoHit)
		s.logger.Trace("memo hit for dataset %s", id)
		return cached
	}

	v, _, _ := s.group.Do(id.String(), func() (interface{}, error) {
		s.mu.RLock()
		cached := s.current
		s.mu.RUnlock()
		if cached != nil && cached.DatasetID == id {
			return cached, nil
		}

		start := time.Now()
		summary := Summarize(ds, s.opts)
		elapsed := time.Since(start)
		metrics.ObserveSummary(elapsed, metrics.OutcomeComputed)
		s.logger.Debug("summarized dataset %s (%q): %d rows, %d columns, %d correlations, %d aggregations in %s",
			id, ds.Name(), summary.RowCount, summary.ColumnCount, len(summary.Correlations), len(summary.PrecomputedAggregations), elapsed)

		s.mu.Lock()
		s.current = summary
		s.mu.Unlock()
		return summary, nil
	})
	return v.(*dataset.DataSummary)
}

// SummaryText renders the bounded summary text of ds
func (s *Summarizer) SummaryText(ds *dataset.Dataset) string {
	return BuildSummaryText(s.Summary(ds), s.opts)
}

// RelevantAggregation matches a query against the aggregations of ds
func (s *Summarizer) RelevantAggregation(ds *dataset.Dataset, query string) (dataset.Aggregation, bool) {
	return FindRelevantAggregation(s.Summary(ds), query)
}
