package analysis

// Options bounds the size of everything the analysis derives from a dataset.
// Zero fields fall back to DefaultOptions.
type Options struct {
	TopValuesLimit    int // most frequent values kept per categorical column
	ScatterPointCap   int // scatter points kept per correlation pair
	MaxAggregations   int // precomputed aggregations per dataset
	ContextRowCap     int // raw rows included in AI context payloads
	TopCorrelations   int // correlations named in summary text and payloads
	SummaryCharBudget int // maximum length of the summary text
}

// DefaultOptions returns the standard caps
func DefaultOptions() Options {
	return Options{
		TopValuesLimit:    10,
		ScatterPointCap:   50,
		MaxAggregations:   30,
		ContextRowCap:     200,
		TopCorrelations:   5,
		SummaryCharBudget: 4000,
	}
}

// Normalize replaces non-positive caps with their defaults
func (o Options) Normalize() Options {
	def := DefaultOptions()
	if o.TopValuesLimit <= 0 {
		o.TopValuesLimit = def.TopValuesLimit
	}
	if o.ScatterPointCap <= 0 {
		o.ScatterPointCap = def.ScatterPointCap
	}
	if o.MaxAggregations <= 0 {
		o.MaxAggregations = def.MaxAggregations
	}
	if o.ContextRowCap <= 0 {
		o.ContextRowCap = def.ContextRowCap
	}
	if o.TopCorrelations <= 0 {
		o.TopCorrelations = def.TopCorrelations
	}
	if o.SummaryCharBudget <= 0 {
		o.SummaryCharBudget = def.SummaryCharBudget
	}
	return o
}
