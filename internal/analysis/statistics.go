package analysis

import (
	"math"
	"sort"
	"time"

	"datadigest/domain/dataset"

	"github.com/montanaflynn/stats"
)

// ComputeColumnStats derives per-column statistics over the full dataset.
// A dataset without rows yields an empty map.
func ComputeColumnStats(ds *dataset.Dataset, opts Options) map[string]dataset.ColumnStats {
	opts = opts.Normalize()
	result := make(map[string]dataset.ColumnStats, ds.ColumnCount())
	if ds.RowCount() == 0 {
		return result
	}

	for _, col := range ds.Columns() {
		colType, _ := ds.Type(col)
		values := ds.Column(col)

		switch colType {
		case dataset.TypeNumber:
			result[col] = NumericStats(values)
		case dataset.TypeDate:
			result[col] = DateStats(values)
		default:
			result[col] = CategoricalStats(values, colType, opts.TopValuesLimit)
		}
	}
	return result
}

// NumericValues returns the present numbers of a column in row order
func NumericValues(values []dataset.Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// NumericStats computes count, min, max, mean, median and stdDev of a numeric
// column. stdDev is the population standard deviation (divides by count, not
// count-1). An all-missing column reports zeros.
func NumericStats(values []dataset.Value) dataset.ColumnStats {
	data := NumericValues(values)
	cs := dataset.ColumnStats{
		Type:         dataset.TypeNumber,
		Count:        len(data),
		MissingCount: len(values) - len(data),
	}
	if len(data) == 0 {
		return cs
	}

	// errors only signal empty input, ruled out above
	cs.Min, _ = stats.Min(data)
	cs.Max, _ = stats.Max(data)
	cs.Mean, _ = stats.Mean(data)
	cs.Median, _ = stats.Median(data)
	cs.StdDev, _ = stats.StandardDeviationPopulation(data)

	// sums of huge magnitudes overflow; keep the stats JSON-encodable
	cs.Mean = finiteOrZero(cs.Mean)
	cs.Median = finiteOrZero(cs.Median)
	cs.StdDev = finiteOrZero(cs.StdDev)

	// summation error can push the mean a few ulps past the range
	if cs.Mean < cs.Min {
		cs.Mean = cs.Min
	}
	if cs.Mean > cs.Max {
		cs.Mean = cs.Max
	}
	return cs
}

// finiteOrZero maps NaN and ±Inf to 0
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// CategoricalStats counts distinct values and keeps the k most frequent.
// Ties are ordered by first appearance.
func CategoricalStats(values []dataset.Value, colType dataset.ColumnType, k int) dataset.ColumnStats {
	cs := dataset.ColumnStats{Type: colType}

	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v.IsMissing() {
			cs.MissingCount++
			continue
		}
		cs.Count++
		key := v.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	cs.DistinctCount = len(order)
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if k > 0 && len(order) > k {
		order = order[:k]
	}
	cs.TopValues = make([]dataset.TopValue, len(order))
	for i, key := range order {
		cs.TopValues[i] = dataset.TopValue{Value: key, Count: counts[key]}
	}
	return cs
}

// DateStats reports the earliest and latest present dates
func DateStats(values []dataset.Value) dataset.ColumnStats {
	cs := dataset.ColumnStats{Type: dataset.TypeDate}
	var earliest, latest time.Time
	for _, v := range values {
		t, ok := v.Time()
		if !ok {
			cs.MissingCount++
			continue
		}
		if cs.Count == 0 || t.Before(earliest) {
			earliest = t
		}
		if cs.Count == 0 || t.After(latest) {
			latest = t
		}
		cs.Count++
	}
	if cs.Count > 0 {
		cs.Earliest = &earliest
		cs.Latest = &latest
	}
	return cs
}
