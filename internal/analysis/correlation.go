package analysis

import (
	"math"
	"sort"

	"datadigest/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// ComputeCorrelations returns the Pearson correlation of every unordered pair
// of numeric columns, in column order. Each pair uses only the rows where both
// values are present. Ranking is left to TopCorrelations.
func ComputeCorrelations(ds *dataset.Dataset, opts Options) []dataset.CorrelationPair {
	opts = opts.Normalize()
	pairs := make([]dataset.CorrelationPair, 0)
	if ds.RowCount() == 0 {
		return pairs
	}

	numeric := ds.ColumnsOfType(dataset.TypeNumber)
	columns := make(map[string][]dataset.Value, len(numeric))
	for _, col := range numeric {
		columns[col] = ds.Column(col)
	}

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			pairs = append(pairs, correlatePair(numeric[i], numeric[j], columns[numeric[i]], columns[numeric[j]], opts.ScatterPointCap))
		}
	}
	return pairs
}

func correlatePair(xCol, yCol string, xs, ys []dataset.Value, scatterCap int) dataset.CorrelationPair {
	x := make([]float64, 0, len(xs))
	y := make([]float64, 0, len(ys))
	for r := range xs {
		xv, okX := xs[r].Float()
		yv, okY := ys[r].Float()
		if okX && okY {
			x = append(x, xv)
			y = append(y, yv)
		}
	}

	n := min(len(x), scatterCap)
	scatter := make([]dataset.ScatterPoint, n)
	for i := 0; i < n; i++ {
		scatter[i] = dataset.ScatterPoint{X: x[i], Y: y[i]}
	}

	return dataset.CorrelationPair{
		XColumn:     xCol,
		YColumn:     yCol,
		Correlation: Pearson(x, y),
		SampleSize:  len(x),
		ScatterData: scatter,
	}
}

// Pearson computes the correlation coefficient of two equal-length samples.
// It is 0 when either sample is constant or has fewer than two points, and is
// always finite and within [-1, 1].
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if isConstant(x) || isConstant(y) {
		return 0
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

// TopCorrelations returns up to n pairs ranked by |r| descending. Equal
// magnitudes keep their generation order. The input is not modified.
func TopCorrelations(pairs []dataset.CorrelationPair, n int) []dataset.CorrelationPair {
	ranked := make([]dataset.CorrelationPair, len(pairs))
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Correlation) > math.Abs(ranked[j].Correlation)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
