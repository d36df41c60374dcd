package analysis

import (
	"math"
	"testing"
	"time"

	"datadigest/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericStats_Example(t *testing.T) {
	cs := NumericStats([]dataset.Value{num(1), num(2), num(3), num(4), num(5)})

	assert.Equal(t, 5, cs.Count)
	assert.Equal(t, 0, cs.MissingCount)
	assert.Equal(t, 1.0, cs.Min)
	assert.Equal(t, 5.0, cs.Max)
	assert.Equal(t, 3.0, cs.Mean)
	assert.Equal(t, 3.0, cs.Median)
	assert.InDelta(t, math.Sqrt2, cs.StdDev, 1e-9, "population stddev divides by count")
}

func TestNumericStats_EvenCountMedian(t *testing.T) {
	cs := NumericStats([]dataset.Value{num(4), miss(), num(1), num(3), num(2)})

	assert.Equal(t, 4, cs.Count)
	assert.Equal(t, 1, cs.MissingCount)
	assert.Equal(t, 2.5, cs.Median)
}

func TestNumericStats_AllMissing(t *testing.T) {
	cs := NumericStats([]dataset.Value{miss(), miss()})

	assert.Equal(t, dataset.TypeNumber, cs.Type)
	assert.Equal(t, 0, cs.Count)
	assert.Equal(t, 2, cs.MissingCount)
	assert.Zero(t, cs.Min)
	assert.Zero(t, cs.Max)
	assert.Zero(t, cs.Mean)
	assert.Zero(t, cs.Median)
	assert.Zero(t, cs.StdDev)
}

func TestNumericStats_MeanStaysInRange(t *testing.T) {
	cs := NumericStats([]dataset.Value{num(0.1), num(0.1), num(0.1)})
	assert.LessOrEqual(t, cs.Min, cs.Mean)
	assert.LessOrEqual(t, cs.Mean, cs.Max)
}

func TestNumericStats_OverflowStaysFinite(t *testing.T) {
	cs := NumericStats([]dataset.Value{num(1e308), num(1e308), num(1)})

	assert.Equal(t, 3, cs.Count)
	assert.Equal(t, 1e308, cs.Max)
	for name, f := range map[string]float64{"mean": cs.Mean, "median": cs.Median, "stdDev": cs.StdDev} {
		assert.False(t, math.IsInf(f, 0) || math.IsNaN(f), name)
	}
	assert.LessOrEqual(t, cs.Min, cs.Mean)
}

func TestCategoricalStats_TopValuesTieOrder(t *testing.T) {
	values := []dataset.Value{text("b"), text("a"), text("c"), text("a"), text("b"), miss(), text("d")}
	cs := CategoricalStats(values, dataset.TypeString, 3)

	assert.Equal(t, 6, cs.Count)
	assert.Equal(t, 1, cs.MissingCount)
	assert.Equal(t, 4, cs.DistinctCount)
	assert.Equal(t, []dataset.TopValue{
		{Value: "b", Count: 2},
		{Value: "a", Count: 2},
		{Value: "c", Count: 1},
	}, cs.TopValues)
}

func TestDateStats(t *testing.T) {
	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cs := DateStats([]dataset.Value{dataset.Temporal(mar), miss(), dataset.Temporal(jan)})

	assert.Equal(t, 2, cs.Count)
	assert.Equal(t, 1, cs.MissingCount)
	require.NotNil(t, cs.Earliest)
	assert.Equal(t, jan, *cs.Earliest)
	assert.Equal(t, mar, *cs.Latest)
}

func TestComputeColumnStats(t *testing.T) {
	ds := newDataset(t,
		[]string{"region", "sales", "active"},
		[]dataset.ColumnType{dataset.TypeString, dataset.TypeNumber, dataset.TypeBoolean},
		[]dataset.Value{text("East"), num(100), dataset.Flag(true)},
		[]dataset.Value{text("West"), miss(), dataset.Flag(false)},
		[]dataset.Value{text("East"), num(50), dataset.Flag(true)},
	)

	result := ComputeColumnStats(ds, DefaultOptions())
	require.Len(t, result, 3)
	assert.Equal(t, 2, result["sales"].Count)
	assert.Equal(t, 75.0, result["sales"].Mean)
	assert.Equal(t, 2, result["region"].DistinctCount)
	assert.Equal(t, "East", result["region"].TopValues[0].Value)
	assert.Equal(t, dataset.TypeBoolean, result["active"].Type)
	assert.Equal(t, "true", result["active"].TopValues[0].Value)
}

func TestComputeColumnStats_EmptyDataset(t *testing.T) {
	ds := newDataset(t, []string{"sales"}, []dataset.ColumnType{dataset.TypeNumber})
	assert.Empty(t, ComputeColumnStats(ds, DefaultOptions()))
}

func TestComputeColumnStats_OrderInvariants(t *testing.T) {
	ds := generatedSales(t, 300)
	for col, cs := range ComputeColumnStats(ds, DefaultOptions()) {
		if cs.Type != dataset.TypeNumber || cs.Count == 0 {
			continue
		}
		assert.LessOrEqual(t, cs.Min, cs.Median, col)
		assert.LessOrEqual(t, cs.Median, cs.Max, col)
		assert.LessOrEqual(t, cs.Min, cs.Mean, col)
		assert.LessOrEqual(t, cs.Mean, cs.Max, col)
		assert.GreaterOrEqual(t, cs.StdDev, 0.0, col)
		assert.Equal(t, ds.RowCount(), cs.Count+cs.MissingCount, col)
	}
}
