package analysis

import (
	"encoding/json"
	"sync"
	"testing"

	"datadigest/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Shape(t *testing.T) {
	ds := regionSales(t)
	summary := Summarize(ds, DefaultOptions())

	assert.Equal(t, ds.ID(), summary.DatasetID)
	assert.Equal(t, 3, summary.RowCount)
	assert.Equal(t, 2, summary.ColumnCount)
	assert.Equal(t, []string{"region", "sales"}, summary.ColumnOrder)
	assert.Len(t, summary.ColumnStats, 2)
	assert.Empty(t, summary.Correlations)
	assert.Len(t, summary.PrecomputedAggregations, 5)
}

func TestSummarize_EmptyDataset(t *testing.T) {
	ds := newDataset(t, []string{"region", "sales"}, []dataset.ColumnType{dataset.TypeString, dataset.TypeNumber})
	summary := Summarize(ds, DefaultOptions())

	require.NotNil(t, summary.ColumnStats)
	require.NotNil(t, summary.Correlations)
	require.NotNil(t, summary.PrecomputedAggregations)
	assert.Empty(t, summary.ColumnStats)
	assert.Empty(t, summary.Correlations)
	assert.Empty(t, summary.PrecomputedAggregations)
	assert.Equal(t, 0, summary.RowCount)
}

func TestSummarize_HugeValuesStillEncode(t *testing.T) {
	ds := newDataset(t,
		[]string{"region", "sales", "other"},
		[]dataset.ColumnType{dataset.TypeString, dataset.TypeNumber, dataset.TypeNumber},
		[]dataset.Value{text("East"), num(1e308), num(1)},
		[]dataset.Value{text("East"), num(1e308), num(2)},
		[]dataset.Value{text("West"), num(1), num(3)},
	)

	raw, err := json.Marshal(Summarize(ds, DefaultOptions()))
	require.NoError(t, err)

	var decoded dataset.DataSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 3, decoded.RowCount)
}

func TestSummarizer_MemoizesByDatasetIdentity(t *testing.T) {
	s := NewSummarizer(DefaultOptions(), nil)
	first := regionSales(t)

	a := s.Summary(first)
	b := s.Summary(first)
	assert.Same(t, a, b)

	// same content, new identity
	second := regionSales(t)
	c := s.Summary(second)
	assert.NotSame(t, a, c)
	assert.Equal(t, second.ID(), c.DatasetID)

	// only the latest dataset is memoized
	d := s.Summary(first)
	assert.NotSame(t, a, d)
	assert.Equal(t, a.PrecomputedAggregations, d.PrecomputedAggregations)
}

func TestSummarizer_ConcurrentCallsShareOneSummary(t *testing.T) {
	s := NewSummarizer(DefaultOptions(), nil)
	ds := generatedSales(t, 300)

	const callers = 8
	results := make([]*dataset.DataSummary, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Summary(ds)
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestSummarizer_Accessors(t *testing.T) {
	s := NewSummarizer(DefaultOptions(), nil)
	ds := regionSales(t)

	assert.Contains(t, s.SummaryText(ds), `Dataset "test": 3 rows, 2 columns.`)

	agg, ok := s.RelevantAggregation(ds, "Which region has the highest sales?")
	require.True(t, ok)
	assert.Equal(t, dataset.OpMax, agg.Operation)

	_, ok = s.RelevantAggregation(ds, "weather forecast")
	assert.False(t, ok)

	assert.Equal(t, DefaultOptions(), s.Options())
}
