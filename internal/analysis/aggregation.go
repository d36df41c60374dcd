package analysis

import (
	"fmt"

	"datadigest/domain/dataset"

	"github.com/montanaflynn/stats"
)

// aggregationPhases orders generation: every pair with sum, then every pair
// with avg, then the remaining reducers
var aggregationPhases = [][]dataset.Operation{
	{dataset.OpSum},
	{dataset.OpAvg},
	{dataset.OpCount, dataset.OpMin, dataset.OpMax},
}

// DescribeAggregation renders the fixed description template
func DescribeAggregation(op dataset.Operation, metric, groupBy string) string {
	return fmt.Sprintf("%s of %s by %s", op, metric, groupBy)
}

type pairKey struct {
	groupBy, metric string
}

// groupedValues holds the metric values of one categorical x numeric pair,
// keyed by group in order of first appearance
type groupedValues struct {
	order  []string
	values map[string][]float64
}

// GenerateAggregations enumerates string x number column pairs and reduces
// them, stopping at MaxAggregations. Aggregations without any eligible group
// are skipped and do not count toward the cap.
func GenerateAggregations(ds *dataset.Dataset, opts Options) []dataset.Aggregation {
	opts = opts.Normalize()
	aggs := make([]dataset.Aggregation, 0)
	if ds.RowCount() == 0 {
		return aggs
	}

	categorical := ds.ColumnsOfType(dataset.TypeString)
	numeric := ds.ColumnsOfType(dataset.TypeNumber)
	if len(categorical) == 0 || len(numeric) == 0 {
		return aggs
	}

	grouped := make(map[pairKey]*groupedValues)
	for _, phase := range aggregationPhases {
		for _, op := range phase {
			for _, groupBy := range categorical {
				for _, metric := range numeric {
					if len(aggs) >= opts.MaxAggregations {
						return aggs
					}
					key := pairKey{groupBy, metric}
					g, ok := grouped[key]
					if !ok {
						g = groupRows(ds, groupBy, metric)
						grouped[key] = g
					}
					if agg := reduceGroups(g, groupBy, metric, op); len(agg.Data) > 0 {
						aggs = append(aggs, agg)
					}
				}
			}
		}
	}
	return aggs
}

// Aggregate computes a single group-by reduction. Rows with a missing groupBy
// or metric value are excluded; groups keep first-appearance order.
func Aggregate(ds *dataset.Dataset, groupBy, metric string, op dataset.Operation) dataset.Aggregation {
	return reduceGroups(groupRows(ds, groupBy, metric), groupBy, metric, op)
}

func groupRows(ds *dataset.Dataset, groupBy, metric string) *groupedValues {
	g := &groupedValues{values: make(map[string][]float64)}
	groups := ds.Column(groupBy)
	metrics := ds.Column(metric)

	for r := range groups {
		key, ok := groups[r].Str()
		if !ok {
			continue
		}
		if _, seen := g.values[key]; !seen {
			g.order = append(g.order, key)
			g.values[key] = nil
		}
		if f, ok := metrics[r].Float(); ok {
			g.values[key] = append(g.values[key], f)
		}
	}
	return g
}

func reduceGroups(g *groupedValues, groupBy, metric string, op dataset.Operation) dataset.Aggregation {
	agg := dataset.Aggregation{
		Description: DescribeAggregation(op, metric, groupBy),
		GroupBy:     groupBy,
		Metric:      metric,
		Operation:   op,
		Data:        make([]dataset.GroupValue, 0, len(g.order)),
	}
	for _, key := range g.order {
		values := g.values[key]
		if len(values) == 0 {
			continue
		}
		agg.Data = append(agg.Data, dataset.GroupValue{Group: key, Value: reduce(values, op)})
	}
	return agg
}

func reduce(values []float64, op dataset.Operation) float64 {
	var result float64
	switch op {
	case dataset.OpSum:
		result, _ = stats.Sum(values)
	case dataset.OpAvg:
		result, _ = stats.Mean(values)
	case dataset.OpCount:
		result = float64(len(values))
	case dataset.OpMin:
		result, _ = stats.Min(values)
	case dataset.OpMax:
		result, _ = stats.Max(values)
	}
	return finiteOrZero(result)
}
