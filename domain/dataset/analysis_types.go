// Package dataset provides the tabular dataset model and the summary types derived from it
package dataset

import (
	"time"

	"datadigest/domain/core"
)

// TopValue is a categorical value and its frequency
type TopValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnStats holds descriptive statistics for one column. Numeric fields are
// populated for number columns, DistinctCount/TopValues for string and boolean
// columns, Earliest/Latest for date columns.
type ColumnStats struct {
	Type         ColumnType `json:"type"`
	Count        int        `json:"count"`
	MissingCount int        `json:"missingCount"`

	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`

	DistinctCount int        `json:"distinctCount,omitempty"`
	TopValues     []TopValue `json:"topValues,omitempty"`

	Earliest *time.Time `json:"earliest,omitempty"`
	Latest   *time.Time `json:"latest,omitempty"`
}

// ScatterPoint is one (x, y) observation of a correlation pair
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CorrelationPair is the Pearson correlation of two numeric columns
type CorrelationPair struct {
	XColumn     string         `json:"xColumn"`
	YColumn     string         `json:"yColumn"`
	Correlation float64        `json:"correlation"`
	SampleSize  int            `json:"sampleSize"`
	ScatterData []ScatterPoint `json:"scatterData"`
}

// Operation is an aggregation reducer
type Operation string

const (
	OpSum   Operation = "sum"
	OpAvg   Operation = "avg"
	OpCount Operation = "count"
	OpMin   Operation = "min"
	OpMax   Operation = "max"
)

// Operations lists every reducer in generation priority order
var Operations = []Operation{OpSum, OpAvg, OpCount, OpMin, OpMax}

// GroupValue is the reduced metric for one group
type GroupValue struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// Aggregation is a precomputed group-by reduction
type Aggregation struct {
	Description string       `json:"description"`
	GroupBy     string       `json:"groupBy"`
	Metric      string       `json:"metric"`
	Operation   Operation    `json:"operation"`
	Data        []GroupValue `json:"data"`
}

// DataSummary is the derived digest of one Dataset. It is built once per
// dataset identity and never modified afterwards.
type DataSummary struct {
	DatasetID               core.ID                `json:"datasetId"`
	DatasetName             string                 `json:"datasetName"`
	RowCount                int                    `json:"rowCount"`
	ColumnCount             int                    `json:"columnCount"`
	ColumnOrder             []string               `json:"columnOrder"`
	ColumnStats             map[string]ColumnStats `json:"columnStats"`
	Correlations            []CorrelationPair      `json:"correlations"`
	PrecomputedAggregations []Aggregation          `json:"precomputedAggregations"`
}

// IsEmpty reports whether the summary has nothing to show
func (s *DataSummary) IsEmpty() bool {
	return s == nil || (len(s.ColumnStats) == 0 && len(s.Correlations) == 0 && len(s.PrecomputedAggregations) == 0)
}
