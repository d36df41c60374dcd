package analysis

import (
	"datadigest/domain/dataset"
)

// ColumnDescriptor names a column and its type
type ColumnDescriptor struct {
	Name string             `json:"name"`
	Type dataset.ColumnType `json:"type"`
}

// ContextPayload is the subset of a summary handed to the AI orchestration
// layer for one request
type ContextPayload struct {
	DatasetName         string                         `json:"datasetName"`
	RowCount            int                            `json:"rowCount"`
	ColumnCount         int                            `json:"columnCount"`
	Columns             []ColumnDescriptor             `json:"columns"`
	ColumnStats         map[string]dataset.ColumnStats `json:"columnStats"`
	SummaryText         string                         `json:"summaryText"`
	TopCorrelations     []dataset.CorrelationPair      `json:"topCorrelations"`
	Aggregations        []dataset.Aggregation          `json:"aggregations"`
	Query               string                         `json:"query,omitempty"`
	RelevantAggregation *dataset.Aggregation           `json:"relevantAggregation,omitempty"`
	Rows                []map[string]interface{}       `json:"rows"`
	RowsTruncated       bool                           `json:"rowsTruncated"`
}

// BuildContextPayload assembles the AI-facing context. Statistics come from
// the full dataset; only the raw row slice is capped at ContextRowCap.
func BuildContextPayload(ds *dataset.Dataset, summary *dataset.DataSummary, query string, opts Options) ContextPayload {
	opts = opts.Normalize()

	columns := make([]ColumnDescriptor, 0, ds.ColumnCount())
	for _, col := range ds.Columns() {
		t, _ := ds.Type(col)
		columns = append(columns, ColumnDescriptor{Name: col, Type: t})
	}

	top := TopCorrelations(summary.Correlations, opts.TopCorrelations)
	for i := range top {
		if len(top[i].ScatterData) > opts.ScatterPointCap {
			top[i].ScatterData = top[i].ScatterData[:opts.ScatterPointCap]
		}
	}

	aggs := summary.PrecomputedAggregations
	if len(aggs) > opts.MaxAggregations {
		aggs = aggs[:opts.MaxAggregations]
	}

	payload := ContextPayload{
		DatasetName:     ds.Name(),
		RowCount:        ds.RowCount(),
		ColumnCount:     ds.ColumnCount(),
		Columns:         columns,
		ColumnStats:     summary.ColumnStats,
		SummaryText:     BuildSummaryText(summary, opts),
		TopCorrelations: top,
		Aggregations:    aggs,
		Query:           query,
		Rows:            ds.Records(opts.ContextRowCap),
		RowsTruncated:   ds.RowCount() > opts.ContextRowCap,
	}
	if agg, ok := FindRelevantAggregation(summary, query); ok {
		payload.RelevantAggregation = &agg
	}
	return payload
}
