package widgets

import (
	"fmt"
	"strings"

	"datadigest/domain/dataset"
	"datadigest/internal"
	"datadigest/internal/analysis"

	"github.com/montanaflynn/stats"
)

const (
	maxKPICards     = 3
	maxPieSlices    = 8
	maxTableColumns = 6
)

var kpiColors = []string{"blue", "green", "purple"}

// Planner turns a free-text dashboard request into widget instructions
// grounded in a dataset and its summary
type Planner struct {
	registry *Registry
	opts     analysis.Options
	logger   *internal.Logger
}

// NewPlanner creates a planner. A nil registry uses DefaultRegistry.
func NewPlanner(registry *Registry, opts analysis.Options, logger *internal.Logger) *Planner {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Planner{
		registry: registry,
		opts:     opts.Normalize(),
		logger:   logger.With("Planner"),
	}
}

// Plan builds the dashboard for request. An empty dataset yields no
// instructions. Instructions that fail registry validation are dropped.
func (p *Planner) Plan(request string, ds *dataset.Dataset, summary *dataset.DataSummary) []Instruction {
	if ds == nil || summary.IsEmpty() || ds.RowCount() == 0 {
		return nil
	}
	req := strings.ToLower(request)

	numeric := ds.ColumnsOfType(dataset.TypeNumber)
	labels := ds.ColumnsOfType(dataset.TypeString)
	dates := ds.ColumnsOfType(dataset.TypeDate)

	var planned []Instruction
	for i, col := range numeric {
		if i == maxKPICards {
			break
		}
		planned = append(planned, p.kpiCard(ds, col, len(planned)))
	}

	if len(numeric) > 0 {
		labelCol := ds.Columns()[0]
		if len(dates) > 0 {
			labelCol = dates[0]
		} else if len(labels) > 0 {
			labelCol = labels[0]
		}
		wantsLine := mentionsAny(req, "trend", "line", "over time") || len(dates) > 0
		if wantsLine || !strings.Contains(req, "bar") {
			planned = append(planned, Instruction{
				Name: "LineChart",
				Props: map[string]interface{}{
					"title": fmt.Sprintf("%s over %s", numeric[0], labelCol),
					"data":  p.projectRows(ds, labelCol, numeric[0]),
					"xAxis": labelCol,
					"yAxis": numeric[0],
					"color": "#3b82f6",
				},
			})
		}
	}

	if agg, ok := p.chartAggregation(summary, request); ok {
		planned = append(planned, Instruction{
			Name: "BarChart",
			Props: map[string]interface{}{
				"title": agg.Description,
				"data":  groupRows(agg, agg.GroupBy, agg.Metric, len(agg.Data)),
				"xAxis": agg.GroupBy,
				"yAxis": agg.Metric,
				"color": "#06b6d4",
			},
		})

		wantsPie := mentionsAny(req, "pie", "share", "distribution")
		if wantsPie || len(planned) < 4 {
			planned = append(planned, Instruction{
				Name: "PieChart",
				Props: map[string]interface{}{
					"title": fmt.Sprintf("%s Distribution", agg.Metric),
					"data":  groupRows(agg, "name", "value", maxPieSlices),
				},
			})
		}
	}

	top := analysis.TopCorrelations(summary.Correlations, 1)
	wantsScatter := mentionsAny(req, "scatter", "correlation", "vs")
	if len(top) > 0 && (wantsScatter || len(planned) < 5) {
		pair := top[0]
		points := pair.ScatterData
		if len(points) > p.opts.ScatterPointCap {
			points = points[:p.opts.ScatterPointCap]
		}
		data := make([]map[string]interface{}, 0, len(points))
		for _, pt := range points {
			data = append(data, map[string]interface{}{"x": pt.X, "y": pt.Y})
		}
		planned = append(planned, Instruction{
			Name: "ScatterPlot",
			Props: map[string]interface{}{
				"title":  fmt.Sprintf("%s vs %s (r=%.2f)", pair.XColumn, pair.YColumn, pair.Correlation),
				"data":   data,
				"xLabel": pair.XColumn,
				"yLabel": pair.YColumn,
				"color":  "#f59e0b",
			},
		})
	}

	tableColumns := ds.Columns()
	if len(tableColumns) > maxTableColumns {
		tableColumns = tableColumns[:maxTableColumns]
	}
	planned = append(planned, Instruction{
		Name: "DataTable",
		Props: map[string]interface{}{
			"title":    fmt.Sprintf("%s Data", ds.Name()),
			"columns":  tableColumns,
			"data":     p.projectRows(ds, tableColumns...),
			"sortable": true,
		},
	})

	planned = append(planned, Instruction{
		Name: "TextBlock",
		Props: map[string]interface{}{
			"title":   "Data Summary",
			"content": analysis.BuildSummaryText(summary, p.opts),
		},
	})

	out := planned[:0]
	for _, in := range planned {
		if err := p.registry.Validate(in); err != nil {
			p.logger.Warn("dropping %s: %v", in.Name, err)
			continue
		}
		out = append(out, in)
	}
	return out
}

// Explain describes a planned dashboard in one sentence for the caller
func Explain(componentCount int, datasetName string) string {
	source := ""
	if datasetName != "" {
		source = fmt.Sprintf(" using your uploaded data %q", datasetName)
	}
	return fmt.Sprintf("Generated a dashboard with %d components based on your request%s. "+
		"The dashboard includes charts, metrics and data tables to help you visualize your data.", componentCount, source)
}

func (p *Planner) kpiCard(ds *dataset.Dataset, col string, position int) Instruction {
	values := analysis.NumericValues(ds.Column(col))
	total, _ := stats.Sum(values)
	avg := 0.0
	if len(values) > 0 {
		avg, _ = stats.Mean(values)
	}

	value := fmt.Sprintf("%.0f", total)
	if total >= 1000 {
		value = fmt.Sprintf("%.1fK", total/1000)
	}
	return Instruction{
		Name: "KPICard",
		Props: map[string]interface{}{
			"title":      fmt.Sprintf("Total %s", col),
			"value":      value,
			"trend":      fmt.Sprintf("Avg: %.1f", avg),
			"color":      kpiColors[position%len(kpiColors)],
			"isPositive": true,
		},
	}
}

// chartAggregation picks the aggregation most relevant to the request,
// falling back to the first sum
func (p *Planner) chartAggregation(summary *dataset.DataSummary, request string) (dataset.Aggregation, bool) {
	if agg, ok := analysis.FindRelevantAggregation(summary, request); ok {
		return agg, true
	}
	for _, agg := range summary.PrecomputedAggregations {
		if agg.Operation == dataset.OpSum {
			return agg, true
		}
	}
	return dataset.Aggregation{}, false
}

// projectRows returns the first ContextRowCap rows restricted to columns
func (p *Planner) projectRows(ds *dataset.Dataset, columns ...string) []map[string]interface{} {
	n := ds.RowCount()
	if n > p.opts.ContextRowCap {
		n = p.opts.ContextRowCap
	}
	rows := make([]map[string]interface{}, n)
	for r := 0; r < n; r++ {
		row := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			row[col] = ds.Value(r, col).Interface()
		}
		rows[r] = row
	}
	return rows
}

func groupRows(agg dataset.Aggregation, labelKey, valueKey string, limit int) []map[string]interface{} {
	data := agg.Data
	if len(data) > limit {
		data = data[:limit]
	}
	out := make([]map[string]interface{}, 0, len(data))
	for _, gv := range data {
		out = append(out, map[string]interface{}{labelKey: gv.Group, valueKey: gv.Value})
	}
	return out
}

func mentionsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
