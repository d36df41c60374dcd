package analysis

import (
	"fmt"
	"strings"

	"datadigest/domain/dataset"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderMarkdownReport renders a summary as a markdown document with a column
// table, the top correlations and the precomputed aggregations
func RenderMarkdownReport(summary *dataset.DataSummary, opts Options) string {
	opts = opts.Normalize()
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeCell(summary.DatasetName))
	fmt.Fprintf(&b, "%d rows, %d columns.\n\n", summary.RowCount, summary.ColumnCount)
	if summary.RowCount == 0 {
		b.WriteString("No rows to summarize.\n")
		return b.String()
	}

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Count | Missing | Details |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, col := range summary.ColumnOrder {
		cs, ok := summary.ColumnStats[col]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
			escapeCell(col), cs.Type, cs.Count, cs.MissingCount, escapeCell(columnDetails(cs)))
	}

	if top := TopCorrelations(summary.Correlations, opts.TopCorrelations); len(top) > 0 {
		b.WriteString("\n## Top correlations\n\n")
		b.WriteString("| X | Y | r | n |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, pair := range top {
			fmt.Fprintf(&b, "| %s | %s | %.3f | %d |\n", escapeCell(pair.XColumn), escapeCell(pair.YColumn), pair.Correlation, pair.SampleSize)
		}
	}

	if len(summary.PrecomputedAggregations) > 0 {
		b.WriteString("\n## Aggregations\n\n")
		for _, agg := range summary.PrecomputedAggregations {
			parts := make([]string, 0, len(agg.Data))
			for _, gv := range agg.Data {
				parts = append(parts, fmt.Sprintf("%s=%s", gv.Group, formatNumber(gv.Value)))
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", agg.Description, strings.Join(parts, ", "))
		}
	}
	return b.String()
}

// RenderHTMLReport converts the markdown report to HTML
func RenderHTMLReport(summary *dataset.DataSummary, opts Options) []byte {
	md := []byte(RenderMarkdownReport(summary, opts))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML | html.Safelink})
	return markdown.ToHTML(md, p, renderer)
}

func columnDetails(cs dataset.ColumnStats) string {
	switch cs.Type {
	case dataset.TypeNumber:
		if cs.Count == 0 {
			return ""
		}
		return fmt.Sprintf("min %s, max %s, mean %s, median %s, std %s",
			formatNumber(cs.Min), formatNumber(cs.Max), formatNumber(cs.Mean), formatNumber(cs.Median), formatNumber(cs.StdDev))
	case dataset.TypeDate:
		if cs.Earliest == nil {
			return ""
		}
		return fmt.Sprintf("%s to %s", cs.Earliest.Format("2006-01-02"), cs.Latest.Format("2006-01-02"))
	default:
		tops := make([]string, 0, 3)
		for i, tv := range cs.TopValues {
			if i == 3 {
				break
			}
			tops = append(tops, fmt.Sprintf("%s (%d)", tv.Value, tv.Count))
		}
		return fmt.Sprintf("%d distinct; top: %s", cs.DistinctCount, strings.Join(tops, ", "))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
