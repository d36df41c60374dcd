package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"datadigest/domain/dataset"
)

// textSection is a block of summary lines sharing one heading
type textSection struct {
	heading string
	lines   []string
}

// BuildSummaryText renders the summary as bounded plain text. Sections are
// filled in priority order (shape, numeric columns, categorical columns,
// correlations) until the character budget runs out, so the lowest-priority
// lines are the first to go.
func BuildSummaryText(summary *dataset.DataSummary, opts Options) string {
	opts = opts.Normalize()
	if summary == nil {
		return "No dataset loaded."
	}

	header := fmt.Sprintf("Dataset %q: %d rows, %d columns.", summary.DatasetName, summary.RowCount, summary.ColumnCount)
	if summary.RowCount == 0 {
		header += " No rows to summarize."
	}
	used := utf8.RuneCountInString(header)
	if used >= opts.SummaryCharBudget {
		return truncateRunes(header, opts.SummaryCharBudget)
	}

	var b strings.Builder
	b.WriteString(header)
	omitted := 0
	full := false

	for _, section := range summarySections(summary, opts) {
		for i, line := range section.lines {
			if full {
				omitted++
				continue
			}
			chunk := "\n- " + line
			if i == 0 {
				chunk = "\n" + section.heading + chunk
			}
			n := utf8.RuneCountInString(chunk)
			if used+n > opts.SummaryCharBudget {
				full = true
				omitted++
				continue
			}
			b.WriteString(chunk)
			used += n
		}
	}

	if omitted > 0 {
		note := fmt.Sprintf("\n(%d more lines omitted)", omitted)
		if used+utf8.RuneCountInString(note) <= opts.SummaryCharBudget {
			b.WriteString(note)
		}
	}
	return b.String()
}

// truncateRunes keeps the first n characters of s
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func summarySections(summary *dataset.DataSummary, opts Options) []textSection {
	numeric := textSection{heading: "Numeric columns:"}
	categorical := textSection{heading: "Categorical columns:"}

	for _, col := range summary.ColumnOrder {
		cs, ok := summary.ColumnStats[col]
		if !ok {
			continue
		}
		line := describeColumn(col, cs)
		if cs.Type == dataset.TypeNumber {
			numeric.lines = append(numeric.lines, line)
		} else {
			categorical.lines = append(categorical.lines, line)
		}
	}

	correlations := textSection{heading: "Top correlations:"}
	for _, pair := range TopCorrelations(summary.Correlations, opts.TopCorrelations) {
		correlations.lines = append(correlations.lines,
			fmt.Sprintf("%s vs %s: r=%.2f (n=%d)", pair.XColumn, pair.YColumn, pair.Correlation, pair.SampleSize))
	}

	return []textSection{numeric, categorical, correlations}
}

func describeColumn(col string, cs dataset.ColumnStats) string {
	var detail string
	switch cs.Type {
	case dataset.TypeNumber:
		if cs.Count == 0 {
			detail = "no values"
		} else {
			detail = fmt.Sprintf("min %s, max %s, mean %s", formatNumber(cs.Min), formatNumber(cs.Max), formatNumber(cs.Mean))
		}
	case dataset.TypeDate:
		if cs.Earliest == nil || cs.Latest == nil {
			detail = "no values"
		} else {
			detail = fmt.Sprintf("%s to %s", cs.Earliest.Format("2006-01-02"), cs.Latest.Format("2006-01-02"))
		}
	default:
		detail = fmt.Sprintf("%d distinct", cs.DistinctCount)
		if len(cs.TopValues) > 0 {
			top := cs.TopValues[0]
			detail += fmt.Sprintf(", top %q (%d)", top.Value, top.Count)
		}
	}
	if cs.MissingCount > 0 {
		detail += fmt.Sprintf(", %d missing", cs.MissingCount)
	}
	return fmt.Sprintf("%s (%s): %s", col, cs.Type, detail)
}

// formatNumber prints integers without decimals and everything else with two
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
