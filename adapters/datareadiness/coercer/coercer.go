package coercer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"datadigest/domain/dataset"
	"datadigest/internal/errors"
)

// TypeCoercer infers column types from sampled values and coerces raw cells
// into typed dataset values
type TypeCoercer struct {
	config Config
}

// Config defines the inference threshold and sample size
type Config struct {
	Threshold  float64 `json:"threshold"`   // fraction of sampled values that must coerce to a type
	SampleSize int     `json:"sample_size"` // non-missing values inspected per column
}

// DefaultConfig returns the standard inference settings
func DefaultConfig() Config {
	return Config{
		Threshold:  0.8,
		SampleSize: 1000,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config Config) *TypeCoercer {
	def := DefaultConfig()
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = def.Threshold
	}
	if config.SampleSize <= 0 {
		config.SampleSize = def.SampleSize
	}
	return &TypeCoercer{config: config}
}

// Config returns the effective configuration
func (c *TypeCoercer) Config() Config { return c.config }

// TypeAnalysis contains the results of type distribution analysis for one column
type TypeAnalysis struct {
	SampleCount     int                `json:"sample_count"`
	NumericCount    int                `json:"numeric_count"`
	DateCount       int                `json:"date_count"`
	BooleanCount    int                `json:"boolean_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	DateRatio       float64            `json:"date_ratio"`
	BooleanRatio    float64            `json:"boolean_ratio"`
	RecommendedType dataset.ColumnType `json:"recommended_type"`
}

// AnalyzeTypeDistribution samples the first SampleSize non-missing values and
// counts how many coerce to each candidate type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []interface{}) TypeAnalysis {
	var analysis TypeAnalysis

	for _, raw := range values {
		if analysis.SampleCount >= c.config.SampleSize {
			break
		}
		if IsMissing(raw) {
			continue
		}
		analysis.SampleCount++

		if !c.CoerceTo(raw, dataset.TypeNumber).IsMissing() {
			analysis.NumericCount++
		}
		if !c.CoerceTo(raw, dataset.TypeDate).IsMissing() {
			analysis.DateCount++
		}
		if !c.CoerceTo(raw, dataset.TypeBoolean).IsMissing() {
			analysis.BooleanCount++
		}
	}

	if analysis.SampleCount > 0 {
		n := float64(analysis.SampleCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / n
		analysis.DateRatio = float64(analysis.DateCount) / n
		analysis.BooleanRatio = float64(analysis.BooleanCount) / n
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

// InferType classifies a column from its raw values
func (c *TypeCoercer) InferType(values []interface{}) dataset.ColumnType {
	return c.AnalyzeTypeDistribution(values).RecommendedType
}

// determineRecommendedType walks number -> date -> boolean; a ratio exactly at
// the threshold qualifies, so ties go to the earlier type
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.ColumnType {
	if analysis.SampleCount == 0 {
		return dataset.TypeString
	}
	if analysis.NumericRatio >= c.config.Threshold {
		return dataset.TypeNumber
	}
	if analysis.DateRatio >= c.config.Threshold {
		return dataset.TypeDate
	}
	if analysis.BooleanRatio >= c.config.Threshold {
		return dataset.TypeBoolean
	}
	return dataset.TypeString
}

// InferColumnTypes infers a type for every column of the records
func (c *TypeCoercer) InferColumnTypes(columns []string, records []map[string]interface{}) map[string]dataset.ColumnType {
	types := make(map[string]dataset.ColumnType, len(columns))
	for _, col := range columns {
		values := make([]interface{}, 0, min(len(records), c.config.SampleSize))
		for _, rec := range records {
			raw := rec[col]
			if IsMissing(raw) {
				continue
			}
			values = append(values, raw)
			if len(values) >= c.config.SampleSize {
				break
			}
		}
		types[col] = c.InferType(values)
	}
	return types
}

// BuildDataset infers undeclared column types and coerces every record into an
// immutable Dataset. When columns is empty the order is the first-seen key order.
func (c *TypeCoercer) BuildDataset(name string, columns []string, records []map[string]interface{}, declared map[string]dataset.ColumnType) (*dataset.Dataset, error) {
	if len(columns) == 0 {
		columns = ColumnsFromRecords(records)
	}

	types := make(map[string]dataset.ColumnType, len(columns))
	var undeclared []string
	for _, col := range columns {
		if t, ok := declared[col]; ok && t != "" {
			if !t.Valid() {
				return nil, errors.InvalidInput(fmt.Sprintf("column %q has unsupported type %q", col, t))
			}
			types[col] = t
			continue
		}
		undeclared = append(undeclared, col)
	}
	for col, t := range c.InferColumnTypes(undeclared, records) {
		types[col] = t
	}

	rows := make([][]dataset.Value, len(records))
	for r, rec := range records {
		row := make([]dataset.Value, len(columns))
		for i, col := range columns {
			row[i] = c.CoerceTo(rec[col], types[col])
		}
		rows[r] = row
	}

	ds, err := dataset.NewDataset(name, columns, types, rows)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return ds, nil
}

// ColumnsFromRecords returns column names in first-seen order; keys within one
// record are visited in sorted order so the result is deterministic
func ColumnsFromRecords(records []map[string]interface{}) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}

// IsMissing reports whether a raw value counts as missing: nil, empty or
// whitespace-only strings, NaN, and already-missing dataset values
func IsMissing(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case float64:
		return math.IsNaN(v)
	case dataset.Value:
		return v.IsMissing()
	}
	return false
}

// CoerceTo converts a raw value to the variant of column type t. Values that
// cannot be coerced come back as Missing.
func (c *TypeCoercer) CoerceTo(raw interface{}, t dataset.ColumnType) dataset.Value {
	if IsMissing(raw) {
		return dataset.Missing()
	}
	if v, ok := raw.(dataset.Value); ok {
		if v.Kind() == t.Kind() {
			return v
		}
		raw = v.String()
	}

	switch t {
	case dataset.TypeNumber:
		if f, ok := toFloat(raw); ok {
			return dataset.Number(f)
		}
		if s, ok := raw.(string); ok {
			if f, ok := parseNumeric(s); ok {
				return dataset.Number(f)
			}
		}
	case dataset.TypeDate:
		switch v := raw.(type) {
		case time.Time:
			return dataset.Temporal(v)
		case string:
			if ts, ok := parseTimestamp(v); ok {
				return dataset.Temporal(ts)
			}
		}
	case dataset.TypeBoolean:
		switch v := raw.(type) {
		case bool:
			return dataset.Flag(v)
		case string:
			if b, ok := parseBoolean(v); ok {
				return dataset.Flag(b)
			}
		}
	case dataset.TypeString:
		return dataset.Text(toString(raw))
	}
	return dataset.Missing()
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case interface{ Float64() (float64, error) }:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

var thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// parseNumeric handles accounting negatives, currency symbols, percent signs,
// and thousands/decimal separators
func parseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	switch {
	case thousandsPattern.MatchString(cleanVal):
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	case hasComma && hasPeriod:
		// 1.234,56
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			return 0, false
		}
	case hasComma:
		// 12,5
		if strings.Count(cleanVal, ",") != 1 {
			return 0, false
		}
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	}
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func parseBoolean(strVal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2006",
}

func parseTimestamp(strVal string) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
