package analysis

import (
	"strings"
	"unicode"

	"datadigest/domain/dataset"
)

const (
	columnMatchWeight    = 2
	operationMatchWeight = 1
)

// operationSynonyms maps query words onto reducers
var operationSynonyms = map[string]dataset.Operation{
	"sum":       dataset.OpSum,
	"total":     dataset.OpSum,
	"totals":    dataset.OpSum,
	"avg":       dataset.OpAvg,
	"average":   dataset.OpAvg,
	"averages":  dataset.OpAvg,
	"mean":      dataset.OpAvg,
	"count":     dataset.OpCount,
	"counts":    dataset.OpCount,
	"number":    dataset.OpCount,
	"frequency": dataset.OpCount,
	"min":       dataset.OpMin,
	"minimum":   dataset.OpMin,
	"lowest":    dataset.OpMin,
	"smallest":  dataset.OpMin,
	"least":     dataset.OpMin,
	"max":       dataset.OpMax,
	"maximum":   dataset.OpMax,
	"highest":   dataset.OpMax,
	"largest":   dataset.OpMax,
	"biggest":   dataset.OpMax,
	"peak":      dataset.OpMax,
}

// Tokenize lowercases text and splits it on runs of anything that is not a
// letter or digit, in any script
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// columnMatches reports whether a query token names the column: either the
// whole lowercased name or one of its own tokens ("unit" for "Unit Price")
func columnMatches(token, column string) bool {
	if token == strings.ToLower(column) {
		return true
	}
	for _, part := range Tokenize(column) {
		if part == token {
			return true
		}
	}
	return false
}

// ScoreAggregation weighs column-name matches twice as much as operation matches
func ScoreAggregation(tokens []string, agg dataset.Aggregation) int {
	columnHits, opHits := 0, 0
	for _, token := range tokens {
		if columnMatches(token, agg.GroupBy) || columnMatches(token, agg.Metric) {
			columnHits++
		}
		if op, ok := operationSynonyms[token]; ok && op == agg.Operation {
			opHits++
		}
	}
	return columnHits*columnMatchWeight + opHits*operationMatchWeight
}

// FindRelevantAggregation picks the precomputed aggregation of summary that
// best matches a free-text query
func FindRelevantAggregation(summary *dataset.DataSummary, query string) (dataset.Aggregation, bool) {
	if summary == nil {
		return dataset.Aggregation{}, false
	}
	return MatchAggregation(summary.PrecomputedAggregations, query)
}

// MatchAggregation returns the aggregation with the strictly highest score for
// the query. Ties keep the earliest aggregation; no positive score means no
// match.
func MatchAggregation(aggs []dataset.Aggregation, query string) (dataset.Aggregation, bool) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return dataset.Aggregation{}, false
	}

	best, bestScore := -1, 0
	for i, agg := range aggs {
		if score := ScoreAggregation(tokens, agg); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return dataset.Aggregation{}, false
	}
	return aggs[best], true
}
