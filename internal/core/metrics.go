package core

import "github.com/JonMunkholm/branchtree/internal/tabular"

// ExtractMetrics reads every column of [MetricColumns] from row.
// Missing, empty or non-numeric cells yield zero. Integer metrics are parsed
// as decimals and truncated toward zero, so "12.9" becomes 12.
func ExtractMetrics(row tabular.Row) MetricSet {
	var m MetricSet
	for _, mc := range MetricColumns {
		v := ParseMetric(row.Get(mc.Column))
		switch mc.Kind {
		case MetricInteger:
			*mc.intField(&m) = truncate(v)
		case MetricDecimal:
			*mc.decField(&m) = v
		}
	}
	return m
}
