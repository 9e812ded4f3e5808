package feed

import "strings"

// Time-series payloads prefix every key with an ordinal, "1. open",
// "3. Last Refreshed", and so on. Indicator payloads do not.
var timeSeriesFunctions = map[string]struct{}{
	"TIME_SERIES_INTRADAY":       {},
	"TIME_SERIES_DAILY":          {},
	"TIME_SERIES_DAILY_ADJUSTED": {},
	"TIME_SERIES_WEEKLY":         {},
	"TIME_SERIES_MONTHLY":        {},
}

var ordinalKeyTitles = []string{
	"open", "close", "low", "high", "volume", "information",
	"symbol", "last refreshed", "time zone",
}

// NormalizeResponse strips the ordinal prefixes from time-series payload keys
// so that "1. open" becomes "open". Payloads of non-time-series functions are
// returned untouched. The input map is not modified.
func NormalizeResponse(payload map[string]interface{}, function string) map[string]interface{} {
	if _, ok := timeSeriesFunctions[function]; !ok {
		return payload
	}
	normalized, _ := normalizeValue(payload).(map[string]interface{})
	if normalized == nil {
		return payload
	}
	return normalized
}

func normalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[normalizeKey(k)] = normalizeValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return val
	}
}

func normalizeKey(key string) string {
	lower := strings.ToLower(key)
	for _, title := range ordinalKeyTitles {
		if strings.Contains(lower, title) {
			if _, after, found := strings.Cut(key, ". "); found {
				return after
			}
			return key
		}
	}
	return key
}
