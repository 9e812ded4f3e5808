package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResponseTimeSeries(t *testing.T) {
	payload := map[string]interface{}{
		"Meta Data": map[string]interface{}{
			"1. Information":    "Daily Prices",
			"2. Symbol":         "MSFT",
			"3. Last Refreshed": "2024-01-05",
			"5. Time Zone":      "US/Eastern",
		},
		"Time Series (Daily)": map[string]interface{}{
			"2024-01-05": map[string]interface{}{
				"1. open":   "368.00",
				"2. high":   "370.10",
				"3. low":    "366.50",
				"4. close":  "367.75",
				"5. volume": "20019000",
			},
		},
	}

	out := NormalizeResponse(payload, "TIME_SERIES_DAILY")
	require.NotNil(t, out)

	meta, ok := out["Meta Data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "MSFT", meta["Symbol"])
	assert.Equal(t, "US/Eastern", meta["Time Zone"])

	series, ok := out["Time Series (Daily)"].(map[string]interface{})
	require.True(t, ok)
	day, ok := series["2024-01-05"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "368.00", day["open"])
	assert.Equal(t, "20019000", day["volume"])
	assert.NotContains(t, day, "1. open")
}

func TestNormalizeResponseLeavesIndicatorPayloadsAlone(t *testing.T) {
	payload := map[string]interface{}{
		"Technical Analysis: SMA": map[string]interface{}{
			"2024-01-05": map[string]interface{}{"SMA": "152.31"},
		},
	}

	out := NormalizeResponse(payload, "SMA")
	assert.Equal(t, payload, out)
}

func TestNormalizeResponseDoesNotMutateInput(t *testing.T) {
	inner := map[string]interface{}{"1. open": "368.00"}
	payload := map[string]interface{}{
		"Time Series (Daily)": map[string]interface{}{"2024-01-05": inner},
	}

	NormalizeResponse(payload, "TIME_SERIES_DAILY")
	assert.Contains(t, inner, "1. open", "The input payload must stay untouched")
}

func TestNormalizeResponseKeepsUnrelatedKeys(t *testing.T) {
	payload := map[string]interface{}{
		"Time Series (Weekly)": map[string]interface{}{
			"2024-01-05": map[string]interface{}{
				"1. open":    "368.00",
				"2024-01-04": "unrelated date key",
			},
		},
	}

	out := NormalizeResponse(payload, "TIME_SERIES_WEEKLY")
	week := out["Time Series (Weekly)"].(map[string]interface{})
	day := week["2024-01-05"].(map[string]interface{})
	assert.Equal(t, "368.00", day["open"])
	assert.Equal(t, "unrelated date key", day["2024-01-04"],
		"Keys that are not ordinal-prefixed field names pass through")
}
