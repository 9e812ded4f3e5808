package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCanonicalOrder(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("SMA", map[string]string{
		"datatype":    "json",
		"series_type": "close",
		"time_period": "20",
		"interval":    "daily",
	})
	require.NoError(t, err)

	canonical := Build(validated)
	assert.Equal(t, "SMA", canonical.Function())
	assert.Equal(t, []Param{
		{Key: FunctionKey, Value: "SMA"},
		{Key: "interval", Value: "daily"},
		{Key: "time_period", Value: "20"},
		{Key: "series_type", Value: "close"},
		{Key: "datatype", Value: "json"},
	}, canonical.Pairs(), "Function first, then required, then optionals, in declared order")
}

func TestBuildOmitsUnsuppliedOptionals(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("TIME_SERIES_WEEKLY", map[string]string{
		"datatype": "csv",
	})
	require.NoError(t, err)

	canonical := Build(validated)
	assert.Equal(t, []Param{
		{Key: FunctionKey, Value: "TIME_SERIES_WEEKLY"},
		{Key: "datatype", Value: "csv"},
	}, canonical.Pairs())
	assert.Equal(t, "function=TIME_SERIES_WEEKLY&datatype=csv", canonical.Encode())
}

func TestEncodeEscapesValues(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("SMA", map[string]string{
		"interval":    "60 min",
		"time_period": "20",
		"series_type": "close&open",
	})
	require.NoError(t, err)

	canonical := Build(validated)
	assert.Equal(t,
		"function=SMA&interval=60+min&time_period=20&series_type=close%26open",
		canonical.Encode())
}

func TestPairsReturnsCopy(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("TIME_SERIES_WEEKLY", nil)
	require.NoError(t, err)

	canonical := Build(validated)
	pairs := canonical.Pairs()
	pairs[0].Value = "mutated"
	assert.Equal(t, "TIME_SERIES_WEEKLY", canonical.Pairs()[0].Value)
}
