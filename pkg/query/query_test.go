package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/Ruscigno/AlphaPulse/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	asset := `{
		"SMA": {
			"verbose": "simple moving average",
			"desc": "",
			"req": ["interval", "time_period", "series_type"],
			"opt": ["datatype"]
		},
		"TIME_SERIES_WEEKLY": {
			"verbose": "Weekly Time Series",
			"desc": "",
			"req": [],
			"opt": ["outputsize", "datatype"]
		}
	}`
	registry, err := schema.Load(strings.NewReader(asset))
	require.NoError(t, err)
	return NewEngine(registry)
}

func TestValidate(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("SMA", map[string]string{
		"interval":    "daily",
		"time_period": "20",
		"series_type": "close",
	})
	require.NoError(t, err)
	assert.Equal(t, "SMA", validated.Function())

	v, ok := validated.Get("time_period")
	assert.True(t, ok)
	assert.Equal(t, "20", v)
}

func TestValidateKeepsExactlySuppliedEntries(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("SMA", map[string]string{
		"interval":    "daily",
		"time_period": "20",
		"series_type": "close",
	})
	require.NoError(t, err)

	values := validated.Values()
	assert.Len(t, values, 3, "Nothing dropped, no defaults injected")
	_, ok := validated.Get("datatype")
	assert.False(t, ok, "Unsupplied optionals must not appear")

	// Values returns a copy.
	values["interval"] = "mutated"
	v, _ := validated.Get("interval")
	assert.Equal(t, "daily", v)
}

func TestValidateMissingRequired(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("SMA", map[string]string{"interval": "daily"})
	require.Error(t, err)
	assert.Nil(t, validated)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "SMA", verr.Function)
	assert.Equal(t, []string{"time_period", "series_type"}, verr.Missing,
		"Missing names come out in declared order, complete in one pass")
	assert.Empty(t, verr.Unsupported)
}

func TestValidateUnsupported(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("TIME_SERIES_WEEKLY", map[string]string{
		"outputsize": "full",
		"foo":        "bar",
	})
	require.Error(t, err)
	assert.Nil(t, validated)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, verr.Missing)
	assert.Equal(t, []string{"foo"}, verr.Unsupported)
}

func TestValidateReportsBothViolationsAtOnce(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.Validate("SMA", map[string]string{
		"interval": "daily",
		"zig":      "1",
		"foo":      "2",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"time_period", "series_type"}, verr.Missing)
	assert.Equal(t, []string{"foo", "zig"}, verr.Unsupported, "Unsupported names are sorted")
	assert.Contains(t, verr.Error(), "missing required parameters")
	assert.Contains(t, verr.Error(), "unsupported parameters")
}

func TestValidateUnknownFunction(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.Validate("NOT_A_FUNCTION", map[string]string{"interval": "daily"})
	require.Error(t, err)

	var unknown *schema.UnknownFunctionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "NOT_A_FUNCTION", unknown.Function)
}

func TestValidateEmptyParamsAgainstEmptyContract(t *testing.T) {
	engine := testEngine(t)

	validated, err := engine.Validate("TIME_SERIES_WEEKLY", nil)
	require.NoError(t, err)
	assert.Empty(t, validated.Values())
}

func TestValidateAndBuild(t *testing.T) {
	engine := testEngine(t)

	canonical, err := engine.ValidateAndBuild("SMA", map[string]string{
		"series_type": "close",
		"interval":    "daily",
		"time_period": "20",
	})
	require.NoError(t, err)
	assert.Equal(t, "function=SMA&interval=daily&time_period=20&series_type=close", canonical.Encode())
}

func TestValidateAndBuildPropagatesValidationError(t *testing.T) {
	engine := testEngine(t)

	canonical, err := engine.ValidateAndBuild("SMA", nil)
	require.Error(t, err)
	assert.Nil(t, canonical)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
