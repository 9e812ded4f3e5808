package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	asset := `{
		"EMA": {"verbose": "exponential moving average", "desc": "", "req": ["interval", "time_period", "series_type"], "opt": ["datatype"]},
		"SMA": {"verbose": "simple moving average", "desc": "", "req": ["interval", "time_period", "series_type"], "opt": ["datatype"]},
		"TIME_SERIES_DAILY": {"verbose": "Daily Time Series", "desc": "", "req": [], "opt": ["outputsize", "datatype"]}
	}`
	registry, err := Load(strings.NewReader(asset))
	require.NoError(t, err)
	return registry
}

func TestRegistryLookup(t *testing.T) {
	registry := testRegistry(t)

	spec, err := registry.Lookup("SMA")
	require.NoError(t, err)
	assert.Equal(t, "SMA", spec.ID)
	assert.True(t, spec.IsRequired("interval"))
	assert.True(t, spec.IsOptional("datatype"))
	assert.True(t, spec.IsSupported("series_type"))
	assert.False(t, spec.IsSupported("outputsize"))
}

func TestRegistryLookupUnknownFunction(t *testing.T) {
	registry := testRegistry(t)

	spec, err := registry.Lookup("NOT_A_FUNCTION")
	require.Error(t, err)
	assert.Nil(t, spec)

	var unknown *UnknownFunctionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "NOT_A_FUNCTION", unknown.Function)
	assert.Contains(t, unknown.Error(), "NOT_A_FUNCTION")
}

func TestRegistryFunctionsSortedCopy(t *testing.T) {
	registry := testRegistry(t)

	ids := registry.Functions()
	assert.Equal(t, []string{"EMA", "SMA", "TIME_SERIES_DAILY"}, ids)

	// Mutating the returned slice must not touch the registry.
	ids[0] = "mutated"
	assert.Equal(t, []string{"EMA", "SMA", "TIME_SERIES_DAILY"}, registry.Functions())
}
