package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	v, err := parseNumeric("1234.500000000000000000")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, v)

	v, err = parseNumeric("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = parseNumeric("NaNx")
	assert.Error(t, err)
}

func TestParseNullableNumeric(t *testing.T) {
	got, err := parseNullableNumeric(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw := "0.25"
	got, err = parseNullableNumeric(&raw)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0.25, *got)
}

func TestFormatNumeric(t *testing.T) {
	assert.Equal(t, "0.1", formatNumeric(0.1))
	assert.Equal(t, "1500", formatNumeric(1500))
}

func TestNumericFields(t *testing.T) {
	var a, b float64
	require.NoError(t, numericFields(
		numericPair{"a", "1.5", &a},
		numericPair{"b", "2", &b},
	))
	assert.Equal(t, 1.5, a)
	assert.Equal(t, 2.0, b)

	err := numericFields(numericPair{"bad", "x", &a})
	assert.ErrorContains(t, err, "bad")
}
