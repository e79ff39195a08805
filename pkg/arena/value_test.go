package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_Number(t *testing.T) {
	v, err := ParseValue(UnitNumber, "5.2")
	require.NoError(t, err)
	assert.Equal(t, 5.2, v.Number)
	assert.Equal(t, "5.2 km", v.Display("km"))
	assert.Equal(t, "5.2", v.Raw())

	_, err = ParseValue(UnitNumber, "chapter 5")
	assert.Error(t, err)
}

func TestParseValue_Time(t *testing.T) {
	v, err := ParseValue(UnitTime, "00:30:00")
	require.NoError(t, err)
	assert.Equal(t, 30, v.Minutes)
	assert.Equal(t, "30 minutes", v.Display(""))

	v, err = ParseValue(UnitTime, "01:05:00")
	require.NoError(t, err)
	assert.Equal(t, 65, v.Minutes)

	v, err = ParseValue(UnitTime, "45")
	require.NoError(t, err)
	assert.Equal(t, 45, v.Minutes)
	assert.Equal(t, "45", v.Raw())

	v, err = ParseValue(UnitTime, "1")
	require.NoError(t, err)
	assert.Equal(t, "1 minute", v.Display(""))

	_, err = ParseValue(UnitTime, "soon")
	assert.Error(t, err)
}

func TestParseValue_Boolean(t *testing.T) {
	for _, raw := range []string{"true", "yes", "1", "done"} {
		v, err := ParseValue(UnitBoolean, raw)
		require.NoError(t, err, raw)
		assert.True(t, v.Bool, raw)
	}
	v, err := ParseValue(UnitBoolean, "no")
	require.NoError(t, err)
	assert.False(t, v.Bool)
	assert.Equal(t, "No", v.Display(""))
	assert.Equal(t, "false", v.Raw())

	_, err = ParseValue(UnitBoolean, "maybe")
	assert.Error(t, err)
}

func TestParseValue_Text(t *testing.T) {
	v, err := ParseValue(UnitText, "chapter 5")
	require.NoError(t, err)
	assert.Equal(t, "chapter 5", v.Text)
	assert.Equal(t, "chapter 5", v.Display("ignored"))
}

func TestNumericValue_Coercion(t *testing.T) {
	assert.Equal(t, 5.2, NumericValue("5.2"))
	assert.Equal(t, 0.0, NumericValue("not a number"))
	assert.Equal(t, 0.0, NumericValue(""))
}
