package coercer

import (
	"testing"

	"epistack/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_InfersKinds(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name string
		raw  []string
		want dataset.Kind
	}{
		{"numeric", []string{"1", "2.5", "NA", "-3", "1e2"}, dataset.KindNumeric},
		{"mostly numeric", []string{"1", "2", "3", "4", "oops"}, dataset.KindNumeric},
		{"boolean", []string{"TRUE", "false", "T", "", "F"}, dataset.KindBoolean},
		{"yes no stays categorical", []string{"yes", "no", "yes"}, dataset.KindCategorical},
		{"text", []string{"ctrl", "trt", "1", "ctrl"}, dataset.KindCategorical},
		{"all missing", []string{"NA", ".", ""}, dataset.KindCategorical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := c.Column("x", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, col.Kind())
			assert.Equal(t, len(tt.raw), col.Len())
		})
	}
}

func TestColumn_UnparsableCellsBecomeMissing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	col, err := c.Column("age", []string{"31", "40", "unknown", "22", "19"})
	require.NoError(t, err)
	assert.Equal(t, dataset.KindNumeric, col.Kind())
	assert.True(t, col.IsMissing(2))
	assert.Equal(t, 4, col.ValidCount())
}

func TestColumn_MissingTokens(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.MissingTokens = []string{"-99"}
	c := NewTypeCoercer(cfg)

	col, err := c.Column("score", []string{"3", "-99", " -99 ", "4"})
	require.NoError(t, err)
	assert.Equal(t, 2, col.ValidCount())

	// "NA" is an ordinary label once the token list is replaced
	col, err = c.Column("grp", []string{"NA", "EU"})
	require.NoError(t, err)
	assert.Equal(t, []string{"EU", "NA"}, col.Levels())
}

func TestTryParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"(12)", -12, true},
		{"1,234.5", 1234.5, true},
		{"1.234,5", 1234.5, true},
		{"2,5", 2.5, true},
		{"1e-3", 0.001, true},
		{"Inf", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := tryParseNumeric(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-12, tt.in)
		}
	}
}

func TestCategoricalCellsAreTrimmed(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	col, err := c.Column("sex", []string{" M", "F ", "M\t"})
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "M"}, col.Levels())
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	a := c.AnalyzeTypeDistribution([]string{"1", "0", "true", "NA"})
	assert.Equal(t, 4, a.TotalCount)
	assert.Equal(t, 3, a.ValidCount)
	assert.Equal(t, 2, a.NumericCount)
	assert.Equal(t, 1, a.BooleanCount)
	assert.Equal(t, dataset.KindCategorical, a.RecommendedType)
}
