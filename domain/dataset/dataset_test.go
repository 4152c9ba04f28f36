package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColumn_Kinds(t *testing.T) {
	num, err := NewColumn("x", KindNumeric, []Value{NumberValue(1), {Number: math.NaN()}, MissingValue()})
	require.NoError(t, err)
	assert.Equal(t, 1, num.ValidCount())
	assert.True(t, num.IsMissing(1))

	_, err = NewColumn("b", KindBoolean, []Value{BoolValue(true), {Number: 2}})
	assert.Error(t, err)

	_, err = NewColumn("", KindNumeric, nil)
	assert.Error(t, err)

	_, err = NewColumn("k", Kind("date"), nil)
	assert.Error(t, err)
}

func TestCategoricalLevels(t *testing.T) {
	lex := Categorical("grp", []string{"trt", "ctrl", "", "trt"})
	assert.Equal(t, []string{"ctrl", "trt"}, lex.Levels())
	assert.True(t, lex.IsMissing(2))

	numeric := Categorical("dose", []string{"10", "2", "1.5"})
	assert.Equal(t, []string{"1.5", "2", "10"}, numeric.Levels())
	assert.Equal(t, []float64{10, 2, 1.5}, numeric.Floats())
}

func TestNewCategoricalWithLevels(t *testing.T) {
	col, err := NewCategoricalWithLevels("edu", []string{"high", "low", ""}, []string{"low", "mid", "high"})
	require.NoError(t, err)
	f := col.Factor()
	assert.Equal(t, []string{"low", "mid", "high"}, f.Levels)
	assert.Equal(t, []int{2, 0, -1}, f.Codes)
	assert.Equal(t, []int{1, 0, 1}, f.Counts())

	_, err = NewCategoricalWithLevels("edu", []string{"phd"}, []string{"low"})
	assert.Error(t, err)
	_, err = NewCategoricalWithLevels("edu", nil, []string{"low", "low"})
	assert.Error(t, err)
}

func TestFactorViews(t *testing.T) {
	b := Boolean("ill", []bool{true, false, true})
	f := b.Factor()
	assert.Equal(t, []string{LevelFalse, LevelTrue}, f.Levels)
	assert.Equal(t, []int{1, 0, 1}, f.Codes)

	n := Numeric("stage", []float64{3, 1, math.NaN(), 1.5})
	f = n.Factor()
	assert.Equal(t, []string{"1", "1.5", "3"}, f.Levels)
	assert.Equal(t, []int{2, 0, -1, 1}, f.Codes)
	assert.Equal(t, 4, f.Len())
}

func TestFloatsIsACopy(t *testing.T) {
	c := Numeric("x", []float64{1, 2})
	view := c.Floats()
	view[0] = 99
	assert.Equal(t, 1.0, c.Value(0).Number)
}

func TestWithLabel(t *testing.T) {
	c := Numeric("age", []float64{1})
	labelled := c.WithLabel("Age (years)")
	assert.Equal(t, "age", c.Label())
	assert.Equal(t, "Age (years)", labelled.Label())
	assert.Equal(t, "age", labelled.Name())
}

func TestNewFrame(t *testing.T) {
	f, err := NewFrame(Numeric("a", []float64{1, 2}), Categorical("b", []string{"x", "y"}))
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 2, f.NumCols())
	assert.Equal(t, []string{"a", "b"}, f.Names())
	pos, ok := f.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Nil(t, f.ColumnByName("c"))

	_, err = NewFrame(Numeric("a", []float64{1}), Numeric("a", []float64{2}))
	assert.Error(t, err)
	_, err = NewFrame(Numeric("a", []float64{1}), Numeric("b", []float64{1, 2}))
	assert.Error(t, err)
	_, err = NewFrame(nil)
	assert.Error(t, err)
}

func TestFrameWithLabels(t *testing.T) {
	f := MustFrame(Numeric("a", []float64{1}), Numeric("b", []float64{2}))
	labelled, err := f.WithLabels(map[string]string{"b": "Body mass"})
	require.NoError(t, err)
	assert.Equal(t, "Body mass", labelled.ColumnByName("b").Label())
	assert.Equal(t, "b", f.ColumnByName("b").Label())

	_, err = f.WithLabels(map[string]string{"z": "?"})
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "3", FormatNumber(3))
	assert.Equal(t, "2.5", FormatNumber(2.5))
	assert.Equal(t, "-0.125", FormatNumber(-0.125))
}
