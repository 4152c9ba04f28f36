package app

import (
	"testing"

	"epistack/domain/core"
	"epistack/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFrame() *dataset.Frame {
	return dataset.MustFrame(
		dataset.Numeric("a", []float64{1, 2}),
		dataset.Numeric("b", []float64{1, 2}),
		dataset.Numeric("c", []float64{1, 2}),
		dataset.Numeric("d", []float64{1, 2}),
	)
}

func TestResolve(t *testing.T) {
	frame := resolverFrame()
	tests := []struct {
		name string
		sel  Selection
		want []int
	}{
		{"names keep first-mention order", Names("c", "a"), []int{2, 0}},
		{"positions", Positions(3, 1), []int{3, 1}},
		{"inclusive range", Selection{Range(1, 3)}, []int{1, 2, 3}},
		{"descending range", Selection{Range(2, 0)}, []int{2, 1, 0}},
		{"name range", Selection{NameRange("b", "d")}, []int{1, 2, 3}},
		{"mixed", Selection{Name("d"), Range(0, 1)}, []int{3, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(frame, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ReferenceErrors(t *testing.T) {
	frame := resolverFrame()
	tests := []struct {
		name    string
		sel     Selection
		mention string
	}{
		{"unknown name", Names("zz"), "zz"},
		{"position out of range", Positions(4), "4"},
		{"negative position", Positions(-1), "-1"},
		{"duplicate through range", Selection{Name("b"), Range(0, 2)}, "b"},
		{"duplicate name", Names("a", "a"), "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(frame, tt.sel)
			require.Error(t, err)
			assert.True(t, core.IsReferenceError(err))
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("a, 2, 0:1, b:d")
	require.NoError(t, err)
	require.Len(t, sel, 4)
	assert.Equal(t, "a", sel[0].String())
	assert.Equal(t, "2", sel[1].String())
	assert.Equal(t, "0:1", sel[2].String())
	assert.Equal(t, "b:d", sel[3].String())

	_, err = ParseSelection("a,,b")
	assert.Error(t, err)
	_, err = ParseSelection("3:")
	assert.Error(t, err)

	empty, err := ParseSelection("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestResolveGrouping_SyntheticTotal(t *testing.T) {
	g, err := resolveGrouping(resolverFrame(), Name(TotalGroup))
	require.NoError(t, err)
	assert.Equal(t, []string{TotalGroup}, g.levels)
	assert.Equal(t, []int{2}, g.sizes())
	assert.Equal(t, -1, g.column)

	_, err = resolveGrouping(resolverFrame(), Range(0, 1))
	assert.True(t, core.IsReferenceError(err))
}
