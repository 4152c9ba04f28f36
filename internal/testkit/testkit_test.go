package testkit

import (
	"math"
	"path/filepath"
	"testing"

	"epistack/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbreak_IsDeterministic(t *testing.T) {
	a := Outbreak()
	b := Outbreak()
	ha, ra := Records(a)
	hb, rb := Records(b)
	assert.Equal(t, ha, hb)
	assert.Equal(t, ra, rb)
	assert.Equal(t, 400, a.NumRows())
}

func TestOutbreak_EclairRaisesAttackRate(t *testing.T) {
	frame := Outbreak()
	eclair := frame.ColumnByName("eclair").Floats()
	ill := frame.ColumnByName("case").Floats()

	var exposedCases, exposed, unexposedCases, unexposed float64
	for i := range eclair {
		if eclair[i] == 1 {
			exposed++
			exposedCases += ill[i]
		} else {
			unexposed++
			unexposedCases += ill[i]
		}
	}
	require.NotZero(t, exposed)
	require.NotZero(t, unexposed)
	assert.Greater(t, exposedCases/exposed, 2*unexposedCases/unexposed)
}

func TestAttitudes_Shape(t *testing.T) {
	frame := Attitudes()
	assert.Equal(t, 140, frame.NumRows())
	assert.Equal(t, []string{"id", "sex", "dep", "qa1", "qa2", "qa3", "qa4", "qa5", "qa6", "qa7"}, frame.Names())

	for k := 1; k <= 7; k++ {
		col := frame.ColumnByName(ItemName(k))
		assert.Equal(t, dataset.KindNumeric, col.Kind())
		for _, v := range col.Floats() {
			if !math.IsNaN(v) {
				assert.True(t, v >= 1 && v <= 5, "item %d value %v out of range", k, v)
			}
		}
	}
}

func TestWriteCSVAndXLSX(t *testing.T) {
	dir := t.TempDir()
	frame := GenerateAttitudes(AttitudesConfig{Rows: 10, Items: 3, Seed: 1, Noise: 0.5})

	require.NoError(t, WriteCSV(filepath.Join(dir, "att.csv"), frame))
	require.NoError(t, WriteXLSX(filepath.Join(dir, "att.xlsx"), frame))
	assert.FileExists(t, filepath.Join(dir, "att.csv"))
	assert.FileExists(t, filepath.Join(dir, "att.xlsx"))
}
