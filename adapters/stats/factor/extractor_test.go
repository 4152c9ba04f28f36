package factor

import (
	"math/rand"
	"testing"

	"epistack/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// traitItems builds n observations of p noisy indicators of one latent trait.
// Items listed in negative load on the trait with the opposite sign.
func traitItems(n, p int, negative map[int]bool, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		trait := rng.NormFloat64()
		for j := 0; j < p; j++ {
			sign := 1.0
			if negative[j] {
				sign = -1
			}
			data.Set(i, j, sign*trait+0.6*rng.NormFloat64())
		}
	}
	return data
}

func TestScores_RecoverItemPolarity(t *testing.T) {
	items := traitItems(300, 4, map[int]bool{2: true}, 7)

	scores, err := NewExtractor().Scores(items)
	require.NoError(t, err)
	require.Len(t, scores, 300)

	for j := 0; j < 4; j++ {
		r := stat.Correlation(scores, mat.Col(nil, j, items), nil)
		if j == 2 {
			assert.Less(t, r, -0.5, "item %d should correlate negatively", j)
		} else {
			assert.Greater(t, r, 0.5, "item %d should correlate positively", j)
		}
	}
}

func TestLoadings_OrientedToPositiveSum(t *testing.T) {
	items := traitItems(300, 3, map[int]bool{0: true, 1: true, 2: true}, 11)

	loadings, err := NewExtractor().Loadings(items)
	require.NoError(t, err)
	sum := 0.0
	for _, l := range loadings {
		sum += l
	}
	assert.GreaterOrEqual(t, sum, 0.0)
}

func TestScores_Failures(t *testing.T) {
	t.Run("duplicate items make the correlation matrix singular", func(t *testing.T) {
		items := mat.NewDense(5, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4, 5, 5})
		_, err := NewExtractor().Scores(items)
		require.Error(t, err)
		assert.True(t, core.IsStatisticalError(err))
	})

	t.Run("constant item", func(t *testing.T) {
		items := mat.NewDense(4, 2, []float64{1, 3, 2, 3, 3, 3, 4, 3})
		_, err := NewExtractor().Scores(items)
		assert.ErrorIs(t, err, core.ErrDegenerate)
	})

	t.Run("too few observations", func(t *testing.T) {
		items := mat.NewDense(2, 2, []float64{1, 2, 3, 5})
		_, err := NewExtractor().Scores(items)
		assert.ErrorIs(t, err, core.ErrInsufficientData)
	})

	t.Run("single item", func(t *testing.T) {
		items := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
		_, err := NewExtractor().Scores(items)
		assert.ErrorIs(t, err, core.ErrDegenerate)
	})
}

func TestNewExtractorWithConfig(t *testing.T) {
	items := traitItems(120, 3, nil, 11)
	want, err := NewExtractor().Scores(items)
	require.NoError(t, err)

	got, err := NewExtractorWithConfig(DefaultConfig()).Scores(items)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)

	_, err = NewExtractorWithConfig(Config{MaxIterations: 0, Tolerance: 1e-6, MaxCommunality: 0.995}).Scores(items)
	assert.Error(t, err)
}
