// Package factor fits a one-factor model to a complete-case item matrix by
// iterated principal-axis factoring and returns regression-method factor
// scores.
package factor

import (
	"fmt"
	"math"

	"epistack/domain/core"
	"epistack/ports"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// maxCondition bounds the condition number of an invertible correlation matrix
const maxCondition = 1e12

// Config controls the principal-axis iteration
type Config struct {
	MaxIterations int
	Tolerance     float64
	// Communalities are capped below one to keep the reduced matrix proper
	MaxCommunality float64
}

// DefaultConfig returns the iteration settings used by NewExtractor
func DefaultConfig() Config {
	return Config{
		MaxIterations:  200,
		Tolerance:      1e-6,
		MaxCommunality: 0.995,
	}
}

// Extractor implements ports.FactorExtractorPort
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with DefaultConfig
func NewExtractor() *Extractor {
	return &Extractor{cfg: DefaultConfig()}
}

// NewExtractorWithConfig creates an extractor with custom settings
func NewExtractorWithConfig(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

var _ ports.FactorExtractorPort = (*Extractor)(nil)

// Scores returns one factor score per row of items. Loadings are oriented so
// that they sum to a non-negative value.
func (e *Extractor) Scores(items *mat.Dense) ([]float64, error) {
	loadings, z, rinv, err := e.fit(items)
	if err != nil {
		return nil, err
	}

	var weights mat.VecDense
	weights.MulVec(rinv, loadings)

	var scores mat.VecDense
	scores.MulVec(z, &weights)
	return mat.Col(nil, 0, &scores), nil
}

// Loadings returns the oriented loading of each item on the factor
func (e *Extractor) Loadings(items *mat.Dense) ([]float64, error) {
	loadings, _, _, err := e.fit(items)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, loadings), nil
}

func (e *Extractor) fit(items *mat.Dense) (*mat.VecDense, *mat.Dense, *mat.Dense, error) {
	if items == nil {
		return nil, nil, nil, core.NewInsufficientDataError("factor extraction", 3, 0)
	}
	n, p := items.Dims()
	if p < 2 {
		return nil, nil, nil, fmt.Errorf("%w: factor extraction needs at least 2 items, got %d", core.ErrDegenerate, p)
	}
	if n < 3 {
		return nil, nil, nil, core.NewInsufficientDataError("factor extraction", 3, n)
	}

	z, err := standardize(items)
	if err != nil {
		return nil, nil, nil, err
	}

	corr := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(corr, items, nil)
	if cond := mat.Cond(corr, 1); cond > maxCondition {
		return nil, nil, nil, fmt.Errorf("%w: correlation matrix is near singular (condition %g)", core.ErrDegenerate, cond)
	}
	var rinv mat.Dense
	if err := rinv.Inverse(corr); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: correlation matrix is singular: %v", core.ErrDegenerate, err)
	}

	// Squared multiple correlations seed the communalities
	h := make([]float64, p)
	for i := range h {
		h[i] = e.clampCommunality(1 - 1/rinv.At(i, i))
	}

	reduced := mat.NewSymDense(p, nil)
	reduced.CopySym(corr)

	var loadings *mat.VecDense
	converged := false
	for iter := 0; iter < e.cfg.MaxIterations; iter++ {
		for i := range h {
			reduced.SetSym(i, i, h[i])
		}

		lambda, vec, err := topEigenpair(reduced)
		if err != nil {
			return nil, nil, nil, err
		}
		if lambda <= 0 {
			return nil, nil, nil, fmt.Errorf("%w: non-positive leading eigenvalue %g", core.ErrDegenerate, lambda)
		}

		loadings = mat.NewVecDense(p, nil)
		loadings.ScaleVec(math.Sqrt(lambda), vec)

		maxDelta := 0.0
		for i := range h {
			next := e.clampCommunality(loadings.AtVec(i) * loadings.AtVec(i))
			maxDelta = math.Max(maxDelta, math.Abs(next-h[i]))
			h[i] = next
		}
		if maxDelta < e.cfg.Tolerance {
			converged = true
			break
		}
	}
	if !converged {
		return nil, nil, nil, fmt.Errorf("%w: principal-axis iteration did not converge in %d steps", core.ErrDegenerate, e.cfg.MaxIterations)
	}

	if mat.Sum(loadings) < 0 {
		loadings.ScaleVec(-1, loadings)
	}
	return loadings, z, &rinv, nil
}

func (e *Extractor) clampCommunality(h float64) float64 {
	switch {
	case math.IsNaN(h) || h < 0:
		return 0
	case h > e.cfg.MaxCommunality:
		return e.cfg.MaxCommunality
	}
	return h
}

// topEigenpair returns the largest eigenvalue and its unit eigenvector
func topEigenpair(a *mat.SymDense) (float64, *mat.VecDense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return 0, nil, fmt.Errorf("%w: eigendecomposition failed", core.ErrDegenerate)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Values are in ascending order
	top := len(values) - 1
	vec := mat.NewVecDense(len(values), nil)
	vec.CopyVec(vectors.ColView(top))
	return values[top], vec, nil
}

// standardize centers each column and scales it to unit sample variance
func standardize(items *mat.Dense) (*mat.Dense, error) {
	n, p := items.Dims()
	z := mat.NewDense(n, p, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, items)
		mean, sd := stat.MeanStdDev(col, nil)
		if sd == 0 || math.IsNaN(sd) {
			return nil, fmt.Errorf("%w: item %d has zero variance", core.ErrDegenerate, j)
		}
		for i, v := range col {
			z.Set(i, j, (v-mean)/sd)
		}
	}
	return z, nil
}
