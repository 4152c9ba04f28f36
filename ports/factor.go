package ports

import "gonum.org/v1/gonum/mat"

// FactorExtractorPort fits a single-factor latent trait model on a
// complete-case item matrix (observations x items) and returns one factor
// score per observation.
type FactorExtractorPort interface {
	Scores(items *mat.Dense) ([]float64, error)
}
