package stats

import (
	"fmt"
	"math"
)

// PValueFloor is the smallest p-value rendered as a number
const PValueFloor = 0.001

// NA is rendered for values that could not be computed
const NA = "NA"

// Round rounds half away from zero to the given number of decimals
func Round(x float64, decimals int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}

// FormatFixed renders x with exactly the given number of decimals, NA for NaN
func FormatFixed(x float64, decimals int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return NA
	}
	if decimals < 0 {
		decimals = 0
	}
	r := Round(x, decimals)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return fmt.Sprintf("%.*f", decimals, r)
}

// FormatPValue renders a p-value with decimal+2 places, or "< 0.001"
func FormatPValue(p float64, decimal int) string {
	if math.IsNaN(p) {
		return NA
	}
	if p < PValueFloor {
		return "< 0.001"
	}
	return FormatFixed(p, decimal+2)
}

// Label renders the display name of a test together with its statistic
func Label(kind TestKind, res TestResult, decimal int) string {
	stat := func(x float64) string { return FormatFixed(x, decimal+1) }
	switch kind {
	case TestChiSquare:
		if math.IsNaN(res.Statistic) {
			return "Chi-sq"
		}
		return fmt.Sprintf("Chi-sq(%.0fdf)=%s", res.DF, stat(res.Statistic))
	case TestFisherExact:
		return "Fisher's exact"
	case TestTTest:
		if math.IsNaN(res.Statistic) {
			return "t-test"
		}
		return fmt.Sprintf("t-test(%.0fdf)=%s", res.DF, stat(math.Abs(res.Statistic)))
	case TestANOVA:
		if math.IsNaN(res.Statistic) {
			return "ANOVA"
		}
		return fmt.Sprintf("ANOVA F(%.0f,%.0fdf)=%s", res.DF, res.DF2, stat(res.Statistic))
	case TestMannWhitney:
		return "Mann-Whitney test"
	case TestKruskalWallis:
		return "Kruskal-Wallis test"
	case TestSampleTooSmall:
		return "Sample too small"
	default:
		return ""
	}
}
