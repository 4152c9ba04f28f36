package htest

import (
	"fmt"
	"math"
	"sort"

	"epistack/domain/core"
	"epistack/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// Shapiro-Wilk sample size limits
const (
	ShapiroMinN = 3
	ShapiroMaxN = 5000
)

// Royston (1995) polynomial approximations
var (
	swG  = []float64{-2.273, 0.459}
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
)

func poly(cc []float64, x float64) float64 {
	result := 0.0
	for i := len(cc) - 1; i >= 0; i-- {
		result = result*x + cc[i]
	}
	return result
}

// ShapiroWilk tests normality with the W statistic and Royston's p-value
// approximation. It accepts 3 to 5000 observations.
func ShapiroWilk(x []float64) (stats.TestResult, error) {
	n := len(x)
	if n < ShapiroMinN {
		return stats.NotApplicable(), core.NewInsufficientDataError("Shapiro-Wilk test", ShapiroMinN, n)
	}
	if n > ShapiroMaxN {
		return stats.NotApplicable(), fmt.Errorf("%w: Shapiro-Wilk test accepts at most %d observations, got %d", core.ErrDegenerate, ShapiroMaxN, n)
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	if sorted[n-1]-sorted[0] < 1e-19 {
		return stats.NotApplicable(), fmt.Errorf("%w: all observations identical", core.ErrDegenerate)
	}

	a := swilkCoefficients(n)

	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)
	ss := 0.0
	for _, v := range sorted {
		ss += (v - mean) * (v - mean)
	}

	num := 0.0
	for i := range a {
		num += a[i] * (sorted[n-1-i] - sorted[i])
	}
	w := num * num / ss
	if w > 1 {
		w = 1
	}

	return stats.TestResult{Statistic: w, PValue: clampP(swilkPValue(w, n))}, nil
}

// swilkCoefficients returns the positive half of the antisymmetric weights
func swilkCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	m := make([]float64, half)
	an25 := float64(n) + 0.25
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(float64(n))

	a1 := poly(swC1, rsn) - m[0]/ssumm2
	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swilkPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return math.Max(p, 0)
	}

	y := math.Log(1 - w)
	fn := float64(n)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, fn)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, fn)
		sigma = math.Exp(poly(swC4, fn))
	} else {
		ln := math.Log(fn)
		mu = poly(swC5, ln)
		sigma = math.Exp(poly(swC6, ln))
	}
	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(y)
}

// Bartlett tests homogeneity of variances across groups
func Bartlett(groups [][]float64) (stats.TestResult, error) {
	if err := requireGroups("Bartlett test", groups, 2, 2); err != nil {
		return stats.NotApplicable(), err
	}
	k := float64(len(groups))
	n := 0.0
	pooled := 0.0
	sumLogVar := 0.0
	sumInv := 0.0
	for i, g := range groups {
		_, v := meanVar(g)
		if v <= 0 || math.IsNaN(v) {
			return stats.NotApplicable(), fmt.Errorf("%w: group %d has zero variance", core.ErrDegenerate, i)
		}
		df := float64(len(g) - 1)
		n += float64(len(g))
		pooled += df * v
		sumLogVar += df * math.Log(v)
		sumInv += 1 / df
	}
	pooled /= n - k

	num := (n-k)*math.Log(pooled) - sumLogVar
	den := 1 + (sumInv-1/(n-k))/(3*(k-1))
	statistic := num / den
	if statistic < 0 {
		statistic = 0
	}

	df := k - 1
	chiDist := distuv.ChiSquared{K: df}
	return stats.TestResult{
		Statistic: statistic,
		DF:        df,
		PValue:    clampP(chiDist.Survival(statistic)),
	}, nil
}
