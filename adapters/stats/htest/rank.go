package htest

import (
	"fmt"
	"math"
	"sort"

	"epistack/domain/core"
	"epistack/domain/stats"

	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"
)

// exactMaxSmallGroup is the largest smaller-group size for which the exact
// Mann-Whitney distribution is used on tie-free data
const exactMaxSmallGroup = 8

// rankData assigns average ranks (1-based) to the pooled values and returns
// the sum over tie groups of t^3 - t.
func rankData(values []float64) ([]float64, float64) {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	ties := 0.0
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i); t > 1 {
			ties += t*t*t - t
		}
		i = j
	}
	return ranks, ties
}

// MannWhitney performs the two-sided Wilcoxon rank-sum test. The statistic
// is U for the first sample. The exact null distribution is used when the
// data are tie-free and one sample has at most eight observations; otherwise
// the normal approximation with tie and continuity corrections applies.
func MannWhitney(x, y []float64) (stats.TestResult, error) {
	if err := requireGroups("Mann-Whitney test", [][]float64{x, y}, 2, 1); err != nil {
		return stats.NotApplicable(), err
	}
	n1, n2 := len(x), len(y)
	pooled := make([]float64, 0, n1+n2)
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)
	ranks, ties := rankData(pooled)

	r1 := 0.0
	for _, r := range ranks[:n1] {
		r1 += r
	}
	fn1, fn2 := float64(n1), float64(n2)
	u1 := r1 - fn1*(fn1+1)/2
	uMax := math.Max(u1, fn1*fn2-u1)

	var p float64
	if ties == 0 && min(n1, n2) <= exactMaxSmallGroup {
		p = 2 * mannWhitneyUpperTail(n1, n2, uMax)
	} else {
		n := fn1 + fn2
		mu := fn1 * fn2 / 2
		variance := fn1 * fn2 / 12 * ((n + 1) - ties/(n*(n-1)))
		if variance <= 0 {
			return stats.NotApplicable(), fmt.Errorf("%w: all values tied", core.ErrDegenerate)
		}
		z := (uMax - mu - 0.5) / math.Sqrt(variance)
		p = 2 * distuv.UnitNormal.Survival(z)
	}

	return stats.TestResult{Statistic: u1, PValue: clampP(p)}, nil
}

// mannWhitneyUpperTail returns P(U >= u) under the null for sample sizes m
// and n. The counts of U values are the coefficients of the Gaussian binomial
// coefficient [m+n choose m] in q, built by multiplying (1 - q^(n+i)) and
// dividing (1 - q^i) for i = 1..m as power series truncated past degree m*n.
func mannWhitneyUpperTail(m, n int, u float64) float64 {
	if m > n {
		m, n = n, m
	}
	size := m*n + 1
	c := make([]float64, size)
	c[0] = 1
	for i := 1; i <= m; i++ {
		shift := n + i
		for k := size - 1; k >= shift; k-- {
			c[k] -= c[k-shift]
		}
		for k := i; k < size; k++ {
			c[k] += c[k-i]
		}
	}

	total := math.Exp(combin.LogGeneralizedBinomial(float64(m+n), float64(m)))
	start := int(math.Ceil(u))
	tail := 0.0
	for k := max(start, 0); k < size; k++ {
		tail += c[k]
	}
	return tail / total
}

// KruskalWallis performs the rank-based one-way test with tie correction
func KruskalWallis(groups [][]float64) (stats.TestResult, error) {
	if err := requireGroups("Kruskal-Wallis test", groups, 2, 1); err != nil {
		return stats.NotApplicable(), err
	}
	var pooled []float64
	for _, g := range groups {
		pooled = append(pooled, g...)
	}
	ranks, ties := rankData(pooled)
	n := float64(len(pooled))

	h := 0.0
	offset := 0
	for _, g := range groups {
		sum := 0.0
		for _, r := range ranks[offset : offset+len(g)] {
			sum += r
		}
		h += sum * sum / float64(len(g))
		offset += len(g)
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	correction := 1 - ties/(n*n*n-n)
	if correction <= 0 {
		return stats.NotApplicable(), fmt.Errorf("%w: all values tied", core.ErrDegenerate)
	}
	h /= correction

	df := float64(len(groups) - 1)
	chiDist := distuv.ChiSquared{K: df}
	return stats.TestResult{
		Statistic: h,
		DF:        df,
		PValue:    clampP(chiDist.Survival(h)),
	}, nil
}
