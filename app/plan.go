package app

import (
	"math"
	"math/rand"

	"epistack/domain/dataset"
	"epistack/domain/stats"
	"epistack/internal/profiling"
)

// Normality is checked on a fixed-seed subsample once residuals reach
// assumptionSubsampleAt observations
const (
	assumptionSubsampleAt   = 5000
	assumptionSubsampleSize = 250
	assumptionSubsampleSeed = 1
)

// variablePlan is the per-variable decision set resolved once per call
type variablePlan struct {
	pos   int
	name  string
	label string
	role  stats.Role

	// categorical view
	factor dataset.Factor

	// numeric view: per-group valid values and the pooled valid values
	groups      [][]float64
	pooled      []float64
	rank        stats.RankMode
	assumptions stats.Assumptions
}

func (e *Engine) plan(frame *dataset.Frame, items []int, g *grouping, opts Options) ([]variablePlan, []stats.Warning, error) {
	asFactor, err := resolveSet(frame, opts.VarsToFactor)
	if err != nil {
		return nil, nil, err
	}
	var asRank map[int]bool
	if opts.IQR == IQRList {
		if asRank, err = resolveSet(frame, opts.IQRVars); err != nil {
			return nil, nil, err
		}
	}

	var warnings []stats.Warning
	plans := make([]variablePlan, 0, len(items))
	for _, i := range items {
		col := frame.Column(i)
		p := variablePlan{pos: i, name: col.Name(), label: rowLabel(col, i, opts)}

		if col.Kind() != dataset.KindNumeric || asFactor[i] {
			p.role = stats.RoleCategorical
			p.factor = col.Factor()
			plans = append(plans, p)
			continue
		}

		p.role = stats.RoleNumeric
		p.groups, p.pooled = splitByGroup(col.Floats(), g)
		switch opts.IQR {
		case IQRNone:
			p.rank = stats.RankNever
		case IQRList:
			p.rank = stats.RankNever
			if asRank[i] {
				p.rank = stats.RankForced
			}
		default:
			p.rank = stats.RankAuto
			if len(g.levels) > 1 {
				var ws []stats.Warning
				p.assumptions, ws = e.checkAssumptions(p.name, p.groups)
				warnings = append(warnings, ws...)
			}
		}
		e.logger.Debug("plan %s: role=%s rank=%d assumptions=%+v", p.name, p.role, p.rank, p.assumptions)
		plans = append(plans, p)
	}
	return plans, warnings, nil
}

func resolveSet(frame *dataset.Frame, sel Selection) (map[int]bool, error) {
	positions, err := Resolve(frame, sel)
	if err != nil {
		return nil, err
	}
	set := make(map[int]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}
	return set, nil
}

// splitByGroup drops missing values and observations with a missing group
func splitByGroup(values []float64, g *grouping) ([][]float64, []float64) {
	groups := make([][]float64, len(g.levels))
	var pooled []float64
	for r, v := range values {
		c := g.codes[r]
		if c < 0 || math.IsNaN(v) {
			continue
		}
		groups[c] = append(groups[c], v)
		pooled = append(pooled, v)
	}
	return groups, pooled
}

// checkAssumptions runs Shapiro-Wilk on residuals from the group means and
// Bartlett's test across groups with at least MinGroupSize observations.
// A check that cannot run leaves its p-value NaN, which never counts as a
// violation.
func (e *Engine) checkAssumptions(variable string, groups [][]float64) (stats.Assumptions, []stats.Warning) {
	a := stats.Assumptions{NormalityP: math.NaN(), HomogeneityP: math.NaN()}
	var eligible [][]float64
	for _, grp := range groups {
		if len(grp) >= stats.MinGroupSize {
			eligible = append(eligible, grp)
		}
	}
	if len(eligible) < 2 {
		return a, nil
	}
	a.Checked = true

	var residuals []float64
	for _, grp := range groups {
		if len(grp) == 0 {
			continue
		}
		mean := profiling.Summarize(grp).Mean
		for _, v := range grp {
			residuals = append(residuals, v-mean)
		}
	}
	if len(residuals) >= assumptionSubsampleAt {
		rng := rand.New(rand.NewSource(assumptionSubsampleSeed))
		sample := make([]float64, assumptionSubsampleSize)
		for k, idx := range rng.Perm(len(residuals))[:assumptionSubsampleSize] {
			sample[k] = residuals[idx]
		}
		residuals = sample
	}

	var warnings []stats.Warning
	if res, err := e.battery.ShapiroWilk(residuals); err == nil {
		a.NormalityP = res.PValue
	} else {
		warnings = append(warnings, stats.Warning{Code: stats.WarningAssumptionCheck, Variable: variable, Message: "normality check skipped: " + err.Error()})
	}
	if res, err := e.battery.Bartlett(eligible); err == nil {
		a.HomogeneityP = res.PValue
	} else {
		warnings = append(warnings, stats.Warning{Code: stats.WarningAssumptionCheck, Variable: variable, Message: "variance check skipped: " + err.Error()})
	}
	return a, warnings
}
