package app

import (
	"fmt"

	"epistack/domain/dataset"
	"epistack/domain/stats"
	"epistack/internal/profiling"
)

// Row labels of the grouped table
const (
	SampleSizeLabel = "N"
	MeanSDLabel     = "  Mean (SD)"
	MedianIQRLabel  = "  Median (IQR)"
)

// breakdown renders per-variable blocks against a fixed group column order
type breakdown struct {
	engine  *Engine
	g       *grouping
	opts    Options
	testing bool
	rows    int
	b       *builder
	// position of the Total column, -1 when absent
	totalCol int
}

func (e *Engine) buildBreakdown(frame *dataset.Frame, items []int, g *grouping, opts Options) (*Result, error) {
	plans, planWarnings, err := e.plan(frame, items, g, opts)
	if err != nil {
		return nil, err
	}

	testing := opts.Test && len(g.levels) > 1
	columns := append([]string(nil), g.levels...)
	totalCol := -1
	if opts.TotalColumn {
		totalCol = len(columns)
		columns = append(columns, ColumnTotal)
	}
	if testing {
		if opts.NameTest {
			columns = append(columns, ColumnTest)
		}
		columns = append(columns, ColumnPValue)
	}

	bd := &breakdown{engine: e, g: g, opts: opts, testing: testing, rows: frame.NumRows(), b: newBuilder(true, columns), totalCol: totalCol}
	bd.b.result.GroupBy = g.name
	bd.b.result.Warnings = append(bd.b.result.Warnings, planWarnings...)
	if opts.Test && !testing {
		bd.b.warn(stats.WarningSingleLevelGrouping, g.name, "grouping variable %s has a single level; tests skipped", g.name)
	}

	if opts.SampleSize {
		sizes := g.sizes()
		rb := bd.b.row(SampleSizeLabel, RowSampleSize, "")
		total := 0
		for k, n := range sizes {
			rb.setAt(k, fmt.Sprint(n))
			total += n
		}
		if totalCol >= 0 {
			rb.setAt(totalCol, fmt.Sprint(total))
		}
		rb.emit()
	}

	for _, p := range plans {
		switch p.role {
		case stats.RoleCategorical:
			bd.categorical(p)
		default:
			bd.numeric(p)
		}
	}
	return bd.b.result, nil
}

// crossTab counts observations per [level][group]; missing values on either
// side are excluded
func crossTab(f dataset.Factor, g *grouping) [][]int {
	counts := make([][]int, len(f.Levels))
	for i := range counts {
		counts[i] = make([]int, len(g.levels))
	}
	for r, code := range f.Codes {
		if gc := g.codes[r]; code >= 0 && gc >= 0 {
			counts[code][gc]++
		}
	}
	return counts
}

func (bd *breakdown) categorical(p variablePlan) {
	counts := crossTab(p.factor, bd.g)
	for _, row := range counts {
		if containsZero(row) {
			bd.b.warn(stats.WarningZeroCellCount, p.name, "%s has a zero count in at least one cell", p.name)
			break
		}
	}

	label, pv := bd.categoricalTest(p, counts)

	levels := p.factor.Levels
	if bd.opts.Prevalence && len(levels) == 2 {
		rb := bd.b.row(fmt.Sprintf("%s = %s", p.label, levels[1]), RowPrevalence, p.name)
		for k := range bd.g.levels {
			rb.setAt(k, prevalenceCell(counts[1][k], counts[0][k]+counts[1][k], bd.opts.Decimal))
		}
		if bd.totalCol >= 0 {
			pos, neg := sum(counts[1]), sum(counts[0])
			rb.setAt(bd.totalCol, prevalenceCell(pos, pos+neg, bd.opts.Decimal))
		}
		bd.withTest(rb, label, pv).emit()
		return
	}

	bd.withTest(bd.b.row(p.label, RowHeader, p.name), label, pv).emit()

	colTotals := make([]int, len(bd.g.levels))
	for _, row := range counts {
		for k, c := range row {
			colTotals[k] += c
		}
	}
	grand := sum(colTotals)
	for li, level := range levels {
		rb := bd.b.row("  "+level, RowData, p.name)
		rowTotal := sum(counts[li])
		for k := range bd.g.levels {
			denom := colTotals[k]
			if bd.opts.Percent == PercentRow {
				denom = rowTotal
			}
			rb.setAt(k, bd.countCell(counts[li][k], denom))
		}
		if bd.totalCol >= 0 {
			denom := grand
			if bd.opts.Percent == PercentRow {
				denom = rowTotal
			}
			rb.setAt(bd.totalCol, bd.countCell(rowTotal, denom))
		}
		rb.emit()
	}
}

func (bd *breakdown) categoricalTest(p variablePlan, counts [][]int) (string, string) {
	table := stats.CompactTable(counts)
	in := stats.SelectorInput{Role: stats.RoleCategorical, TestingEnabled: bd.testing, SampleSize: bd.rows}
	if len(table) > 0 {
		in.TableRows, in.TableCols = len(table), len(table[0])
		in.SparseFraction = stats.ExpectedSparseFraction(stats.ExpectedCounts(table))
	}
	decision := stats.Select(in)

	res := stats.NotApplicable()
	if decision.Test != stats.TestNone && !decision.NotApplicable {
		var err error
		switch decision.Test {
		case stats.TestFisherExact:
			res, err = bd.engine.battery.FisherExact(table)
		default:
			res, err = bd.engine.battery.ChiSquare(table)
		}
		if err != nil {
			decision.NotApplicable = true
			decision.Reason = err.Error()
			res = stats.NotApplicable()
			bd.b.warn(stats.WarningTableTooSmall, p.name, "%s: %v", p.name, err)
		}
	} else if decision.NotApplicable {
		code := stats.WarningTableTooSmall
		if decision.Test == stats.TestFisherExact {
			code = stats.WarningExactTestUnavailable
		}
		bd.b.warn(code, p.name, "%s: %s", p.name, decision.Reason)
	}
	return bd.record(p, decision, res, stats.Assumptions{})
}

func (bd *breakdown) numeric(p variablePlan) {
	sizes := make([]int, len(p.groups))
	for k, grp := range p.groups {
		sizes[k] = len(grp)
	}
	decision := stats.Select(stats.SelectorInput{
		Role:           stats.RoleNumeric,
		TestingEnabled: bd.testing,
		GroupSizes:     sizes,
		Rank:           p.rank,
		Assumptions:    p.assumptions,
		Threshold:      bd.opts.AssumptionPValue,
	})

	res := stats.NotApplicable()
	var err error
	switch decision.Test {
	case stats.TestSampleTooSmall:
		bd.b.warn(stats.WarningSampleTooSmall, p.name, "%s: %s", p.name, decision.Reason)
	case stats.TestMannWhitney:
		res, err = bd.engine.battery.MannWhitney(p.groups[0], p.groups[1])
	case stats.TestKruskalWallis:
		res, err = bd.engine.battery.KruskalWallis(p.groups)
	case stats.TestTTest:
		res, err = bd.engine.battery.TTest(p.groups[0], p.groups[1])
	case stats.TestANOVA:
		res, err = bd.engine.battery.OneWayANOVA(p.groups)
	}
	if err != nil {
		decision.NotApplicable = true
		decision.Reason = err.Error()
		res = stats.NotApplicable()
		bd.b.warn(stats.WarningAssumptionCheck, p.name, "%s: %v", p.name, err)
	}

	label, pv := bd.record(p, decision, res, p.assumptions)
	bd.withTest(bd.b.row(p.label, RowHeader, p.name), label, pv).emit()

	dataLabel, cell := MeanSDLabel, bd.meanSD
	if decision.Summary == stats.SummaryMedianIQR {
		dataLabel, cell = MedianIQRLabel, bd.medianIQR
	}
	rb := bd.b.row(dataLabel, RowData, p.name)
	for k, grp := range p.groups {
		rb.setAt(k, cell(grp))
	}
	if bd.totalCol >= 0 {
		rb.setAt(bd.totalCol, cell(p.pooled))
	}
	rb.emit()
}

// record stores the test outcome and returns its display label and p-value
func (bd *breakdown) record(p variablePlan, decision stats.Decision, res stats.TestResult, a stats.Assumptions) (string, string) {
	label := stats.Label(decision.Test, res, bd.opts.Decimal)
	pv := ""
	if decision.Test != stats.TestNone {
		pv = stats.FormatPValue(res.PValue, bd.opts.Decimal)
	}
	bd.b.result.Tests = append(bd.b.result.Tests, TestRecord{
		Variable:    p.name,
		Decision:    decision,
		Result:      res,
		Assumptions: a,
		Label:       label,
		PValue:      pv,
	})
	bd.engine.logger.Debug("test %s: %s (%s) p=%s", p.name, decision.Test, decision.Reason, pv)
	return label, pv
}

func (bd *breakdown) withTest(rb *rowBuilder, label, pv string) *rowBuilder {
	if !bd.testing {
		return rb
	}
	if !bd.opts.NameTest {
		label = ""
	}
	return rb.test(label, pv)
}

func (bd *breakdown) countCell(count, denom int) string {
	if bd.opts.Percent == PercentNone {
		return fmt.Sprint(count)
	}
	pct := 0.0
	if denom > 0 {
		pct = float64(count) / float64(denom) * 100
	}
	formatted := stats.FormatFixed(pct, bd.opts.Decimal)
	if bd.opts.Frequency {
		return fmt.Sprintf("%d (%s%%)", count, formatted)
	}
	return formatted + "%"
}

func prevalenceCell(positive, total, decimal int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(positive) / float64(total) * 100
	}
	return fmt.Sprintf("%d/%d (%s%%)", positive, total, stats.FormatFixed(pct, decimal))
}

func (bd *breakdown) meanSD(values []float64) string {
	if len(values) == 0 {
		return stats.NA
	}
	s := profiling.Summarize(values)
	return fmt.Sprintf("%s (%s)", stats.FormatFixed(s.Mean, bd.opts.Decimal), stats.FormatFixed(s.SD, bd.opts.Decimal))
}

func (bd *breakdown) medianIQR(values []float64) string {
	if len(values) == 0 {
		return stats.NA
	}
	s := profiling.Summarize(values)
	d := bd.opts.Decimal
	return fmt.Sprintf("%s (%s, %s)", stats.FormatFixed(s.Median, d), stats.FormatFixed(s.Q1, d), stats.FormatFixed(s.Q3, d))
}

func containsZero(row []int) bool {
	for _, c := range row {
		if c == 0 {
			return true
		}
	}
	return false
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
