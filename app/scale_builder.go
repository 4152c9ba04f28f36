package app

import (
	"fmt"
	"math"
	"unicode/utf8"

	"epistack/domain/core"
	"epistack/domain/dataset"
	"epistack/domain/stats"
	"epistack/internal/profiling"

	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"
)

// NearDuplicateCorrelation disables automatic reversal when any item pair
// correlates above it
const NearDuplicateCorrelation = 0.98

// Score row labels
const (
	TotalScoreLabel   = " Total score"
	AverageScoreLabel = " Average score"
	// ReversedMark flags reversed items in the Reversed column
	ReversedMark = "x"
)

// scaleBuilder tabulates items sharing one response scale
type scaleBuilder struct {
	engine *Engine
	frame  *dataset.Frame
	items  []int
	opts   Options
}

func (e *Engine) buildScale(frame *dataset.Frame, items []int, opts Options) (*Result, error) {
	sb := &scaleBuilder{engine: e, frame: frame, items: items, opts: opts}

	categorical := 0
	var firstCategorical string
	for _, i := range items {
		if col := frame.Column(i); col.Kind() == dataset.KindCategorical {
			if categorical == 0 {
				firstCategorical = col.Name()
			}
			categorical++
		}
	}
	reversing := opts.Reverse || len(opts.VarsToReverse) > 0
	switch {
	case categorical > 0 && reversing:
		return nil, core.NewPreconditionError(firstCategorical, "items must be numeric before reversing")
	case categorical > 0 && categorical < len(items):
		return nil, core.NewPreconditionError(firstCategorical, "scale mixes categorical and numeric items")
	case categorical > 0:
		return sb.buildCategorical(), nil
	}
	return sb.buildNumeric()
}

func (sb *scaleBuilder) label(pos int) string {
	return rowLabel(sb.frame.Column(pos), pos, sb.opts)
}

// rowLabel is the truncated display label, or "pos: name" without labels
func rowLabel(col *dataset.Column, pos int, opts Options) string {
	if !opts.VarLabels {
		return fmt.Sprintf("%d: %s", pos, col.Name())
	}
	return truncateRunes(col.Label(), opts.VarLabelsTrunc)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// buildCategorical tabulates factor items over the union of their levels
func (sb *scaleBuilder) buildCategorical() *Result {
	var levels []string
	seen := make(map[string]bool)
	factors := make([]dataset.Factor, len(sb.items))
	for k, i := range sb.items {
		factors[k] = sb.frame.Column(i).Factor()
		for _, l := range factors[k].Levels {
			if !seen[l] {
				seen[l] = true
				levels = append(levels, l)
			}
		}
	}

	columns := append([]string(nil), levels...)
	if sb.opts.Count {
		columns = append(columns, ColumnCount)
	}
	b := newBuilder(false, columns)

	for k, i := range sb.items {
		f := factors[k]
		counts := f.Counts()
		rb := b.row(sb.label(i), RowData, sb.frame.Column(i).Name())
		valid := 0
		for li, l := range f.Levels {
			valid += counts[li]
			rb.set(l, fmt.Sprint(counts[li]))
		}
		for _, l := range levels {
			if rb.row.Cells[b.index[l]] == "" {
				rb.set(l, "0")
			}
		}
		rb.set(ColumnCount, fmt.Sprint(valid))
		rb.emit()
		b.result.Items = append(b.result.Items, ScaleItem{Name: sb.frame.Column(i).Name(), Sign: 1})
	}
	return b.result
}

func (sb *scaleBuilder) buildNumeric() (*Result, error) {
	values := make([][]float64, len(sb.items))
	for k, i := range sb.items {
		values[k] = sb.frame.Column(i).Floats()
	}

	lo, hi, err := sb.responseRange(values)
	if err != nil {
		return nil, err
	}

	signs := make([]int, len(sb.items))
	for k := range signs {
		signs[k] = 1
	}

	var warnings []stats.Warning
	if len(sb.opts.VarsToReverse) > 0 {
		ws, err := sb.explicitReversal(values, signs, hi)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, ws...)
	} else if sb.opts.Reverse {
		if len(sb.items) < 2 {
			return nil, core.NewPreconditionError(sb.frame.Column(sb.items[0]).Name(), "automatic reversal needs at least two items")
		}
		warnings = append(warnings, sb.automaticReversal(values, signs, lo, hi)...)
	}

	anyReversed := false
	for _, s := range signs {
		anyReversed = anyReversed || s < 0
	}

	var levelNames []string
	for l := lo; l <= hi; l++ {
		levelNames = append(levelNames, fmt.Sprint(l))
	}
	columns := append([]string(nil), levelNames...)
	if sb.opts.Count {
		columns = append(columns, ColumnCount)
	}
	if sb.opts.Means {
		columns = append(columns, ColumnMean)
	}
	if sb.opts.Medians {
		columns = append(columns, ColumnMedian)
	}
	if sb.opts.SDs {
		columns = append(columns, ColumnSD)
	}
	if anyReversed {
		columns = append(columns, ColumnReversed)
	}

	b := newBuilder(false, columns)
	b.result.Warnings = warnings
	d := sb.opts.Decimal

	for k, i := range sb.items {
		name := sb.frame.Column(i).Name()
		counts := make([]int, hi-lo+1)
		for _, v := range values[k] {
			if math.IsNaN(v) || v != math.Trunc(v) || v < float64(lo) || v > float64(hi) {
				continue
			}
			counts[int(v)-lo]++
		}

		sum := profiling.Summarize(values[k])
		rb := b.row(sb.label(i), RowData, name)
		for li, l := range levelNames {
			rb.set(l, fmt.Sprint(counts[li]))
		}
		rb.set(ColumnCount, fmt.Sprint(sum.N))
		rb.set(ColumnMean, stats.FormatFixed(sum.Mean, d))
		rb.set(ColumnMedian, stats.FormatFixed(sum.Median, d))
		rb.set(ColumnSD, stats.FormatFixed(sum.SD, d))
		if signs[k] < 0 {
			rb.row.Reversed = true
			rb.set(ColumnReversed, ReversedMark)
			b.result.ItemsReversed = append(b.result.ItemsReversed, name)
		}
		rb.emit()
		b.result.Items = append(b.result.Items, ScaleItem{Name: name, Sign: signs[k], Reversed: signs[k] < 0})
	}

	if sb.opts.Total {
		sb.compositeScores(b, values)
	}
	return b.result, nil
}

// responseRange returns the explicit range or the integer-truncated observed
// extremes across all items
func (sb *scaleBuilder) responseRange(values [][]float64) (int, int, error) {
	obsMin, obsMax := math.Inf(1), math.Inf(-1)
	for _, col := range values {
		for _, v := range col {
			if math.IsNaN(v) {
				continue
			}
			obsMin = math.Min(obsMin, v)
			obsMax = math.Max(obsMax, v)
		}
	}
	observed := !math.IsInf(obsMin, 1)

	var lo, hi int
	switch {
	case sb.opts.MinLevel != nil:
		lo = *sb.opts.MinLevel
	case observed:
		lo = int(math.Trunc(obsMin))
	default:
		return 0, 0, core.NewPreconditionError(sb.frame.Column(sb.items[0]).Name(), "no numeric observations to derive the response range")
	}
	switch {
	case sb.opts.MaxLevel != nil:
		hi = *sb.opts.MaxLevel
	case observed:
		hi = int(math.Trunc(obsMax))
	default:
		return 0, 0, core.NewPreconditionError(sb.frame.Column(sb.items[0]).Name(), "no numeric observations to derive the response range")
	}
	if lo > hi {
		return 0, 0, core.NewPreconditionError("", fmt.Sprintf("response range %d..%d is empty", lo, hi))
	}
	return lo, hi, nil
}

// explicitReversal flips the listed items with max + 1 - value
func (sb *scaleBuilder) explicitReversal(values [][]float64, signs []int, hi int) ([]stats.Warning, error) {
	targets, err := Resolve(sb.frame, sb.opts.VarsToReverse)
	if err != nil {
		return nil, err
	}
	position := make(map[int]int, len(sb.items))
	for k, i := range sb.items {
		position[i] = k
	}

	var warnings []stats.Warning
	for _, t := range targets {
		k, ok := position[t]
		if !ok {
			name := sb.frame.Column(t).Name()
			warnings = append(warnings, stats.Warning{
				Code:     stats.WarningReverseOutsideItems,
				Variable: name,
				Message:  fmt.Sprintf("%s is not among the selected items and was not reversed", name),
			})
			continue
		}
		for r, v := range values[k] {
			if !math.IsNaN(v) {
				values[k][r] = float64(hi) + 1 - v
			}
		}
		signs[k] = -1
	}
	return warnings, nil
}

// automaticReversal flips items that correlate negatively with the factor
// score using max + min - value. Any obstacle disables it with a warning.
func (sb *scaleBuilder) automaticReversal(values [][]float64, signs []int, lo, hi int) []stats.Warning {
	disable := func(code stats.WarningCode, format string, args ...interface{}) []stats.Warning {
		return []stats.Warning{{Code: code, Message: fmt.Sprintf(format, args...) + "; reversal disabled"}}
	}

	var complete []int
	for r := 0; r < sb.frame.NumRows(); r++ {
		ok := true
		for k := range values {
			if math.IsNaN(values[k][r]) {
				ok = false
				break
			}
		}
		if ok {
			complete = append(complete, r)
		}
	}
	if len(complete) < 2 {
		return disable(stats.WarningFactorExtraction, "only %d complete cases", len(complete))
	}

	m := mat.NewDense(len(complete), len(values), nil)
	for ri, r := range complete {
		for k := range values {
			m.Set(ri, k, values[k][r])
		}
	}

	corr := mat.NewSymDense(len(values), nil)
	gstat.CorrelationMatrix(corr, m, nil)
	for a := 0; a < len(values); a++ {
		for c := a + 1; c < len(values); c++ {
			if corr.At(a, c) > NearDuplicateCorrelation {
				return disable(stats.WarningNearDuplicateItems, "items %s and %s correlate at %.3f",
					sb.frame.Column(sb.items[a]).Name(), sb.frame.Column(sb.items[c]).Name(), corr.At(a, c))
			}
		}
	}

	scores, err := sb.engine.extractor.Scores(m)
	if err != nil {
		return disable(stats.WarningFactorExtraction, "factor extraction failed: %v", err)
	}

	col := make([]float64, len(complete))
	for k := range values {
		mat.Col(col, k, m)
		if r := gstat.Correlation(scores, col, nil); r < 0 {
			signs[k] = -1
		}
	}
	for k, s := range signs {
		if s > 0 {
			continue
		}
		sb.engine.logger.Debug("scale reversal: flipping %s", sb.frame.Column(sb.items[k]).Name())
		for r, v := range values[k] {
			if !math.IsNaN(v) {
				values[k][r] = float64(hi+lo) - v
			}
		}
	}
	return nil
}

// compositeScores appends total and average score rows
func (sb *scaleBuilder) compositeScores(b *builder, values [][]float64) {
	rows := sb.frame.NumRows()
	total := make([]float64, rows)
	average := make([]float64, rows)
	for r := 0; r < rows; r++ {
		sum, n := 0.0, 0
		for k := range values {
			if v := values[k][r]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			total[r], average[r] = math.NaN(), math.NaN()
			continue
		}
		total[r] = sum
		average[r] = sum / float64(n)
	}

	res := b.result
	res.TotalScore = total
	res.AverageScore = average
	res.TotalMoments = moments(total)
	res.AverageMoments = moments(average)

	d := sb.opts.Decimal
	for _, s := range []struct {
		label string
		m     ScoreMoments
	}{
		{TotalScoreLabel, res.TotalMoments},
		{AverageScoreLabel, res.AverageMoments},
	} {
		b.row(s.label, RowScore, "").
			set(ColumnCount, fmt.Sprint(s.m.N)).
			set(ColumnMean, stats.FormatFixed(s.m.Mean, d)).
			set(ColumnSD, stats.FormatFixed(s.m.SD, d)).
			emit()
	}
}

func moments(x []float64) ScoreMoments {
	sum := profiling.Summarize(x)
	return ScoreMoments{N: sum.N, Mean: sum.Mean, SD: sum.SD}
}
