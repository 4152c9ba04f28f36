package app

import (
	"time"

	"epistack/domain/core"
	"epistack/domain/dataset"
	"epistack/internal"
	"epistack/ports"
)

// Engine builds stacked tables. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	battery   ports.TestBatteryPort
	extractor ports.FactorExtractorPort
	logger    *internal.Logger
}

// NewEngine creates a tabulation engine. A nil logger discards output.
func NewEngine(battery ports.TestBatteryPort, extractor ports.FactorExtractorPort, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Engine{battery: battery, extractor: extractor, logger: logger}
}

// Stack tabulates vars from frame. Without opts.By it builds the scale table
// (item frequencies, optional reversal, composite scores); with a grouping
// variable it builds the group breakdown with one comparison test per
// variable. Reference and precondition errors abort before any row is built;
// statistical problems are reported in Result.Warnings.
func (e *Engine) Stack(frame *dataset.Frame, vars Selection, opts Options) (*Result, error) {
	start := time.Now()
	if frame == nil {
		return nil, core.NewPreconditionError("", "no dataset")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	items, err := Resolve(frame, vars)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, core.NewPreconditionError("", "no variables selected")
	}

	var result *Result
	if opts.By == nil {
		result, err = e.buildScale(frame, items, opts)
	} else {
		var g *grouping
		if g, err = resolveGrouping(frame, *opts.By); err != nil {
			return nil, err
		}
		items = withoutColumn(items, g.column)
		if len(items) == 0 {
			return nil, core.NewPreconditionError(g.name, "no variables selected besides the grouping variable")
		}
		result, err = e.buildBreakdown(frame, items, g, opts)
		if err == nil && opts.SimulatePValue {
			result.Warnings = append(result.Warnings, simulatedPValueWarning())
		}
	}
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		e.logger.Warn("%s: %s", w.Code, w.Message)
	}
	e.logger.Debug("stacked %d variables into %d rows in %s", len(items), len(result.Rows), time.Since(start))
	return result, nil
}

func withoutColumn(items []int, column int) []int {
	if column < 0 {
		return items
	}
	out := make([]int, 0, len(items))
	for _, i := range items {
		if i != column {
			out = append(out, i)
		}
	}
	return out
}
