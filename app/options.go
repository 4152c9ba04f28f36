package app

import (
	"fmt"
	"math"
	"strings"

	"epistack/domain/core"
	"epistack/domain/stats"
)

// PercentAxis selects the denominator of categorical percentages
type PercentAxis string

const (
	PercentColumn PercentAxis = "col"
	PercentRow    PercentAxis = "row"
	PercentNone   PercentAxis = "none"
)

// ParsePercentAxis accepts col, column, row and none
func ParsePercentAxis(s string) (PercentAxis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "col", "column":
		return PercentColumn, nil
	case "row":
		return PercentRow, nil
	case "none", "":
		return PercentNone, nil
	}
	return "", fmt.Errorf("unknown percent axis %q", s)
}

// IQRMode decides which numeric variables are summarised by median (IQR)
type IQRMode string

const (
	// IQRAuto uses median (IQR) when the assumption checks fail
	IQRAuto IQRMode = "auto"
	// IQRNone always uses mean (SD)
	IQRNone IQRMode = "none"
	// IQRList uses median (IQR) for Options.IQRVars only
	IQRList IQRMode = "list"
)

// Options controls one tabulation. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// By is the grouping variable; nil selects the scale table
	By *Ref

	// Scale table
	MinLevel       *int
	MaxLevel       *int
	Count          bool
	Means          bool
	Medians        bool
	SDs            bool
	Total          bool
	Reverse        bool
	VarsToReverse  Selection
	VarLabels      bool
	VarLabelsTrunc int

	// Grouped table
	VarsToFactor     Selection
	IQR              IQRMode
	IQRVars          Selection
	Prevalence       bool
	Percent          PercentAxis
	Frequency        bool
	Test             bool
	NameTest         bool
	TotalColumn      bool
	SimulatePValue   bool
	SampleSize       bool
	AssumptionPValue float64

	Decimal int
}

// DefaultOptions returns the conventional table defaults
func DefaultOptions() Options {
	return Options{
		Count:            true,
		Means:            true,
		SDs:              true,
		Total:            true,
		VarLabels:        true,
		VarLabelsTrunc:   150,
		IQR:              IQRAuto,
		Percent:          PercentColumn,
		Frequency:        true,
		Test:             true,
		NameTest:         true,
		SampleSize:       true,
		AssumptionPValue: stats.DefaultAssumptionP,
		Decimal:          1,
	}
}

// GroupBy returns a copy of o grouped by ref
func (o Options) GroupBy(ref Ref) Options {
	o.By = &ref
	return o
}

// Levels returns a copy of o with an explicit response range
func (o Options) Levels(lo, hi int) Options {
	o.MinLevel = &lo
	o.MaxLevel = &hi
	return o
}

func (o Options) validate() error {
	if o.Decimal < 0 {
		return core.NewPreconditionError("", fmt.Sprintf("decimal must be non-negative, got %d", o.Decimal))
	}
	if p := o.AssumptionPValue; math.IsNaN(p) || p <= 0 || p >= 1 {
		return core.NewPreconditionError("", fmt.Sprintf("assumption p-value must be in (0, 1), got %g", p))
	}
	switch o.Percent {
	case PercentColumn, PercentRow, PercentNone:
	default:
		return core.NewPreconditionError("", fmt.Sprintf("unknown percent axis %q", o.Percent))
	}
	switch o.IQR {
	case IQRAuto, IQRNone, IQRList:
	default:
		return core.NewPreconditionError("", fmt.Sprintf("unknown iqr mode %q", o.IQR))
	}
	if o.MinLevel != nil && o.MaxLevel != nil && *o.MinLevel > *o.MaxLevel {
		return core.NewPreconditionError("", fmt.Sprintf("minlevel %d exceeds maxlevel %d", *o.MinLevel, *o.MaxLevel))
	}
	if o.VarLabelsTrunc < 1 {
		return core.NewPreconditionError("", "var_labels_trunc must be positive")
	}
	return nil
}

func simulatedPValueWarning() stats.Warning {
	return stats.Warning{
		Code:    stats.WarningSimulatedPValue,
		Message: "simulated p-values are not supported; exact and asymptotic p-values are reported",
	}
}
