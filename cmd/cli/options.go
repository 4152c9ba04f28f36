package main

import (
	"fmt"

	"epistack/app"
	"epistack/internal/config"
	apperrors "epistack/internal/errors"

	"github.com/spf13/cobra"
)

// optionSet is the user-facing option set shared by flags and batch files.
// Nil fields keep the configured default.
type optionSet struct {
	By             *string  `yaml:"by"`
	MinLevel       *int     `yaml:"minlevel"`
	MaxLevel       *int     `yaml:"maxlevel"`
	Count          *bool    `yaml:"count"`
	Means          *bool    `yaml:"means"`
	Medians        *bool    `yaml:"medians"`
	SDs            *bool    `yaml:"sds"`
	Total          *bool    `yaml:"total"`
	Reverse        *bool    `yaml:"reverse"`
	ReverseVars    *string  `yaml:"reverse_vars"`
	VarLabels      *bool    `yaml:"var_labels"`
	VarLabelsTrunc *int     `yaml:"var_labels_trunc"`
	FactorVars     *string  `yaml:"factor_vars"`
	IQR            *string  `yaml:"iqr"`
	IQRVars        *string  `yaml:"iqr_vars"`
	Prevalence     *bool    `yaml:"prevalence"`
	Percent        *string  `yaml:"percent"`
	Frequency      *bool    `yaml:"frequency"`
	Test           *bool    `yaml:"test"`
	NameTest       *bool    `yaml:"name_test"`
	TotalColumn    *bool    `yaml:"total_column"`
	SimulatePValue *bool    `yaml:"simulate_p_value"`
	SampleSize     *bool    `yaml:"sample_size"`
	AssumptionP    *float64 `yaml:"assumption_p"`
	Decimal        *int     `yaml:"decimal"`
}

// baseOptions applies the configured table defaults over the engine defaults
func baseOptions(cfg *config.Config) (app.Options, error) {
	opts := app.DefaultOptions()
	opts.Decimal = cfg.Table.Decimal
	opts.AssumptionPValue = cfg.Table.AssumptionPValue
	axis, err := app.ParsePercentAxis(cfg.Table.Percent)
	if err != nil {
		return opts, apperrors.ConfigInvalid(err.Error())
	}
	opts.Percent = axis
	return opts, nil
}

// apply overlays the set fields of s on base
func (s optionSet) apply(base app.Options) (app.Options, error) {
	opts := base
	if s.By != nil {
		ref, err := app.ParseRef(*s.By)
		if err != nil {
			return opts, apperrors.InvalidInput(fmt.Sprintf("by: %v", err))
		}
		opts = opts.GroupBy(ref)
	}
	if s.MinLevel != nil {
		v := *s.MinLevel
		opts.MinLevel = &v
	}
	if s.MaxLevel != nil {
		v := *s.MaxLevel
		opts.MaxLevel = &v
	}

	setBool(&opts.Count, s.Count)
	setBool(&opts.Means, s.Means)
	setBool(&opts.Medians, s.Medians)
	setBool(&opts.SDs, s.SDs)
	setBool(&opts.Total, s.Total)
	setBool(&opts.Reverse, s.Reverse)
	setBool(&opts.VarLabels, s.VarLabels)
	setBool(&opts.Prevalence, s.Prevalence)
	setBool(&opts.Frequency, s.Frequency)
	setBool(&opts.Test, s.Test)
	setBool(&opts.NameTest, s.NameTest)
	setBool(&opts.TotalColumn, s.TotalColumn)
	setBool(&opts.SimulatePValue, s.SimulatePValue)
	setBool(&opts.SampleSize, s.SampleSize)
	if s.VarLabelsTrunc != nil {
		opts.VarLabelsTrunc = *s.VarLabelsTrunc
	}
	if s.AssumptionP != nil {
		opts.AssumptionPValue = *s.AssumptionP
	}
	if s.Decimal != nil {
		opts.Decimal = *s.Decimal
	}

	var err error
	if opts.VarsToReverse, err = selection("reverse_vars", s.ReverseVars, opts.VarsToReverse); err != nil {
		return opts, err
	}
	if opts.VarsToFactor, err = selection("factor_vars", s.FactorVars, opts.VarsToFactor); err != nil {
		return opts, err
	}
	if opts.IQRVars, err = selection("iqr_vars", s.IQRVars, opts.IQRVars); err != nil {
		return opts, err
	}
	if s.IQR != nil {
		opts.IQR = app.IQRMode(*s.IQR)
	} else if s.IQRVars != nil {
		opts.IQR = app.IQRList
	}
	if s.Percent != nil {
		axis, err := app.ParsePercentAxis(*s.Percent)
		if err != nil {
			return opts, apperrors.InvalidInput(err.Error())
		}
		opts.Percent = axis
	}
	return opts, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func selection(field string, raw *string, current app.Selection) (app.Selection, error) {
	if raw == nil {
		return current, nil
	}
	sel, err := app.ParseSelection(*raw)
	if err != nil {
		return current, apperrors.InvalidInput(fmt.Sprintf("%s: %v", field, err))
	}
	return sel, nil
}

// optionFlags registers the option flags of cmd and fills opts with the
// flags the user actually set
type optionFlags struct {
	cmd      *cobra.Command
	finalize []func()
}

func bindOptionFlags(cmd *cobra.Command, opts *optionSet) *optionFlags {
	f := &optionFlags{cmd: cmd}
	defaults := app.DefaultOptions()

	f.stringFlag(&opts.By, "by", "", "grouping variable (name or 0-based position); omit for a scale table")
	f.intFlag(&opts.MinLevel, "minlevel", 0, "lowest response level of the scale")
	f.intFlag(&opts.MaxLevel, "maxlevel", 0, "highest response level of the scale")
	f.boolFlag(&opts.Count, "count", defaults.Count, "show the count column")
	f.boolFlag(&opts.Means, "means", defaults.Means, "show the mean column")
	f.boolFlag(&opts.Medians, "medians", defaults.Medians, "show the median column")
	f.boolFlag(&opts.SDs, "sds", defaults.SDs, "show the sd column")
	f.boolFlag(&opts.Total, "total", defaults.Total, "append total and average score rows")
	f.boolFlag(&opts.Reverse, "reverse", defaults.Reverse, "reverse negatively correlated items automatically")
	f.stringFlag(&opts.ReverseVars, "reverse-vars", "", "items to reverse explicitly")
	f.boolFlag(&opts.VarLabels, "var-labels", defaults.VarLabels, "use display labels as row labels")
	f.intFlag(&opts.VarLabelsTrunc, "var-labels-trunc", defaults.VarLabelsTrunc, "truncate row labels to n characters")
	f.stringFlag(&opts.FactorVars, "factor-vars", "", "numeric variables to tabulate as categorical")
	f.stringFlag(&opts.IQR, "iqr", string(defaults.IQR), "median (IQR) selection: auto, none or list")
	f.stringFlag(&opts.IQRVars, "iqr-vars", "", "variables summarised by median (IQR); implies --iqr list")
	f.boolFlag(&opts.Prevalence, "prevalence", defaults.Prevalence, "single prevalence row for two-level variables")
	f.stringFlag(&opts.Percent, "percent", string(defaults.Percent), "percent axis: col, row or none")
	f.boolFlag(&opts.Frequency, "frequency", defaults.Frequency, "show counts next to percentages")
	f.boolFlag(&opts.Test, "test", defaults.Test, "run comparison tests")
	f.boolFlag(&opts.NameTest, "name-test", defaults.NameTest, "show the test column")
	f.boolFlag(&opts.TotalColumn, "total-column", defaults.TotalColumn, "append a total column")
	f.boolFlag(&opts.SimulatePValue, "simulate-p-value", defaults.SimulatePValue, "request simulated p-values (recorded only)")
	f.boolFlag(&opts.SampleSize, "sample-size", defaults.SampleSize, "show the N row")
	f.floatFlag(&opts.AssumptionP, "assumption-p", defaults.AssumptionPValue, "p-value threshold of the assumption checks")
	f.intFlag(&opts.Decimal, "decimal", defaults.Decimal, "decimal places")
	return f
}

func (f *optionFlags) boolFlag(dst **bool, name string, def bool, usage string) {
	v := new(bool)
	f.cmd.Flags().BoolVar(v, name, def, usage)
	f.later(name, func() { *dst = v })
}

func (f *optionFlags) intFlag(dst **int, name string, def int, usage string) {
	v := new(int)
	f.cmd.Flags().IntVar(v, name, def, usage)
	f.later(name, func() { *dst = v })
}

func (f *optionFlags) floatFlag(dst **float64, name string, def float64, usage string) {
	v := new(float64)
	f.cmd.Flags().Float64Var(v, name, def, usage)
	f.later(name, func() { *dst = v })
}

func (f *optionFlags) stringFlag(dst **string, name string, def string, usage string) {
	v := new(string)
	f.cmd.Flags().StringVar(v, name, def, usage)
	f.later(name, func() { *dst = v })
}

func (f *optionFlags) later(name string, set func()) {
	f.finalize = append(f.finalize, func() {
		if f.cmd.Flags().Changed(name) {
			set()
		}
	})
}

// resolve copies changed flags into the option set; call after flag parsing
func (f *optionFlags) resolve() {
	for _, fn := range f.finalize {
		fn()
	}
}
