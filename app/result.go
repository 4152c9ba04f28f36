package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"epistack/domain/stats"
)

// RowKind classifies a table row
type RowKind string

const (
	RowSampleSize RowKind = "sample_size"
	RowHeader     RowKind = "header"
	RowData       RowKind = "data"
	RowPrevalence RowKind = "prevalence"
	RowScore      RowKind = "score"
)

// Fixed column names
const (
	ColumnCount    = "count"
	ColumnMean     = "mean"
	ColumnMedian   = "median"
	ColumnSD       = "sd"
	ColumnReversed = "Reversed"
	ColumnTotal    = "Total"
	ColumnTest     = "Test"
	ColumnPValue   = "P-value"
)

// Row is one table line. Cells are aligned with Result.Columns.
type Row struct {
	Label    string   `json:"label"`
	Kind     RowKind  `json:"kind"`
	Variable string   `json:"variable,omitempty"`
	Cells    []string `json:"cells"`
	Test     string   `json:"test,omitempty"`
	PValue   string   `json:"p_value,omitempty"`
	Reversed bool     `json:"reversed,omitempty"`
}

// TestRecord is the comparison outcome for one variable of a grouped table
type TestRecord struct {
	Variable    string            `json:"variable"`
	Decision    stats.Decision    `json:"decision"`
	Result      stats.TestResult  `json:"result"`
	Assumptions stats.Assumptions `json:"assumptions"`
	Label       string            `json:"label"`
	PValue      string            `json:"p_value"`
}

// ScaleItem records the polarity decision for one scale item
type ScaleItem struct {
	Name     string `json:"name"`
	Sign     int    `json:"sign"`
	Reversed bool   `json:"reversed"`
}

// ScoreMoments summarises a composite score sequence. SD is the sample SD.
type ScoreMoments struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Result is one composite table
type Result struct {
	Grouped  bool            `json:"grouped"`
	GroupBy  string          `json:"group_by,omitempty"`
	Columns  []string        `json:"columns"`
	Rows     []Row           `json:"rows"`
	Warnings []stats.Warning `json:"warnings,omitempty"`

	// Grouped tables
	Tests []TestRecord `json:"tests,omitempty"`

	// Scale tables
	Items          []ScaleItem  `json:"items,omitempty"`
	ItemsReversed  []string     `json:"items_reversed,omitempty"`
	TotalScore     []float64    `json:"-"`
	AverageScore   []float64    `json:"-"`
	TotalMoments   ScoreMoments `json:"total_moments"`
	AverageMoments ScoreMoments `json:"average_moments"`
}

// Row returns the first row with the given label
func (r *Result) Row(label string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Label == label {
			return row, true
		}
	}
	return Row{}, false
}

// Cell returns the cell of row label under column, or false
func (r *Result) Cell(label, column string) (string, bool) {
	col := r.columnIndex(column)
	row, ok := r.Row(label)
	if col < 0 || !ok {
		return "", false
	}
	return row.Cells[col], true
}

// Test returns the test record of a variable
func (r *Result) Test(variable string) (TestRecord, bool) {
	for _, t := range r.Tests {
		if t.Variable == variable {
			return t, true
		}
	}
	return TestRecord{}, false
}

func (r *Result) columnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// String renders the table as aligned text
func (r *Result) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(r.Columns, "\t"))
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, strings.Join(row.Cells, "\t"))
	}
	tw.Flush()
	return sb.String()
}

// builder accumulates rows against a column set fixed at construction
type builder struct {
	result *Result
	index  map[string]int
}

func newBuilder(grouped bool, columns []string) *builder {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &builder{
		result: &Result{Grouped: grouped, Columns: columns},
		index:  index,
	}
}

// row starts a blank row; cells are set by column name
func (b *builder) row(label string, kind RowKind, variable string) *rowBuilder {
	return &rowBuilder{b: b, row: Row{Label: label, Kind: kind, Variable: variable, Cells: make([]string, len(b.result.Columns))}}
}

func (b *builder) warn(code stats.WarningCode, variable, format string, args ...interface{}) stats.Warning {
	w := stats.Warning{Code: code, Variable: variable, Message: fmt.Sprintf(format, args...)}
	b.result.Warnings = append(b.result.Warnings, w)
	return w
}

type rowBuilder struct {
	b   *builder
	row Row
}

func (rb *rowBuilder) set(column, value string) *rowBuilder {
	if i, ok := rb.b.index[column]; ok {
		rb.row.Cells[i] = value
	}
	return rb
}

func (rb *rowBuilder) setAt(i int, value string) *rowBuilder {
	rb.row.Cells[i] = value
	return rb
}

func (rb *rowBuilder) test(label, p string) *rowBuilder {
	rb.row.Test = label
	rb.row.PValue = p
	rb.set(ColumnTest, label)
	rb.set(ColumnPValue, p)
	return rb
}

func (rb *rowBuilder) emit() {
	rb.b.result.Rows = append(rb.b.result.Rows, rb.row)
}
