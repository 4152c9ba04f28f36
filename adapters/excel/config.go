package excel

import (
	"epistack/adapters/datareadiness/coercer"
)

// DefaultLabelsSheet is the workbook sheet holding (name, label) pairs
const DefaultLabelsSheet = "Labels"

// ExcelConfig holds configuration for a spreadsheet data source
type ExcelConfig struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet"`        // empty selects the first sheet
	LabelsSheet    string                 `json:"labels_sheet"` // empty disables display labels
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns the defaults for reading path
func DefaultExcelConfig(path string) ExcelConfig {
	return ExcelConfig{
		FilePath:       path,
		LabelsSheet:    DefaultLabelsSheet,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
