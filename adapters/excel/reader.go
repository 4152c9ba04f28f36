package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"epistack/adapters/datareadiness/coercer"
	"epistack/domain/dataset"
	"epistack/internal"
	apperrors "epistack/internal/errors"
	"epistack/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader loads CSV and XLSX files as dataset frames
type DataReader struct {
	config   ExcelConfig
	fileType string // "xlsx" or "csv"
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

var _ ports.DatasetSourcePort = (*DataReader)(nil)

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(config ExcelConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NopLogger()
	}
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		config:   config,
		fileType: fileType,
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
		logger:   logger,
	}
}

// Describe names the source
func (r *DataReader) Describe() string {
	return r.config.FilePath
}

// Load reads the file, infers column kinds and applies display labels
func (r *DataReader) Load(ctx context.Context) (*dataset.Frame, error) {
	start := time.Now()
	if _, err := os.Stat(r.config.FilePath); err != nil {
		return nil, apperrors.SourceError(r.config.FilePath, err)
	}

	var (
		table  *RawTable
		labels map[string]string
		err    error
	)
	switch r.fileType {
	case "csv":
		table, err = r.readCSV()
	default:
		table, labels, err = r.readExcel()
	}
	if err != nil {
		return nil, apperrors.SourceError(r.config.FilePath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns := make([]*dataset.Column, len(table.Headers))
	for j, name := range table.Headers {
		col, err := r.coercer.Column(name, table.Column(j))
		if err != nil {
			return nil, apperrors.SourceError(r.config.FilePath, err)
		}
		r.logger.Trace("column %s: %s, %d valid", name, col.Kind(), col.ValidCount())
		if label, ok := labels[name]; ok && label != "" {
			col = col.WithLabel(label)
		}
		columns[j] = col
	}
	frame, err := dataset.NewFrame(columns...)
	if err != nil {
		return nil, apperrors.SourceError(r.config.FilePath, err)
	}

	r.logger.Info("loaded %s file %s: %d columns, %d rows in %s",
		r.fileType, r.config.FilePath, frame.NumCols(), frame.NumRows(), time.Since(start))
	return frame, nil
}

// readExcel reads the data sheet and the optional labels sheet
func (r *DataReader) readExcel() (*RawTable, map[string]string, error) {
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	table, err := r.processRows(rows)
	if err != nil {
		return nil, nil, err
	}

	labels, err := r.readLabels(f, sheet)
	if err != nil {
		return nil, nil, err
	}
	return table, labels, nil
}

// readLabels collects (name, label) pairs. A leading "name,label" row is
// treated as a header.
func (r *DataReader) readLabels(f *excelize.File, dataSheet string) (map[string]string, error) {
	if r.config.LabelsSheet == "" || r.config.LabelsSheet == dataSheet {
		return nil, nil
	}
	if idx, err := f.GetSheetIndex(r.config.LabelsSheet); err != nil || idx == -1 {
		return nil, nil
	}
	rows, err := f.GetRows(r.config.LabelsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.config.LabelsSheet, err)
	}
	labels := make(map[string]string, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		name, label := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if i == 0 && strings.EqualFold(name, "name") && strings.EqualFold(label, "label") {
			continue
		}
		labels[name] = label
	}
	r.logger.Debug("read %d labels from sheet %s", len(labels), r.config.LabelsSheet)
	return labels, nil
}

func (r *DataReader) readCSV() (*RawTable, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return r.processRows(rows)
}

// processRows trims headers and pads short rows to the header width
func (r *DataReader) processRows(rows [][]string) (*RawTable, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			return nil, fmt.Errorf("header of column %d is empty", i+1)
		}
	}

	data := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(headers) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+2, len(row), len(headers))
		}
		padded := make([]string, len(headers))
		copy(padded, row)
		data = append(data, padded)
	}
	return &RawTable{Headers: headers, Rows: data}, nil
}
