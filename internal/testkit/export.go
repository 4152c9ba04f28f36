package testkit

import (
	"encoding/csv"
	"os"

	"epistack/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// LabelsSheet holds (name, label) pairs for columns with display labels
const LabelsSheet = "Labels"

// MissingCell is written for missing values
const MissingCell = "NA"

// Records renders a frame as a header row plus string rows
func Records(frame *dataset.Frame) ([]string, [][]string) {
	headers := frame.Names()
	rows := make([][]string, frame.NumRows())
	for r := range rows {
		rows[r] = make([]string, frame.NumCols())
		for c := 0; c < frame.NumCols(); c++ {
			rows[r][c] = cellText(frame.Column(c), r)
		}
	}
	return headers, rows
}

func cellText(col *dataset.Column, r int) string {
	v := col.Value(r)
	switch {
	case v.Missing:
		return MissingCell
	case col.Kind() == dataset.KindBoolean:
		if v.Number != 0 {
			return dataset.LevelTrue
		}
		return dataset.LevelFalse
	case col.Kind() == dataset.KindNumeric:
		return dataset.FormatNumber(v.Number)
	}
	return v.Text
}

// WriteCSV writes the frame with a header row
func WriteCSV(path string, frame *dataset.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	headers, rows := Records(frame)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the frame to Sheet1 and any display labels to the Labels sheet
func WriteXLSX(path string, frame *dataset.Frame) error {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure Sheet1 exists and is active.
	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	headers, rows := Records(frame)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	labelRow := 1
	for c := 0; c < frame.NumCols(); c++ {
		col := frame.Column(c)
		if col.Label() == col.Name() {
			continue
		}
		if labelRow == 1 {
			if _, err := f.NewSheet(LabelsSheet); err != nil {
				return err
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, labelRow)
		if err := f.SetSheetRow(LabelsSheet, cell, &[]interface{}{col.Name(), col.Label()}); err != nil {
			return err
		}
		labelRow++
	}

	return f.SaveAs(path)
}
