// internal/output/excel.go
package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bhzfoot/fixturebot/internal/normalize"
)

const excelSheetName = "Fixtures"

// ExcelWriter writes the fixture set as an Excel workbook with one sheet,
// a header row and an auto-filter.
type ExcelWriter struct {
	file     *excelize.File
	filename string
	rows     int
}

// NewExcelWriter creates an Excel writer targeting filename.
func NewExcelWriter(filename string) (*ExcelWriter, error) {
	file := excelize.NewFile()
	index, err := file.NewSheet(excelSheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return &ExcelWriter{file: file, filename: filename}, nil
}

// Write emits the header and one row per fixture.
func (w *ExcelWriter) Write(fixtures []normalize.Fixture) error {
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := w.setRow(1, header); err != nil {
		return err
	}
	for i, fixture := range fixtures {
		values := fixtureRow(fixture)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := w.setRow(i+2, row); err != nil {
			return err
		}
	}
	w.rows = len(fixtures) + 1

	last, err := excelize.CoordinatesToCellName(len(columns), w.rows)
	if err != nil {
		return err
	}
	return w.file.AutoFilter(excelSheetName, "A1:"+last, nil)
}

func (w *ExcelWriter) setRow(row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(excelSheetName, cell, &values)
}

// Close saves the workbook to disk.
func (w *ExcelWriter) Close() error {
	defer w.file.Close()
	return w.file.SaveAs(w.filename)
}
