package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Report"

// XLSXExporter writes a dataset to a single-sheet workbook. Title and lines
// go above the table, footer lines below it.
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) Extension() string { return "xlsx" }

func (e *XLSXExporter) Render(data Dataset) (out []byte, err error) {
	if err := data.validate(FormatXLSX); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	row := 1
	writeLine := func(text string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetCellStr(xlsxSheet, cell, text)
	}
	if data.Title != "" {
		if err := writeLine(data.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
	}
	for _, line := range data.Lines {
		if err := writeLine(line); err != nil {
			return nil, fmt.Errorf("write line: %w", err)
		}
	}
	if row > 1 {
		row++
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	headerRow := row
	if err := setRow(f, row, data.Headers); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(data.Headers), headerRow)
	if err := f.SetCellStyle(xlsxSheet, first, last, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}
	row++

	for i := range data.Rows {
		if err := setRow(f, row, data.Row(i)); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i, err)
		}
		row++
	}

	if len(data.Footer) > 0 {
		row++
		for _, line := range data.Footer {
			if err := writeLine(line); err != nil {
				return nil, fmt.Errorf("write footer: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(xlsxSheet, cell, &cells)
}
