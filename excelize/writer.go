// Package excelize implements sitecrawl.TableWriter for Excel workbooks
// using github.com/xuri/excelize/v2.
package excelize

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/fs"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new workbook starts with.
const defaultSheet = "Sheet1"

// DefaultColumnWidth fits typical URLs without wrapping.
const DefaultColumnWidth = 100

var _ sitecrawl.TableWriter = (*Writer)(nil)

// Writer writes a table as a single-sheet .xlsx workbook with a bold
// header row.
type Writer struct {
	columnWidth float64
}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{columnWidth: DefaultColumnWidth}
}

// Ext returns "xlsx".
func (w *Writer) Ext() string { return "xlsx" }

// WriteTable replaces path with a workbook holding t.
func (w *Writer) WriteTable(ctx context.Context, path string, t *sitecrawl.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	if err := w.fill(f, sheet, t); err != nil {
		return err
	}

	return fs.WriteFile(path, func(out io.Writer) error {
		_, err := f.WriteTo(out)
		return err
	})
}

// fill streams the header and rows into sheet.
func (w *Writer) fill(f *excelize.File, sheet string, t *sitecrawl.Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	width := len(t.Header)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	if width > 0 {
		if err := sw.SetColWidth(1, width, w.columnWidth); err != nil {
			return err
		}
	}

	next := 1
	if len(t.Header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		cells := make([]any, len(t.Header))
		for i, h := range t.Header {
			cells[i] = excelize.Cell{StyleID: bold, Value: h}
		}
		if err := w.setRow(sw, next, cells); err != nil {
			return err
		}
		next++
	}

	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		if err := w.setRow(sw, next, cells); err != nil {
			return err
		}
		next++
	}

	return sw.Flush()
}

func (w *Writer) setRow(sw *excelize.StreamWriter, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
