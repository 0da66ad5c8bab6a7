package fs

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.TableWriter = (*CSVWriter)(nil)

// CSVWriter writes tables as RFC 4180 CSV: the header line, then one line
// per row. The sheet name is not stored.
type CSVWriter struct{}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Ext returns "csv".
func (w *CSVWriter) Ext() string { return "csv" }

// WriteTable replaces path with the CSV rendering of t.
func (w *CSVWriter) WriteTable(ctx context.Context, path string, t *sitecrawl.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFile(path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if len(t.Header) > 0 {
			if err := cw.Write(t.Header); err != nil {
				return err
			}
		}
		return cw.WriteAll(t.Rows)
	})
}
