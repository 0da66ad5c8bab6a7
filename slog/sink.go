package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// Ensure LoggingTableWriter implements sitecrawl.TableWriter.
var _ sitecrawl.TableWriter = (*LoggingTableWriter)(nil)

// LoggingTableWriter wraps a TableWriter with debug logging.
type LoggingTableWriter struct {
	next   sitecrawl.TableWriter
	logger *slog.Logger
}

// NewLoggingTableWriter creates a new LoggingTableWriter.
func NewLoggingTableWriter(next sitecrawl.TableWriter, logger *slog.Logger) *LoggingTableWriter {
	return &LoggingTableWriter{next: next, logger: logger}
}

// WriteTable delegates to the wrapped writer and logs the path and row count.
func (w *LoggingTableWriter) WriteTable(ctx context.Context, path string, t *sitecrawl.Table) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write table",
			"path", path,
			"sheet", t.Sheet,
			"rows", len(t.Rows),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteTable(ctx, path, t)
}

// Ext delegates to the wrapped writer.
func (w *LoggingTableWriter) Ext() string {
	return w.next.Ext()
}
