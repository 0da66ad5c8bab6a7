package mock

import (
	"context"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.ResultSink = (*ResultSink)(nil)

// ResultSink is a mock implementation of sitecrawl.ResultSink.
type ResultSink struct {
	FlushFn func(ctx context.Context, domain string, urls []string) (string, error)
}

func (s *ResultSink) Flush(ctx context.Context, domain string, urls []string) (string, error) {
	return s.FlushFn(ctx, domain, urls)
}

var _ sitecrawl.TableWriter = (*TableWriter)(nil)

// TableWriter is a mock implementation of sitecrawl.TableWriter.
type TableWriter struct {
	WriteTableFn func(ctx context.Context, path string, t *sitecrawl.Table) error
	ExtFn        func() string
}

func (w *TableWriter) WriteTable(ctx context.Context, path string, t *sitecrawl.Table) error {
	return w.WriteTableFn(ctx, path, t)
}

func (w *TableWriter) Ext() string {
	return w.ExtFn()
}
