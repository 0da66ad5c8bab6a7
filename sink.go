package sitecrawl

import "context"

// Table is a single-sheet tabular payload.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// TableWriter writes a Table to a file.
// Implementations replace any existing file at path.
type TableWriter interface {
	WriteTable(ctx context.Context, path string, t *Table) error

	// Ext returns the file extension produced by the writer, without the dot.
	Ext() string
}

// ResultSink persists the visited URLs of a crawl run.
type ResultSink interface {
	// Flush writes urls for the crawl of domain and returns the location
	// written. An empty urls slice writes nothing and returns "".
	Flush(ctx context.Context, domain string, urls []string) (location string, err error)
}
