package crawl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/sitecrawl"
)

// Export layout shared by all table writers.
const (
	SheetName = "URLs"
	HeaderURL = "url"
)

var _ sitecrawl.ResultSink = (*Sink)(nil)

// Sink writes the visited URLs of a run to dir/urls_summary_<label>.<ext>,
// one URL per row under a single "url" header. Writing the same URLs twice
// produces the same file.
type Sink struct {
	writer sitecrawl.TableWriter
	dir    string
}

// NewSink creates a Sink writing through w into dir.
func NewSink(w sitecrawl.TableWriter, dir string) *Sink {
	if dir == "" {
		dir = "."
	}
	return &Sink{writer: w, dir: dir}
}

// Path returns the file a flush for domain writes to.
func (s *Sink) Path(domain string) string {
	name := fmt.Sprintf("urls_summary_%s.%s", DomainLabel(domain), s.writer.Ext())
	return filepath.Join(s.dir, name)
}

// Flush writes urls and returns the file path.
// Nothing is written for an empty slice.
func (s *Sink) Flush(ctx context.Context, domain string, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", nil
	}

	rows := make([][]string, len(urls))
	for i, u := range urls {
		rows[i] = []string{u}
	}

	path := s.Path(domain)
	table := &sitecrawl.Table{
		Sheet:  SheetName,
		Header: []string{HeaderURL},
		Rows:   rows,
	}
	if err := s.writer.WriteTable(ctx, path, table); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
