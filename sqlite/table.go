package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/fs"
)

var _ sitecrawl.TableWriter = (*TableWriter)(nil)

// TableWriter writes a table into a fresh SQLite database file. The table is
// named after the sheet, every header becomes a TEXT column and rows keep
// their order in an integer "position" column.
type TableWriter struct{}

// NewTableWriter creates a TableWriter.
func NewTableWriter() *TableWriter {
	return &TableWriter{}
}

// Ext returns "db".
func (w *TableWriter) Ext() string { return "db" }

// WriteTable replaces path with a database holding t.
func (w *TableWriter) WriteTable(ctx context.Context, path string, t *sitecrawl.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(t.Header) == 0 {
		return sitecrawl.Errorf(sitecrawl.EINVALID, "table %q has no columns", t.Sheet)
	}

	return fs.ReplaceFile(path, func(tmpPath string) error {
		db := NewDB(tmpPath)
		if err := db.Open(); err != nil {
			return err
		}
		if err := writeTable(ctx, db, t); err != nil {
			db.Close()
			return err
		}
		return db.Close()
	})
}

func writeTable(ctx context.Context, db *DB, t *sitecrawl.Table) error {
	name := t.Sheet
	if name == "" {
		name = "rows"
	}

	columns := make([]string, len(t.Header))
	defs := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		columns[i] = quoteIdent(h)
		defs[i] = quoteIdent(h) + " TEXT NOT NULL"
		marks[i] = "?"
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	create := fmt.Sprintf("CREATE TABLE %s (position INTEGER PRIMARY KEY, %s)",
		quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (position, %s) VALUES (?, %s)",
		quoteIdent(name), strings.Join(columns, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Header)+1)
	for i, row := range t.Rows {
		args[0] = i + 1
		for j := range t.Header {
			args[j+1] = ""
			if j < len(row) {
				args[j+1] = row[j]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
