// Package fs provides file-system helpers for crawl exports: atomic file
// replacement and a CSV implementation of sitecrawl.TableWriter.
package fs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileMode is the permission of exported files.
const FileMode = 0o644

// ReplaceFile creates path through a temporary file in the same directory.
// write receives the temporary path and may open it however it needs; the
// file is renamed over path only when write succeeds, so readers never see
// a partial export. Missing parent directories are created.
func ReplaceFile(path string, write func(tmpPath string) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmpPath); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, FileMode); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// WriteFile is ReplaceFile for writers that stream their output.
func WriteFile(path string, write func(w io.Writer) error) error {
	return ReplaceFile(path, func(tmpPath string) error {
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_TRUNC, FileMode)
		if err != nil {
			return err
		}

		bw := bufio.NewWriter(f)
		if err := write(bw); err != nil {
			f.Close()
			return err
		}
		if err := bw.Flush(); err != nil {
			f.Close()
			return fmt.Errorf("flush %s: %w", path, err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}
