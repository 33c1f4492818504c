// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/synoptic/pkg/types"
)

// Writer appends CSV records to a file. The header is written only when
// the file is new or empty.
type Writer struct {
	f   *os.File
	csv *csv.Writer
}

// Create truncates path and writes header.
func Create(path string, header []string) (*Writer, error) {
	return open(path, header, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// Append opens path for appending, writing header first if the file does
// not exist yet.
func Append(path string, header []string) (*Writer, error) {
	return open(path, header, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func open(path string, header []string, flag int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	w := &Writer{f: f, csv: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("writing %s: %w", w.f.Name(), err)
	}
	return nil
}

// WritePaper appends p rendered in columns.
func (w *Writer) WritePaper(p types.Paper, columns []string) error {
	return w.Write(Row(p, columns))
}

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return fmt.Errorf("flushing %s: %w", w.f.Name(), err)
	}
	return w.f.Close()
}

// WriteFile replaces path with a CSV of papers in the given columns.
func WriteFile(path string, columns []string, papers []types.Paper) error {
	w, err := Create(path, columns)
	if err != nil {
		return err
	}
	for _, p := range papers {
		if err := w.WritePaper(p, columns); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
