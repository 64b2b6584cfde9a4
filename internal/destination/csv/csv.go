// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mia-platform/trendprep/internal/destination"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

var _ destination.Writer = &fileWriter{}

type fileWriter struct {
	path   string
	header bool
}

// NewWriter returns a writer that lands rows in a CSV file at path,
// optionally preceded by a header row with the column names.
func NewWriter(path string, header bool) destination.Writer {
	return &fileWriter{
		path:   path,
		header: header,
	}
}

// WriteRows streams rows into a temporary file next to the target path and
// renames it in place once the result set is fully consumed, so a failed
// run never leaves a truncated output behind.
func (w *fileWriter) WriteRows(ctx context.Context, columns []string, rows warehouse.Rows) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmpPath := w.path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		file.Close()
		os.Remove(tmpPath)
	}()

	encoder := csv.NewWriter(file)
	if w.header {
		if err := encoder.Write(columns); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		values, err := rows.Scan()
		if err != nil {
			return fmt.Errorf("reading row: %w", err)
		}

		if err := encoder.Write(destination.FormatRecord(values)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading rows: %w", err)
	}

	encoder.Flush()
	if err := encoder.Error(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	return os.Rename(tmpPath, w.path)
}
