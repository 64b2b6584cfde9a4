// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"context"
	"encoding/csv"
	"io"
	"sync"

	"github.com/mia-platform/trendprep/internal/destination"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

var _ destination.Writer = &streamWriter{}

type streamWriter struct {
	writer io.Writer

	lock sync.Mutex
}

// NewWriter returns a destination that writes rows as CSV with a header to
// w. It is used for local output instead of the file declared in the
// catalog.
func NewWriter(w io.Writer) destination.Writer {
	return &streamWriter{
		writer: w,
	}
}

func (d *streamWriter) WriteRows(ctx context.Context, columns []string, rows warehouse.Rows) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	encoder := csv.NewWriter(d.writer)
	if err := encoder.Write(columns); err != nil {
		return err
	}

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		values, err := rows.Scan()
		if err != nil {
			return err
		}
		if err := encoder.Write(destination.FormatRecord(values)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	encoder.Flush()
	return encoder.Error()
}
