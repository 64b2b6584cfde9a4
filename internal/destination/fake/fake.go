// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/mia-platform/trendprep/internal/destination"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

var _ destination.Writer = &FakeWriter{}

// FakeWriter records the columns and rows written to it.
type FakeWriter struct {
	tb testing.TB

	Err error

	Columns []string
	Rows    [][]any
}

// NewFakeWriter returns an in-memory destination writer.
func NewFakeWriter(tb testing.TB) *FakeWriter {
	tb.Helper()
	return &FakeWriter{tb: tb}
}

func (f *FakeWriter) WriteRows(_ context.Context, columns []string, rows warehouse.Rows) error {
	f.tb.Helper()

	if f.Err != nil {
		return f.Err
	}

	f.Columns = columns
	for rows.Next() {
		values, err := rows.Scan()
		if err != nil {
			return err
		}
		f.Rows = append(f.Rows, values)
	}

	return rows.Err()
}
