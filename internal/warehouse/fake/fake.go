// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/mia-platform/trendprep/internal/warehouse"
)

var (
	_ warehouse.Rows    = &FakeRows{}
	_ warehouse.Session = &FakeSession{}
)

// FakeRows is an in-memory result set for tests.
type FakeRows struct {
	ColumnNames []string
	Data        [][]any
	ScanErr     error
	IterErr     error
	Closed      bool

	idx int
}

// NewFakeRows returns a result set over the given columns and data rows.
func NewFakeRows(columns []string, data [][]any) *FakeRows {
	return &FakeRows{ColumnNames: columns, Data: data}
}

func (r *FakeRows) Columns() ([]string, error) {
	return r.ColumnNames, nil
}

func (r *FakeRows) Next() bool {
	if r.IterErr != nil || r.idx >= len(r.Data) {
		return false
	}
	r.idx++
	return true
}

func (r *FakeRows) Scan() ([]any, error) {
	if r.ScanErr != nil {
		return nil, r.ScanErr
	}
	return r.Data[r.idx-1], nil
}

func (r *FakeRows) Err() error {
	return r.IterErr
}

func (r *FakeRows) Close() error {
	r.Closed = true
	return nil
}

// FakeSession is a warehouse session returning canned rows and recording
// the executed statements.
type FakeSession struct {
	tb testing.TB

	Rows     *FakeRows
	QueryErr error
	PingErr  error

	ExecutedQueries []string
	Closed          bool
}

// NewFakeSession returns a session that answers every query with rows.
func NewFakeSession(tb testing.TB, rows *FakeRows) *FakeSession {
	tb.Helper()
	return &FakeSession{tb: tb, Rows: rows}
}

func (s *FakeSession) Ping(_ context.Context) error {
	s.tb.Helper()
	return s.PingErr
}

func (s *FakeSession) Query(_ context.Context, query string) (warehouse.Rows, error) {
	s.tb.Helper()

	s.ExecutedQueries = append(s.ExecutedQueries, query)
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	return s.Rows, nil
}

func (s *FakeSession) Close() error {
	s.Closed = true
	return nil
}
