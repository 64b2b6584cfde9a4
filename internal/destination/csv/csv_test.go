// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fakewarehouse "github.com/mia-platform/trendprep/internal/warehouse/fake"
)

var (
	testColumns = []string{"country_name", "month", "google_trend", "avg_score", "avg_percent_gain"}
	testRows    = [][]any{
		{"Italy", "2024-05", "euro 2024", 57.5, 120.25},
		{"France", "2024-05", "jeux olympiques", 61.0, nil},
	}
)

func TestWriteRows(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		header         bool
		expectedOutput string
	}{
		"with header": {
			header: true,
			expectedOutput: "country_name,month,google_trend,avg_score,avg_percent_gain\n" +
				"Italy,2024-05,euro 2024,57.5,120.25\n" +
				"France,2024-05,jeux olympiques,61,\n",
		},
		"without header": {
			expectedOutput: "Italy,2024-05,euro 2024,57.5,120.25\n" +
				"France,2024-05,jeux olympiques,61,\n",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out", "preprocessed_data.csv")
			writer := NewWriter(path, testCase.header)

			rows := fakewarehouse.NewFakeRows(testColumns, testRows)
			require.NoError(t, writer.WriteRows(t.Context(), testColumns, rows))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedOutput, string(content))

			_, err = os.Stat(path + ".tmp")
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestWriteRowsErrors(t *testing.T) {
	t.Parallel()

	t.Run("iteration error leaves no output file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		rows := fakewarehouse.NewFakeRows(testColumns, testRows)
		rows.IterErr = assert.AnError

		err := NewWriter(path, true).WriteRows(t.Context(), testColumns, rows)
		assert.ErrorIs(t, err, assert.AnError)

		_, err = os.Stat(path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cancelled context aborts the write", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		rows := fakewarehouse.NewFakeRows(testColumns, testRows)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := NewWriter(path, true).WriteRows(ctx, testColumns, rows)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
