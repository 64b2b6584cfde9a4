// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fakewarehouse "github.com/mia-platform/trendprep/internal/warehouse/fake"
)

func TestNewStreamWriter(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	testWriter := NewWriter(buffer)

	rows := fakewarehouse.NewFakeRows(
		[]string{"country_name", "month", "avg_score"},
		[][]any{
			{"Italy", "2024-05", 57.5},
			{"Japan", "2024-05", nil},
		},
	)

	require.NoError(t, testWriter.WriteRows(t.Context(), []string{"country_name", "month", "avg_score"}, rows))

	expectedOutput := `country_name,month,avg_score
Italy,2024-05,57.5
Japan,2024-05,
`
	assert.Equal(t, expectedOutput, buffer.String())
}

func TestStreamWriterIterationError(t *testing.T) {
	t.Parallel()

	rows := fakewarehouse.NewFakeRows([]string{"a"}, [][]any{{"1"}})
	rows.IterErr = assert.AnError

	err := NewWriter(new(bytes.Buffer)).WriteRows(t.Context(), []string{"a"}, rows)
	assert.ErrorIs(t, err, assert.AnError)
}
