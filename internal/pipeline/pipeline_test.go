// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/trendprep/internal/query"
)

func testTransform(inputs map[string]*query.Relation) (*query.Relation, error) {
	for _, relation := range inputs {
		return relation, nil
	}
	return nil, assert.AnError
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	validNode := Node{
		Name:      "node",
		Inputs:    []string{"input"},
		Output:    "output",
		Transform: testTransform,
	}

	testCases := map[string]struct {
		name        string
		nodes       []Node
		expectedErr error
	}{
		"valid pipeline": {
			name:  "test",
			nodes: []Node{validNode},
		},
		"missing pipeline name": {
			nodes:       []Node{validNode},
			expectedErr: ErrInvalidPipeline,
		},
		"no nodes": {
			name:        "test",
			expectedErr: ErrInvalidPipeline,
		},
		"node without name": {
			name: "test",
			nodes: []Node{
				{Inputs: []string{"input"}, Output: "output", Transform: testTransform},
			},
			expectedErr: ErrInvalidNode,
		},
		"node without inputs": {
			name: "test",
			nodes: []Node{
				{Name: "node", Output: "output", Transform: testTransform},
			},
			expectedErr: ErrInvalidNode,
		},
		"node without output": {
			name: "test",
			nodes: []Node{
				{Name: "node", Inputs: []string{"input"}, Transform: testTransform},
			},
			expectedErr: ErrInvalidNode,
		},
		"node without transform": {
			name: "test",
			nodes: []Node{
				{Name: "node", Inputs: []string{"input"}, Output: "output"},
			},
			expectedErr: ErrInvalidNode,
		},
		"duplicated node name": {
			name: "test",
			nodes: []Node{
				validNode,
				{Name: "node", Inputs: []string{"other"}, Output: "other_output", Transform: testTransform},
			},
			expectedErr: ErrInvalidPipeline,
		},
		"duplicated output": {
			name: "test",
			nodes: []Node{
				validNode,
				{Name: "other", Inputs: []string{"other"}, Output: "output", Transform: testTransform},
			},
			expectedErr: ErrDuplicateOutput,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := New(testCase.name, testCase.nodes...)
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.name, p.Name())
			assert.Equal(t, testCase.nodes, p.Nodes())
		})
	}
}
