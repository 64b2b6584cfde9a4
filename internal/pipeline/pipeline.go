// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"errors"
	"fmt"

	"github.com/mia-platform/trendprep/internal/query"
)

var (
	// ErrInvalidPipeline reports a pipeline declared without name or nodes.
	ErrInvalidPipeline = errors.New("invalid pipeline")
	// ErrInvalidNode reports a node with missing name, inputs, output or
	// transform function.
	ErrInvalidNode = errors.New("invalid node")
	// ErrDuplicateOutput reports two nodes producing the same dataset.
	ErrDuplicateOutput = errors.New("duplicate output dataset")
)

// TransformFunc builds the deferred relational expression of a node from
// its input relations, keyed by dataset name.
type TransformFunc func(inputs map[string]*query.Relation) (*query.Relation, error)

// Node connects named input datasets to a named output dataset through a
// relational transform.
type Node struct {
	// Name identifies the node in logs and errors.
	Name string
	// Inputs lists the dataset names resolved and passed to Transform.
	Inputs []string
	// Output is the dataset name the transform result is registered under.
	Output string
	// Transform builds the node result from the resolved inputs.
	Transform TransformFunc
}

func (n Node) validate() error {
	switch {
	case n.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidNode)
	case len(n.Inputs) == 0:
		return fmt.Errorf("%w %q: no inputs", ErrInvalidNode, n.Name)
	case n.Output == "":
		return fmt.Errorf("%w %q: no output", ErrInvalidNode, n.Name)
	case n.Transform == nil:
		return fmt.Errorf("%w %q: no transform function", ErrInvalidNode, n.Name)
	}

	return nil
}

// Pipeline is a named, ordered list of nodes. Nodes run in declaration
// order, so a node can consume the output of an earlier one.
type Pipeline struct {
	name  string
	nodes []Node
}

// New validates the nodes and assembles them into a pipeline.
func New(name string, nodes ...Node) (*Pipeline, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidPipeline)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w %q: no nodes", ErrInvalidPipeline, name)
	}

	seenNames := make(map[string]struct{}, len(nodes))
	seenOutputs := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if err := node.validate(); err != nil {
			return nil, err
		}

		if _, ok := seenNames[node.Name]; ok {
			return nil, fmt.Errorf("%w: duplicated node name %q", ErrInvalidPipeline, node.Name)
		}
		seenNames[node.Name] = struct{}{}

		if _, ok := seenOutputs[node.Output]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOutput, node.Output)
		}
		seenOutputs[node.Output] = struct{}{}
	}

	return &Pipeline{name: name, nodes: nodes}, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// Nodes returns the nodes in execution order.
func (p *Pipeline) Nodes() []Node {
	return p.nodes
}
