// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mia-platform/trendprep/internal/catalog"
	"github.com/mia-platform/trendprep/internal/destination"
	"github.com/mia-platform/trendprep/internal/logger"
	"github.com/mia-platform/trendprep/internal/query"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

const (
	loggerName = "trendprep:pipeline"
)

var (
	// ErrInputDataset reports a node input that is not backed by a
	// warehouse table or by the output of an earlier node.
	ErrInputDataset = errors.New("input dataset is not a warehouse table")
)

// WriterResolver returns the destination writer for an output dataset.
type WriterResolver func(dataset catalog.Dataset) (destination.Writer, error)

// Runner executes pipelines against a warehouse session, resolving
// datasets through the catalog.
type Runner struct {
	catalog  *catalog.Catalog
	session  warehouse.Session
	resolver WriterResolver
}

// NewRunner wires a catalog, a warehouse session and a writer resolver
// into a pipeline runner.
func NewRunner(cat *catalog.Catalog, session warehouse.Session, resolver WriterResolver) *Runner {
	return &Runner{
		catalog:  cat,
		session:  session,
		resolver: resolver,
	}
}

// Run executes every node of the pipeline in order and returns the
// identifier assigned to the run.
func (r *Runner) Run(ctx context.Context, p *Pipeline) (string, error) {
	log := logger.FromContext(ctx).WithName(loggerName)
	runID := uuid.NewString()
	log.Info("starting pipeline run", "pipeline", p.Name(), "run", runID)

	produced := make(map[string]*query.Relation)
	for _, node := range p.Nodes() {
		if err := ctx.Err(); err != nil {
			return runID, err
		}

		if err := r.runNode(ctx, log, node, produced); err != nil {
			return runID, fmt.Errorf("node %q: %w", node.Name, err)
		}
	}

	log.Info("pipeline run completed", "pipeline", p.Name(), "run", runID)
	return runID, nil
}

func (r *Runner) runNode(ctx context.Context, log logger.Logger, node Node, produced map[string]*query.Relation) error {
	inputs := make(map[string]*query.Relation, len(node.Inputs))
	for _, name := range node.Inputs {
		if relation, ok := produced[name]; ok {
			inputs[name] = relation
			continue
		}

		dataset, err := r.catalog.Dataset(name)
		if err != nil {
			return err
		}
		if dataset.Type != catalog.TypeWarehouseTable {
			return fmt.Errorf("%w: %s", ErrInputDataset, name)
		}

		inputs[name] = query.Table(dataset.Database, dataset.Table).Named(name)
	}

	relation, err := node.Transform(inputs)
	if err != nil {
		return err
	}
	produced[node.Output] = relation

	dataset, err := r.catalog.Dataset(node.Output)
	if errors.Is(err, catalog.ErrUnknownDataset) {
		// Outputs not declared in the catalog stay in memory for
		// downstream nodes, like intermediate datasets.
		log.Debug("output dataset not in catalog, keeping in memory", "node", node.Name, "output", node.Output)
		return nil
	}
	if err != nil {
		return err
	}

	statement, err := relation.SQL()
	if err != nil {
		return err
	}
	log.Debug("compiled node query", "node", node.Name, "sql", statement)

	rows, err := r.session.Query(ctx, statement)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	writer, err := r.resolver(dataset)
	if err != nil {
		return err
	}

	if err := writer.WriteRows(ctx, columns, rows); err != nil {
		return err
	}

	log.Info("node completed", "node", node.Name, "output", node.Output)
	return nil
}
