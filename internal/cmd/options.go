// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mia-platform/trendprep/internal/catalog"
	"github.com/mia-platform/trendprep/internal/destination"
	"github.com/mia-platform/trendprep/internal/destination/csv"
	"github.com/mia-platform/trendprep/internal/destination/writer"
	"github.com/mia-platform/trendprep/internal/logger"
	"github.com/mia-platform/trendprep/internal/pipeline"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

// options configures a pipeline run against the warehouse.
type options struct {
	pipelineName   string
	catalogPath    string
	localOutput    bool
	out            io.Writer
	sessionBuilder func() (warehouse.Session, error)

	lock sync.Mutex
}

// validate checks the configured values and reports invalid setups.
func (o *options) validate() error {
	if o.pipelineName == "" {
		return errNoArguments
	}

	if _, ok := availablePipelines[o.pipelineName]; !ok {
		return fmt.Errorf("%w: %s", errInvalidPipeline, o.pipelineName)
	}

	if o.catalogPath == "" {
		return errNoCatalog
	}

	return nil
}

// execute runs the pipeline configured by the options. Concurrent calls
// are serialized, every caller performs its own run.
func (o *options) execute(ctx context.Context) error {
	o.lock.Lock()
	defer o.lock.Unlock()

	runID, err := o.runPipeline(ctx, o.pipelineName)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("pipeline run completed", "pipeline", o.pipelineName, "runId", runID)
	return nil
}

// runPipeline loads the catalog, opens a warehouse session, and lands the
// pipeline outputs through the configured writers.
func (o *options) runPipeline(ctx context.Context, name string) (string, error) {
	dataCatalog, err := catalog.LoadFromPath(o.catalogPath)
	if err != nil {
		return "", err
	}

	dataPipeline, err := pipelineForName(name)
	if err != nil {
		return "", err
	}

	session, err := o.sessionBuilder()
	if err != nil {
		return "", err
	}
	defer session.Close()

	if err := session.Ping(ctx); err != nil {
		return "", err
	}

	runner := pipeline.NewRunner(dataCatalog, session, o.writerResolver())
	return runner.Run(ctx, dataPipeline)
}

// writerResolver returns the resolver used to land output datasets. With
// localOutput set every dataset is streamed to the configured output writer,
// otherwise the dataset type selects the destination.
func (o *options) writerResolver() pipeline.WriterResolver {
	return func(dataset catalog.Dataset) (destination.Writer, error) {
		if o.localOutput {
			return writer.NewWriter(o.out), nil
		}

		switch dataset.Type {
		case catalog.TypeFileCSV:
			return csv.NewWriter(dataset.Filepath, dataset.Header), nil
		default:
			return nil, fmt.Errorf("%w: dataset %q cannot be used as a destination", catalog.ErrInvalidDataset, dataset.Name)
		}
	}
}
