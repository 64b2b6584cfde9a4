// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/mia-platform/trendprep/internal/server"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

const (
	serveCmdUsage = "serve"
	serveCmdShort = "start the HTTP server for triggering pipeline runs"
	serveCmdLong  = `Start the HTTP server for triggering pipeline runs.
	The server exposes a run endpoint for every built-in pipeline together
	with the status routes. The listening address is read from the HTTP_HOST
	and HTTP_PORT environment variables.`

	serveCmdExample = `# Start the server with the given catalog
	trendprep serve --catalog catalog.yaml`

	runRoutePath = "/-/run/:pipeline"
)

// serveFlags holds the flags for the "serve" command.
type serveFlags struct {
	catalogPath string
}

// addFlags registers the CLI flags on cmd.
func (f *serveFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&f.catalogPath,
		catalogPathFlagName,
		catalogPathFlagShort,
		"",
		catalogPathFlagUsage)
}

// toOptions builds a serveOptions instance from the parsed flags.
func (f *serveFlags) toOptions(_ *cobra.Command, _ []string) (*serveOptions, error) {
	return &serveOptions{
		catalogPath:    f.catalogPath,
		sessionBuilder: sessionBuilder,
		serverBuilder:  serverBuilder,
	}, nil
}

// serveOptions configures the HTTP server exposing the pipeline runs.
type serveOptions struct {
	catalogPath    string
	sessionBuilder func() (warehouse.Session, error)
	serverBuilder  func(ctx context.Context) (server.Server, error)

	lock sync.Mutex
}

// validate checks the configured values and reports invalid setups.
func (o *serveOptions) validate() error {
	if o.catalogPath == "" {
		return errNoCatalog
	}

	return nil
}

// execute starts the HTTP server and blocks until the context is cancelled
// or the server stops.
func (o *serveOptions) execute(ctx context.Context) error {
	srv, err := o.serverBuilder(ctx)
	if err != nil {
		return err
	}

	srv.AddRoute(http.MethodPost, runRoutePath, o.runHandler())

	go func() {
		<-ctx.Done()
		_ = srv.Stop()
	}()

	return srv.Start()
}

// runHandler triggers a pipeline run from an HTTP request. Concurrent
// triggers for the same server are serialized.
func (o *serveOptions) runHandler() server.Handler {
	return func(ctx context.Context, params map[string]string) (any, error) {
		pipelineName := strings.ToLower(params["pipeline"])
		if _, ok := availablePipelines[pipelineName]; !ok {
			return nil, fmt.Errorf("%w: %s", errInvalidPipeline, pipelineName)
		}

		o.lock.Lock()
		defer o.lock.Unlock()

		runOpts := &options{
			pipelineName:   pipelineName,
			catalogPath:    o.catalogPath,
			sessionBuilder: o.sessionBuilder,
		}

		runID, err := runOpts.runPipeline(ctx, pipelineName)
		if err != nil {
			return nil, err
		}

		return map[string]string{
			"pipeline": pipelineName,
			"runId":    runID,
		}, nil
	}
}

// ServeCmd returns the Cobra command that starts the HTTP server.
func ServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd, args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
