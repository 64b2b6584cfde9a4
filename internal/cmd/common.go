// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/trendprep/internal/pipeline"
	"github.com/mia-platform/trendprep/internal/server"
	"github.com/mia-platform/trendprep/internal/transform/trends"
	"github.com/mia-platform/trendprep/internal/warehouse"
)

var (
	errNoArguments     = errors.New("no pipeline name provided")
	errInvalidPipeline = errors.New("invalid pipeline name provided")
	errNoCatalog       = errors.New("no catalog path provided")

	// availablePipelines holds the list of built-in pipelines and their description
	// for command completion and help messages.
	availablePipelines = map[string]string{
		trends.PipelineName: "Google Trends preprocessing pipeline",
	}

	// sessionBuilder opens the warehouse session from the environment configuration.
	// It can be overridden for testing purposes.
	sessionBuilder = newWarehouseSession

	// serverBuilder creates the HTTP server for the serve command.
	// It can be overridden for testing purposes.
	serverBuilder = server.NewServer
)

func newWarehouseSession() (warehouse.Session, error) {
	envVars, err := warehouse.LoadConfig()
	if err != nil {
		return nil, err
	}

	return warehouse.NewSession(envVars), nil
}

// pipelineForName returns the built-in pipeline registered under name.
func pipelineForName(name string) (*pipeline.Pipeline, error) {
	if name == trends.PipelineName {
		return trends.Pipeline()
	}

	return nil, fmt.Errorf("%w: %s", errInvalidPipeline, name)
}

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errNoArguments):
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return nil
	case errors.Is(err, errInvalidPipeline), errors.Is(err, errNoCatalog):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

func validArgsFunc(pipelines map[string]string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var comps []string
		if len(args) == 0 {
			for name, description := range pipelines {
				if strings.HasPrefix(name, toComplete) {
					comps = append(comps, cobra.CompletionWithDesc(name, description))
				}
			}
		}

		return comps, cobra.ShellCompDirectiveNoFileComp
	}
}
