// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	runCmdUsageTemplate = "run [%s]"
	runCmdShort         = "run a preprocessing pipeline by name"
	runCmdLong          = `Run a preprocessing pipeline by name.
	The pipeline reads its input tables from the warehouse declared in the
	data catalog, applies the preprocessing transforms, and lands the output
	datasets to their catalog destinations.

	The available pipelines are:
	- trends: Google Trends preprocessing pipeline`

	runCmdExample = `# Run the Google Trends preprocessing pipeline
	trendprep run trends --catalog catalog.yaml

	# Run the pipeline writing the output to stdout
	trendprep run trends --catalog catalog.yaml --local-output`
)

// RunCmd returns the Cobra command that runs a preprocessing pipeline.
func RunCmd() *cobra.Command {
	flags := &flags{}
	allPipelines := slices.Sorted(maps.Keys(availablePipelines))
	cmd := &cobra.Command{
		Use:     fmt.Sprintf(runCmdUsageTemplate, strings.Join(allPipelines, "|")),
		Short:   heredoc.Doc(runCmdShort),
		Long:    heredoc.Doc(runCmdLong),
		Example: heredoc.Doc(runCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc(availablePipelines),
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
