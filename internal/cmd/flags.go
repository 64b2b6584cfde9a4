// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	catalogPathFlagName  = "catalog"
	catalogPathFlagShort = "c"
	catalogPathFlagUsage = "Path to the YAML data catalog declaring the pipeline datasets"

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes the output datasets to stdout instead of their catalog destinations"
	defaultLocalOutput   = false
)

// flags collects the CLI options for the run command.
type flags struct {
	catalogPath string
	localOutput bool
}

// addFlags registers the CLI flags on cmd.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&f.catalogPath,
		catalogPathFlagName,
		catalogPathFlagShort,
		"",
		catalogPathFlagUsage)

	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions builds an options instance from the parsed flags and CLI arguments.
func (f *flags) toOptions(cmd *cobra.Command, args []string) (*options, error) {
	pipelineName := ""
	if len(args) > 0 {
		pipelineName = args[0]
	}

	return &options{
		pipelineName:   strings.ToLower(pipelineName),
		catalogPath:    f.catalogPath,
		localOutput:    f.localOutput,
		out:            cmd.OutOrStdout(),
		sessionBuilder: sessionBuilder,
	}, nil
}
