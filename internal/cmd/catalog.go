// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/mia-platform/trendprep/internal/catalog"
)

const (
	catalogCmdUsage = "catalog"
	catalogCmdShort = "inspect and validate data catalog files"

	catalogValidateCmdUsage = "validate CATALOG_PATH"
	catalogValidateCmdShort = "validate a data catalog file"
	catalogValidateCmdLong  = `Validate a data catalog file.
	The catalog is parsed and every dataset declaration is checked against its
	type requirements. On success the datasets are listed with their types.`

	catalogValidateCmdExample = `# Validate a catalog file
	trendprep catalog validate catalog.yaml`
)

// CatalogCmd returns the Cobra command grouping the data catalog operations.
func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   catalogCmdUsage,
		Short: heredoc.Doc(catalogCmdShort),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.AddCommand(catalogValidateCmd())
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     catalogValidateCmdUsage,
		Short:   heredoc.Doc(catalogValidateCmdShort),
		Long:    heredoc.Doc(catalogValidateCmdLong),
		Example: heredoc.Doc(catalogValidateCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.FixedCompletions(nil, cobra.ShellCompDirectiveDefault),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return handleError(cmd, errNoCatalog)
			}

			dataCatalog, err := catalog.LoadFromPath(args[0])
			if err != nil {
				return handleError(cmd, err)
			}

			names := dataCatalog.Names()
			for _, name := range names {
				dataset, err := dataCatalog.Dataset(name)
				if err != nil {
					return handleError(cmd, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, dataset.Type)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "catalog is valid, %d datasets found\n", len(names))
			return nil
		},
	}
}
