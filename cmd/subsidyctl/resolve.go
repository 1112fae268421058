package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subsidy/internal/subsidy/handler"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <subdivision>",
		Short: "Resolve a subdivision to its zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := svc.Locate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), handler.FromEntry(entry))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s): zone %s\n",
				entry.Subdivision, entry.District, entry.State, entry.Zone)
			return err
		},
	}
}
