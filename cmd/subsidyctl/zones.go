package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"subsidy/internal/subsidy/handler"
)

func newZonesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "Print the zone table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			profiles := table.Profiles()
			if opts.asJSON {
				resp := handler.ZonesResponse{}
				for _, p := range profiles {
					resp.Zones = append(resp.Zones, handler.FromProfile(p))
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ZONE\tSGST INIT %\tYRS\tSGST EXT %\tYRS\tSTAMP DUTY\tINTEREST %\tYRS\tCAPITAL %\tCAPITAL CAP\tINTEREST CAP/YR")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
					p.Code, p.SGSTInitialRate, p.SGSTInitialYears,
					p.SGSTExtendedRate, p.SGSTExtendedYears,
					p.StampDutyRate, p.InterestRate, p.InterestYears,
					p.CapitalSubsidyRate, p.CapitalSubsidyCap.StringFixed(2), p.InterestSubsidyCapPerYear.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}
