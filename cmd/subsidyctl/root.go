package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"subsidy/internal/subsidy/location"
	"subsidy/internal/subsidy/service"
	"subsidy/internal/subsidy/zone"
)

type rootOptions struct {
	locations string
	zonesFile string
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "subsidyctl",
		Short:         "Investment subsidy calculator",
		Long:          "Resolve subdivisions to zones and compute capital, stamp duty, interest and SGST subsidies.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.locations, "locations", "data/subdivisions.csv", "Subdivision reference CSV")
	cmd.PersistentFlags().StringVar(&opts.zonesFile, "zones", "", "Zone table YAML (default: built-in table)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of text")

	cmd.AddCommand(newZonesCmd(opts))
	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newCalculateCmd(opts))
	return cmd
}

func (o *rootOptions) table() (*zone.Table, error) {
	if o.zonesFile != "" {
		return zone.LoadFile(o.zonesFile)
	}
	return zone.Default()
}

// service builds a calculator-only service: no delivery, no events.
func (o *rootOptions) service(ctx context.Context) (*service.Service, error) {
	table, err := o.table()
	if err != nil {
		return nil, err
	}
	index, err := location.Build(ctx, location.NewCSVSource(o.locations))
	if err != nil {
		return nil, err
	}
	return service.New(index, table), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
