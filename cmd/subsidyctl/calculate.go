package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"subsidy/internal/report"
	"subsidy/internal/subsidy/calculator"
	"subsidy/internal/subsidy/handler"
)

type calculateOptions struct {
	subdivision    string
	name           string
	organization   string
	state          string
	district       string
	size           string
	businessNature string
	industryType   string
	plant          string
	building       string
	landOwned      bool
	landCost       string
	loanAvailed    bool
	loan           string
	tenure         string
	sgst           string
	out            string
}

func newCalculateCmd(root *rootOptions) *cobra.Command {
	o := &calculateOptions{}
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the subsidy for one enterprise",
		Example: `  subsidyctl calculate --subdivision Hansi --size small \
    --plant 4000000 --building 1000000 --land-owned --land-cost 1000000 \
    --loan-availed --loan 8000000 --tenure "7 years" --sgst 100000 --out report.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := o.request()
			if err != nil {
				return err
			}
			svc, err := root.service(cmd.Context())
			if err != nil {
				return err
			}

			out, pdf, err := svc.Report(cmd.Context(), req)
			if err != nil {
				return err
			}
			if o.out != "" {
				if err := os.WriteFile(o.out, pdf, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			if root.asJSON {
				return writeJSON(cmd.OutOrStdout(), handler.FromOutcome(out))
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Zone: %s\n", out.Zone)
			for _, l := range report.ResultLines(out.Result) {
				fmt.Fprintf(w, "%s: %s\n", l.Label, l.Value)
			}
			if o.out != "" {
				fmt.Fprintf(w, "Report written to %s\n", o.out)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.subdivision, "subdivision", "", "Subdivision (sub-district) name")
	f.StringVar(&o.name, "name", "", "Applicant name")
	f.StringVar(&o.organization, "organization", "", "Organization name")
	f.StringVar(&o.state, "state", "", "State")
	f.StringVar(&o.district, "district", "", "District")
	f.StringVar(&o.size, "size", "", "Enterprise size: micro, small, medium, large")
	f.StringVar(&o.businessNature, "business-nature", "", "Nature of business")
	f.StringVar(&o.industryType, "industry-type", "", "Industry type")
	f.StringVar(&o.plant, "plant", "0", "Plant & machinery investment")
	f.StringVar(&o.building, "building", "0", "Building & civil work investment")
	f.BoolVar(&o.landOwned, "land-owned", false, "Land is owned")
	f.StringVar(&o.landCost, "land-cost", "0", "Land cost")
	f.BoolVar(&o.loanAvailed, "loan-availed", false, "A term loan was availed")
	f.StringVar(&o.loan, "loan", "0", "Term loan amount")
	f.StringVar(&o.tenure, "tenure", "", "Loan tenure (display only)")
	f.StringVar(&o.sgst, "sgst", "0", "SGST paid from the cash ledger")
	f.StringVarP(&o.out, "out", "o", "", "Write the PDF report to this path")
	_ = cmd.MarkFlagRequired("subdivision")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func (o *calculateOptions) request() (calculator.Request, error) {
	size, err := calculator.ParseEnterpriseSize(o.size)
	if err != nil {
		return calculator.Request{}, err
	}
	req := calculator.Request{
		Name:             o.name,
		OrganizationName: o.organization,
		State:            o.state,
		District:         o.district,
		Subdivision:      o.subdivision,
		BusinessNature:   o.businessNature,
		IndustryType:     o.industryType,
		EnterpriseSize:   size,
		LandOwned:        o.landOwned,
		LoanAvailed:      o.loanAvailed,
		LoanTenure:       o.tenure,
	}
	amounts := []struct {
		flag string
		raw  string
		dst  *decimal.Decimal
	}{
		{"plant", o.plant, &req.PlantMachinery},
		{"building", o.building, &req.BuildingCivilWork},
		{"land-cost", o.landCost, &req.LandCost},
		{"loan", o.loan, &req.TermLoanAmount},
		{"sgst", o.sgst, &req.SGSTPaid},
	}
	for _, a := range amounts {
		d, err := calculator.ParseAmount(a.flag, a.raw)
		if err != nil {
			return calculator.Request{}, err
		}
		*a.dst = d
	}
	return req, nil
}
