// Package zone holds the zone-wise incentive rate table.
//
// The table is built once at startup (by default from the embedded zones.yaml)
// and is read-only afterwards, so a *Table may be shared by any number of
// concurrent calculations.
package zone

import (
	"github.com/shopspring/decimal"
)

// Profile carries the rates and caps for one zone. Percent fields hold whole
// percents (50 means 50%). StampDutyRate is applied to the assessed land value
// as published.
type Profile struct {
	Code                      Code            `yaml:"code" json:"code"`
	SGSTInitialRate           decimal.Decimal `yaml:"sgst_initial_rate" json:"sgst_initial_rate"`
	SGSTInitialYears          int             `yaml:"sgst_initial_years" json:"sgst_initial_years"`
	SGSTExtendedRate          decimal.Decimal `yaml:"sgst_extended_rate" json:"sgst_extended_rate"`
	SGSTExtendedYears         int             `yaml:"sgst_extended_years" json:"sgst_extended_years"`
	StampDutyRate             decimal.Decimal `yaml:"stamp_duty_rate" json:"stamp_duty_rate"`
	InterestRate              decimal.Decimal `yaml:"interest_rate" json:"interest_rate"`
	InterestYears             int             `yaml:"interest_years" json:"interest_years"`
	CapitalSubsidyRate        decimal.Decimal `yaml:"capital_subsidy_rate" json:"capital_subsidy_rate"`
	CapitalSubsidyCap         decimal.Decimal `yaml:"capital_subsidy_cap" json:"capital_subsidy_cap"`
	InterestSubsidyCapPerYear decimal.Decimal `yaml:"interest_subsidy_cap_per_year" json:"interest_subsidy_cap_per_year"`
}

// decimals lists the decimal fields by name for validation.
func (p Profile) decimals() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"sgst_initial_rate":             p.SGSTInitialRate,
		"sgst_extended_rate":            p.SGSTExtendedRate,
		"stamp_duty_rate":               p.StampDutyRate,
		"interest_rate":                 p.InterestRate,
		"capital_subsidy_rate":          p.CapitalSubsidyRate,
		"capital_subsidy_cap":           p.CapitalSubsidyCap,
		"interest_subsidy_cap_per_year": p.InterestSubsidyCapPerYear,
	}
}

func (p Profile) years() map[string]int {
	return map[string]int{
		"sgst_initial_years":  p.SGSTInitialYears,
		"sgst_extended_years": p.SGSTExtendedYears,
		"interest_years":      p.InterestYears,
	}
}
