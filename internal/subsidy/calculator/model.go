package calculator

import (
	"github.com/shopspring/decimal"

	dErrors "subsidy/pkg/domain-errors"
)

// NoLoanTenure is shown in place of a tenure when no loan was availed.
const NoLoanTenure = "N/A"

// Amount bounds. Arithmetic cost grows with scale and precision, so inputs
// outside these limits are rejected before any calculation.
const (
	minAmountExponent = -10
	maxAmountExponent = 15
	maxAmountDigits   = 20
)

// ParseAmount parses a decimal amount and checks it against the amount bounds.
// Errors are invalid_input naming field.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, dErrors.Field(dErrors.CodeInvalidInput, field, field+" must be a number")
	}
	if err := checkAmount(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// checkAmount enforces the bounds only; sign is checked by Validate once the
// land and loan gates have applied.
func checkAmount(field string, d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < minAmountExponent || exp > maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return dErrors.Field(dErrors.CodeInvalidInput, field, field+" is out of range")
	}
	return nil
}

// Request is one applicant submission. Identity and contact fields are carried
// through to the report untouched.
type Request struct {
	Name             string
	OrganizationName string
	State            string
	District         string
	Subdivision      string
	Email            string
	BusinessNature   string
	IndustryType     string

	EnterpriseSize    EnterpriseSize
	PlantMachinery    decimal.Decimal
	BuildingCivilWork decimal.Decimal
	LandOwned         bool
	LandCost          decimal.Decimal
	LoanAvailed       bool
	TermLoanAmount    decimal.Decimal
	LoanTenure        string
	SGSTPaid          decimal.Decimal
}

// Normalized applies the land and loan gates: land cost is zero unless land is
// owned, the term loan is zero and the tenure N/A unless a loan was availed.
func (r Request) Normalized() Request {
	if !r.LandOwned {
		r.LandCost = decimal.Zero
	}
	if !r.LoanAvailed {
		r.TermLoanAmount = decimal.Zero
		r.LoanTenure = NoLoanTenure
	} else if r.LoanTenure == "" {
		r.LoanTenure = NoLoanTenure
	}
	return r
}

// Validate checks the fields used in arithmetic.
func (r Request) Validate() error {
	if r.EnterpriseSize == "" {
		return dErrors.Field(dErrors.CodeInvalidInput, "enterprise_size", "enterprise size is required")
	}
	if !r.EnterpriseSize.IsValid() {
		return dErrors.Field(dErrors.CodeInvalidInput, "enterprise_size", "unsupported enterprise size")
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"plant_machinery", r.PlantMachinery},
		{"building_civil_work", r.BuildingCivilWork},
		{"land_cost", r.LandCost},
		{"term_loan_amount", r.TermLoanAmount},
		{"sgst_paid", r.SGSTPaid},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return dErrors.Field(dErrors.CodeInvalidInput, a.field, "amount must be non-negative")
		}
		if err := checkAmount(a.field, a.value); err != nil {
			return err
		}
	}
	return nil
}

// Result holds the four subsidy components and their total, each rounded to
// two decimal places. TotalSubsidy is the sum of the rounded components.
type Result struct {
	CapitalInvestmentSubsidy decimal.Decimal
	StampDutyExemption       decimal.Decimal
	InterestSubsidy          decimal.Decimal
	TaxReimbursement         decimal.Decimal
	TotalSubsidy             decimal.Decimal
}

// Equal compares results component by component.
func (r Result) Equal(o Result) bool {
	return r.CapitalInvestmentSubsidy.Equal(o.CapitalInvestmentSubsidy) &&
		r.StampDutyExemption.Equal(o.StampDutyExemption) &&
		r.InterestSubsidy.Equal(o.InterestSubsidy) &&
		r.TaxReimbursement.Equal(o.TaxReimbursement) &&
		r.TotalSubsidy.Equal(o.TotalSubsidy)
}
