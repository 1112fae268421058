// Package calculator computes investment-subsidy entitlements.
//
// Calculate is pure: no I/O, no shared mutable state. The same profile and
// request always produce an identical Result.
package calculator

import (
	"github.com/shopspring/decimal"

	"subsidy/internal/subsidy/zone"
)

// Places is the number of decimal places every monetary output is rounded to.
const Places = 2

// Calculator applies the subsidy rules against a zone profile.
type Calculator struct {
	landValueRate decimal.Decimal
}

// New creates a Calculator. landValueRate is the percent of declared land
// cost taken as its assessable value.
func New(landValueRate decimal.Decimal) *Calculator {
	return &Calculator{landValueRate: landValueRate}
}

// FromTable creates a Calculator using the table's land value rate.
func FromTable(t *zone.Table) *Calculator {
	return New(t.LandValueRate())
}

// Calculate applies the rules in order. Rounding is half away from zero to
// two places per component; the total is the sum of the rounded components.
//
// Rules:
//  1. Capital investment = plant & machinery + building & civil work
//  2. Capital subsidy = min(rate × investment, cap), micro and small only
//  3. Land value = land value rate × land cost (zero unless land is owned)
//  4. Stamp duty exemption = zone stamp duty rate × land value
//  5. Annual interest = term loan × zone interest rate (zero unless a loan was availed)
//  6. Interest subsidy = min(annual interest, yearly cap) × interest years
//  7. Tax reimbursement = SGST paid × initial rate + SGST paid × extended rate
//  8. Total = sum of the above
func (c *Calculator) Calculate(profile zone.Profile, req Request) (Result, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	// Rules 1-2: capital investment subsidy
	capitalInvestment := req.PlantMachinery.Add(req.BuildingCivilWork)
	capitalSubsidy := decimal.Zero
	if req.EnterpriseSize.CapitalSubsidyEligible() {
		capitalSubsidy = decimal.Min(percent(profile.CapitalSubsidyRate, capitalInvestment), profile.CapitalSubsidyCap)
	}

	// Rules 3-4: stamp duty exemption
	landValue := percent(c.landValueRate, req.LandCost)
	stampDuty := profile.StampDutyRate.Mul(landValue)

	// Rules 5-6: interest subsidy, capped per year before multiplying
	annualInterest := percent(profile.InterestRate, req.TermLoanAmount)
	interestSubsidy := decimal.Min(annualInterest, profile.InterestSubsidyCapPerYear).
		Mul(decimal.NewFromInt(int64(profile.InterestYears)))

	// Rule 7: both SGST rates apply to the same base
	taxReimbursement := percent(profile.SGSTInitialRate, req.SGSTPaid).
		Add(percent(profile.SGSTExtendedRate, req.SGSTPaid))

	result := Result{
		CapitalInvestmentSubsidy: capitalSubsidy.Round(Places),
		StampDutyExemption:       stampDuty.Round(Places),
		InterestSubsidy:          interestSubsidy.Round(Places),
		TaxReimbursement:         taxReimbursement.Round(Places),
	}

	// Rule 8
	result.TotalSubsidy = result.CapitalInvestmentSubsidy.
		Add(result.StampDutyExemption).
		Add(result.InterestSubsidy).
		Add(result.TaxReimbursement)

	return result, nil
}

// percent returns rate% of amount. Shift keeps the division exact.
func percent(rate, amount decimal.Decimal) decimal.Decimal {
	return rate.Shift(-2).Mul(amount)
}
