package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"subsidy/internal/subsidy/calculator"
	"subsidy/internal/subsidy/location"
	"subsidy/internal/subsidy/service"
	"subsidy/internal/subsidy/zone"
)

// CalculateResponse is the HTTP response for POST /calculate.
type CalculateResponse struct {
	Status       string           `json:"status"`
	Zone         string           `json:"zone"`
	ReportID     string           `json:"report_id"`
	Delivery     string           `json:"delivery"`
	Location     LocationResponse `json:"location"`
	Result       ResultResponse   `json:"result"`
	CalculatedAt time.Time        `json:"calculated_at"`
}

// ResultResponse carries amounts as JSON numbers with exactly two decimals.
type ResultResponse struct {
	CapitalInvestmentSubsidy json.Number `json:"capital_investment_subsidy"`
	StampDutyExemption       json.Number `json:"stamp_duty_exemption"`
	InterestSubsidy          json.Number `json:"interest_subsidy"`
	TaxReimbursement         json.Number `json:"tax_reimbursement"`
	TotalSubsidy             json.Number `json:"total_subsidy"`
}

// LocationResponse is the HTTP response for GET /locations/resolve.
type LocationResponse struct {
	Subdivision string `json:"subdivision"`
	District    string `json:"district,omitempty"`
	State       string `json:"state,omitempty"`
	Zone        string `json:"zone"`
}

// ZoneResponse is one zone profile. Rates are percents.
type ZoneResponse struct {
	Code                      string      `json:"code"`
	SGSTInitialRate           json.Number `json:"sgst_initial_rate"`
	SGSTInitialYears          int         `json:"sgst_initial_years"`
	SGSTExtendedRate          json.Number `json:"sgst_extended_rate"`
	SGSTExtendedYears         int         `json:"sgst_extended_years"`
	StampDutyRate             json.Number `json:"stamp_duty_rate"`
	InterestRate              json.Number `json:"interest_rate"`
	InterestYears             int         `json:"interest_years"`
	CapitalSubsidyRate        json.Number `json:"capital_subsidy_rate"`
	CapitalSubsidyCap         json.Number `json:"capital_subsidy_cap"`
	InterestSubsidyCapPerYear json.Number `json:"interest_subsidy_cap_per_year"`
}

// ZonesResponse is the HTTP response for GET /zones.
type ZonesResponse struct {
	Zones []ZoneResponse `json:"zones"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(calculator.Places))
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func FromResult(res calculator.Result) ResultResponse {
	return ResultResponse{
		CapitalInvestmentSubsidy: money(res.CapitalInvestmentSubsidy),
		StampDutyExemption:       money(res.StampDutyExemption),
		InterestSubsidy:          money(res.InterestSubsidy),
		TaxReimbursement:         money(res.TaxReimbursement),
		TotalSubsidy:             money(res.TotalSubsidy),
	}
}

func FromEntry(e location.Entry) LocationResponse {
	return LocationResponse{
		Subdivision: e.Subdivision,
		District:    e.District,
		State:       e.State,
		Zone:        e.Zone.String(),
	}
}

func FromOutcome(out *service.Outcome) *CalculateResponse {
	return &CalculateResponse{
		Status:       "success",
		Zone:         out.Zone.String(),
		ReportID:     out.ReportID.String(),
		Delivery:     string(out.Delivery),
		Location:     FromEntry(out.Location),
		Result:       FromResult(out.Result),
		CalculatedAt: out.CalculatedAt,
	}
}

func FromProfile(p zone.Profile) ZoneResponse {
	return ZoneResponse{
		Code:                      p.Code.String(),
		SGSTInitialRate:           number(p.SGSTInitialRate),
		SGSTInitialYears:          p.SGSTInitialYears,
		SGSTExtendedRate:          number(p.SGSTExtendedRate),
		SGSTExtendedYears:         p.SGSTExtendedYears,
		StampDutyRate:             number(p.StampDutyRate),
		InterestRate:              number(p.InterestRate),
		InterestYears:             p.InterestYears,
		CapitalSubsidyRate:        number(p.CapitalSubsidyRate),
		CapitalSubsidyCap:         money(p.CapitalSubsidyCap),
		InterestSubsidyCapPerYear: money(p.InterestSubsidyCapPerYear),
	}
}
