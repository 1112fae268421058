// Package events publishes anonymised calculation events for downstream
// analytics. Events carry no applicant identity or contact details.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"subsidy/internal/subsidy/calculator"
	"subsidy/internal/subsidy/zone"
)

// TypeCalculated is the event type header value.
const TypeCalculated = "subsidy.calculated"

// Calculated records one successful calculation.
type Calculated struct {
	ReportID       uuid.UUID       `json:"report_id"`
	Zone           zone.Code       `json:"zone"`
	State          string          `json:"state,omitempty"`
	District       string          `json:"district,omitempty"`
	EnterpriseSize string          `json:"enterprise_size"`
	LandOwned      bool            `json:"land_owned"`
	LoanAvailed    bool            `json:"loan_availed"`
	Capital        decimal.Decimal `json:"capital_investment_subsidy"`
	StampDuty      decimal.Decimal `json:"stamp_duty_exemption"`
	Interest       decimal.Decimal `json:"interest_subsidy"`
	Tax            decimal.Decimal `json:"tax_reimbursement"`
	Total          decimal.Decimal `json:"total_subsidy"`
	CalculatedAt   time.Time       `json:"calculated_at"`
}

// NewCalculated builds an event from a request and its result, dropping
// anything that identifies the applicant.
func NewCalculated(reportID uuid.UUID, code zone.Code, req calculator.Request, res calculator.Result, at time.Time) Calculated {
	return Calculated{
		ReportID:       reportID,
		Zone:           code,
		State:          req.State,
		District:       req.District,
		EnterpriseSize: req.EnterpriseSize.String(),
		LandOwned:      req.LandOwned,
		LoanAvailed:    req.LoanAvailed,
		Capital:        res.CapitalInvestmentSubsidy,
		StampDuty:      res.StampDutyExemption,
		Interest:       res.InterestSubsidy,
		Tax:            res.TaxReimbursement,
		Total:          res.TotalSubsidy,
		CalculatedAt:   at.UTC(),
	}
}

// Publisher emits calculation events.
type Publisher interface {
	Publish(ctx context.Context, evt Calculated) error
	Close() error
}
