// Package report renders subsidy calculations for people: a PDF document for
// the applicant and the plain-text email that carries it.
package report

import (
	"time"

	"github.com/google/uuid"

	"subsidy/internal/subsidy/calculator"
	"subsidy/internal/subsidy/zone"
)

const (
	// Title heads the PDF and is the email subject.
	ReportTitle = "Subsidy Calculation Report"
	// FileName is the attachment name.
	FileName = "Subsidy_Calculation_Report.pdf"
	// ContentType of the rendered document.
	ContentType = "application/pdf"
)

// Document is everything a report shows.
type Document struct {
	ID          uuid.UUID
	Zone        zone.Code
	Request     calculator.Request
	Result      calculator.Result
	GeneratedAt time.Time
}

// Line is a label/value pair in a report section.
type Line struct {
	Label string
	Value string
}

// InputLines lists the applicant's submission in display order.
func InputLines(doc Document) []Line {
	req := doc.Request
	return []Line{
		{"Name", req.Name},
		{"Organization Name", req.OrganizationName},
		{"State", req.State},
		{"District", req.District},
		{"Subdivision", Title(req.Subdivision)},
		{"Zone", doc.Zone.String()},
		{"Enterprise Size", req.EnterpriseSize.String()},
		{"Business Nature", req.BusinessNature},
		{"Industry Type", req.IndustryType},
		{"Plant & Machinery (Rs)", Amount(req.PlantMachinery)},
		{"Building & Civil Work (Rs)", Amount(req.BuildingCivilWork)},
		{"Land Cost (Rs)", Amount(req.LandCost)},
		{"Term Loan Amount (Rs)", Amount(req.TermLoanAmount)},
		{"Loan Tenure", req.LoanTenure},
		{"SGST Paid (Rs)", Amount(req.SGSTPaid)},
	}
}

// ResultLines lists the subsidy components and total.
func ResultLines(res calculator.Result) []Line {
	return []Line{
		{"Capital Investment Subsidy", Rupees(res.CapitalInvestmentSubsidy)},
		{"Stamp Duty Exemption", Rupees(res.StampDutyExemption)},
		{"Interest Subsidy", Rupees(res.InterestSubsidy)},
		{"SGST Reimbursement", Rupees(res.TaxReimbursement)},
		{"Total Subsidy", Rupees(res.TotalSubsidy)},
	}
}
