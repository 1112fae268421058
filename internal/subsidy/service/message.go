package service

import (
	"github.com/shopspring/decimal"

	"subsidy/internal/delivery"
	"subsidy/internal/mailer"
	"subsidy/internal/report"
	"subsidy/internal/subsidy/calculator"
)

func mailerMessage(to string, doc report.Document, pdf []byte) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: report.EmailSubject,
		Body:    report.EmailBody(doc),
		Attachments: []mailer.Attachment{{
			Name:        report.FileName,
			ContentType: report.ContentType,
			Data:        pdf,
		}},
	}
}

// dedupeKey identifies the same report for the same recipient. Two
// submissions that differ in any displayed field produce different keys.
func dedupeKey(out *Outcome) string {
	r := out.Request
	return delivery.Key(r.Email,
		"zone="+out.Zone.String(),
		"name="+r.Name,
		"organization="+r.OrganizationName,
		"subdivision="+r.Subdivision,
		"size="+r.EnterpriseSize.String(),
		"business="+r.BusinessNature,
		"industry="+r.IndustryType,
		fixed("plant", r.PlantMachinery),
		fixed("building", r.BuildingCivilWork),
		fixed("land", r.LandCost),
		fixed("loan", r.TermLoanAmount),
		"tenure="+r.LoanTenure,
		fixed("sgst", r.SGSTPaid),
		fixed("total", out.Result.TotalSubsidy),
	)
}

func fixed(name string, d decimal.Decimal) string {
	return name + "=" + d.StringFixed(calculator.Places)
}
