package handler

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"subsidy/internal/subsidy/calculator"
	dErrors "subsidy/pkg/domain-errors"
)

const maxTextLen = 200

// CalculateRequest is the HTTP request body for POST /calculate and
// POST /calculate/report. Amounts accept JSON numbers or numeric strings;
// flags accept booleans or "yes"/"no". Absent amounts are zero.
type CalculateRequest struct {
	Subdivision      string `json:"subdivision"`
	Subdistrict      string `json:"subdistrict"`
	Name             string `json:"name"`
	OrganizationName string `json:"organization_name"`
	State            string `json:"state"`
	District         string `json:"district"`
	Email            string `json:"email"`
	EnterpriseSize   string `json:"enterprise_size"`
	BusinessNature   string `json:"business_nature"`
	IndustryType     string `json:"industry_type"`
	LoanTenure       string `json:"loan_tenure"`

	PlantMachinery    json.RawMessage `json:"plant_machinery"`
	BuildingCivilWork json.RawMessage `json:"building_civil_work"`
	LandOwned         json.RawMessage `json:"land_owned"`
	LandCost          json.RawMessage `json:"land_cost"`
	LoanAvailed       json.RawMessage `json:"loan_availed"`
	TermLoanAmount    json.RawMessage `json:"term_loan_amount"`
	SGSTPaid          json.RawMessage `json:"sgst_paid"`

	// Parsed values (populated by Validate)
	parsed calculator.Request
}

// Validate trims, bounds and parses the request. "subdistrict" is accepted as
// an alias for "subdivision".
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CalculateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	text := []struct {
		field string
		value *string
	}{
		{"subdivision", &r.Subdivision},
		{"subdistrict", &r.Subdistrict},
		{"name", &r.Name},
		{"organization_name", &r.OrganizationName},
		{"state", &r.State},
		{"district", &r.District},
		{"email", &r.Email},
		{"enterprise_size", &r.EnterpriseSize},
		{"business_nature", &r.BusinessNature},
		{"industry_type", &r.IndustryType},
		{"loan_tenure", &r.LoanTenure},
	}
	for _, t := range text {
		*t.value = strings.TrimSpace(*t.value)
		if len(*t.value) > maxTextLen {
			return dErrors.Field(dErrors.CodeValidation, t.field, t.field+" must be at most 200 characters")
		}
	}

	if r.Subdivision == "" {
		r.Subdivision = r.Subdistrict
	}
	if r.Subdivision == "" {
		return dErrors.Field(dErrors.CodeInvalidInput, "subdivision", "subdivision is required")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return dErrors.Field(dErrors.CodeInvalidInput, "email", "email is not a valid address")
		}
	}

	size, err := calculator.ParseEnterpriseSize(r.EnterpriseSize)
	if err != nil {
		return err
	}

	req := calculator.Request{
		Name:             r.Name,
		OrganizationName: r.OrganizationName,
		State:            r.State,
		District:         r.District,
		Subdivision:      r.Subdivision,
		Email:            r.Email,
		BusinessNature:   r.BusinessNature,
		IndustryType:     r.IndustryType,
		EnterpriseSize:   size,
		LoanTenure:       r.LoanTenure,
	}

	amounts := []struct {
		field string
		raw   json.RawMessage
		dst   *decimal.Decimal
	}{
		{"plant_machinery", r.PlantMachinery, &req.PlantMachinery},
		{"building_civil_work", r.BuildingCivilWork, &req.BuildingCivilWork},
		{"land_cost", r.LandCost, &req.LandCost},
		{"term_loan_amount", r.TermLoanAmount, &req.TermLoanAmount},
		{"sgst_paid", r.SGSTPaid, &req.SGSTPaid},
	}
	for _, a := range amounts {
		if *a.dst, err = parseAmount(a.field, a.raw); err != nil {
			return err
		}
	}
	if req.LandOwned, err = parseFlag("land_owned", r.LandOwned); err != nil {
		return err
	}
	if req.LoanAvailed, err = parseFlag("loan_availed", r.LoanAvailed); err != nil {
		return err
	}

	// Gated amounts are ignored, so they are checked after the gates apply.
	if err := req.Normalized().Validate(); err != nil {
		return err
	}
	r.parsed = req
	return nil
}

// Parsed returns the validated domain request.
func (r *CalculateRequest) Parsed() calculator.Request {
	return r.parsed
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// parseAmount accepts a JSON number or a string holding one. Missing, null
// and empty-string values are zero; anything else must be within the
// calculator's amount bounds.
func parseAmount(field string, raw json.RawMessage) (decimal.Decimal, error) {
	if isNull(raw) {
		return decimal.Zero, nil
	}
	text := string(bytes.TrimSpace(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, dErrors.Field(dErrors.CodeInvalidInput, field, field+" must be a number")
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return decimal.Zero, nil
		}
	}
	return calculator.ParseAmount(field, text)
}

var flagWords = map[string]bool{
	"yes":   true,
	"y":     true,
	"true":  true,
	"no":    false,
	"n":     false,
	"false": false,
	"":      false,
}

// parseFlag accepts a JSON boolean or yes/no text. Missing is false.
func parseFlag(field string, raw json.RawMessage) (bool, error) {
	if isNull(raw) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, ok := flagWords[strings.ToLower(strings.TrimSpace(s))]; ok {
			return v, nil
		}
	}
	return false, dErrors.Field(dErrors.CodeInvalidInput, field, field+` must be "yes" or "no"`)
}
