package calculator

import (
	"strings"

	dErrors "subsidy/pkg/domain-errors"
)

// EnterpriseSize is the enterprise classification declared by the applicant.
//
// Usage: construct via ParseEnterpriseSize at trust boundaries; free text that
// is not a known size parses to SizeOther.
type EnterpriseSize string

const (
	SizeMicro  EnterpriseSize = "Micro"
	SizeSmall  EnterpriseSize = "Small"
	SizeMedium EnterpriseSize = "Medium"
	SizeLarge  EnterpriseSize = "Large"
	SizeOther  EnterpriseSize = "Other"
)

var enterpriseSizes = map[string]EnterpriseSize{
	"micro":  SizeMicro,
	"small":  SizeSmall,
	"medium": SizeMedium,
	"large":  SizeLarge,
	"other":  SizeOther,
}

var validSizes = map[EnterpriseSize]bool{
	SizeMicro:  true,
	SizeSmall:  true,
	SizeMedium: true,
	SizeLarge:  true,
	SizeOther:  true,
}

// ParseEnterpriseSize normalizes case and surrounding whitespace. Empty input
// is invalid; unrecognized input is SizeOther.
func ParseEnterpriseSize(s string) (EnterpriseSize, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", dErrors.Field(dErrors.CodeInvalidInput, "enterprise_size", "enterprise size is required")
	}
	if size, ok := enterpriseSizes[key]; ok {
		return size, nil
	}
	return SizeOther, nil
}

// IsValid reports whether s is one of the closed set of sizes.
func (s EnterpriseSize) IsValid() bool {
	return validSizes[s]
}

// CapitalSubsidyEligible reports whether the size qualifies for the capital
// investment subsidy. Only micro and small enterprises do.
func (s EnterpriseSize) CapitalSubsidyEligible() bool {
	return s == SizeMicro || s == SizeSmall
}

func (s EnterpriseSize) String() string {
	return string(s)
}
