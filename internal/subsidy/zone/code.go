package zone

import (
	"strings"

	dErrors "subsidy/pkg/domain-errors"
)

// Code identifies a zone classification.
// Invariant: one of the supported codes A through D.
//
// Usage: construct via ParseCode at trust boundaries (CSV rows, query
// parameters); direct casting bypasses validation.
type Code string

const (
	CodeA Code = "A"
	CodeB Code = "B"
	CodeC Code = "C"
	CodeD Code = "D"
)

// validCodes is the single source of truth for supported zones.
var validCodes = map[Code]bool{
	CodeA: true,
	CodeB: true,
	CodeC: true,
	CodeD: true,
}

// Codes returns the supported codes in order.
func Codes() []Code {
	return []Code{CodeA, CodeB, CodeC, CodeD}
}

// ParseCode constructs a Code from external input, ignoring case and
// surrounding whitespace.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.Field(dErrors.CodeInvalidInput, "zone", "zone cannot be empty")
	}
	c := Code(strings.ToUpper(s))
	if !c.IsValid() {
		return "", dErrors.Field(dErrors.CodeInvalidInput, "zone", "unknown zone "+s)
	}
	return c, nil
}

// IsValid checks if the code is one of the supported zones.
func (c Code) IsValid() bool {
	return validCodes[c]
}

func (c Code) String() string {
	return string(c)
}
