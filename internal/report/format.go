package report

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CurrencyPrefix precedes every rendered amount.
const CurrencyPrefix = "Rs."

// Rupees renders an amount with thousands separators and two decimals,
// e.g. Rs.2,000,000.00.
func Rupees(d decimal.Decimal) string {
	return CurrencyPrefix + Amount(d)
}

// Amount renders an amount without the currency prefix. Formatting stays in
// decimal and big.Int so amounts beyond float64/int64 range print exactly.
func Amount(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	_, paise, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + humanize.BigComma(rounded.Truncate(0).BigInt()) + "." + paise
}

// Title title-cases a place name for display. Casers are stateful, so each
// call gets its own.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
