package zone

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "subsidy/pkg/domain-errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	assert.True(t, table.LandValueRate().Equal(d("7")))
	require.Len(t, table.Profiles(), 4)

	cases := []struct {
		code         Code
		sgstInitial  string
		sgstExtended string
		stampDuty    string
		interest     string
		years        int
	}{
		{CodeA, "50", "25", "0", "5", 5},
		{CodeB, "60", "30", "0.60", "5", 5},
		{CodeC, "70", "30", "0.75", "6", 7},
		{CodeD, "75", "35", "1.00", "6", 7},
	}
	for _, tc := range cases {
		t.Run(tc.code.String(), func(t *testing.T) {
			p, err := table.Profile(tc.code)
			require.NoError(t, err)
			assert.True(t, p.SGSTInitialRate.Equal(d(tc.sgstInitial)))
			assert.True(t, p.SGSTExtendedRate.Equal(d(tc.sgstExtended)))
			assert.True(t, p.StampDutyRate.Equal(d(tc.stampDuty)))
			assert.True(t, p.InterestRate.Equal(d(tc.interest)))
			assert.Equal(t, tc.years, p.InterestYears)
			assert.True(t, p.CapitalSubsidyRate.Equal(d("15")))
			assert.True(t, p.CapitalSubsidyCap.Equal(d("2000000")))
			assert.True(t, p.InterestSubsidyCapPerYear.Equal(d("2000000")))
		})
	}
}

func TestProfileUnknownCode(t *testing.T) {
	_, err := MustDefault().Profile(Code("Z"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "zone", dErrors.FieldOf(err))
}

func TestParseCode(t *testing.T) {
	c, err := ParseCode("  b ")
	require.NoError(t, err)
	assert.Equal(t, CodeB, c)

	_, err = ParseCode("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseCode("E")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

const zoneRowTemplate = `
  - code: %s
    sgst_initial_rate: 50
    sgst_initial_years: 5
    sgst_extended_rate: 25
    sgst_extended_years: 3
    stamp_duty_rate: 0
    interest_rate: %s
    interest_years: 5
    capital_subsidy_rate: 15
    capital_subsidy_cap: 2000000
    interest_subsidy_cap_per_year: 2000000`

func zoneRow(code string) string {
	return fmt.Sprintf(zoneRowTemplate, code, "5")
}

func TestParseRejectsBrokenTables(t *testing.T) {
	t.Run("custom file parses", func(t *testing.T) {
		yml := "land_value_rate: 7\nzones:" + zoneRow("A") + zoneRow("B") + zoneRow("C") + zoneRow("D")
		table, err := Parse([]byte(yml))
		require.NoError(t, err)
		p, err := table.Profile(CodeD)
		require.NoError(t, err)
		assert.True(t, p.InterestRate.Equal(d("5")))
	})

	t.Run("missing zone", func(t *testing.T) {
		yml := "land_value_rate: 7\nzones:" + zoneRow("A") + zoneRow("B") + zoneRow("C")
		_, err := Parse([]byte(yml))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing profile for zone D")
	})

	t.Run("duplicate zone", func(t *testing.T) {
		yml := "land_value_rate: 7\nzones:" + zoneRow("A") + zoneRow("a") + zoneRow("B") + zoneRow("C") + zoneRow("D")
		_, err := Parse([]byte(yml))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate profile for zone A")
	})

	t.Run("negative rate", func(t *testing.T) {
		yml := "land_value_rate: 7\nzones:" + zoneRow("A") + zoneRow("B") + zoneRow("C") +
			fmt.Sprintf(zoneRowTemplate, "D", "-1")
		_, err := Parse([]byte(yml))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "interest_rate", dErrors.FieldOf(err))
	})

	t.Run("negative land value rate", func(t *testing.T) {
		yml := "land_value_rate: -7\nzones:" + zoneRow("A") + zoneRow("B") + zoneRow("C") + zoneRow("D")
		_, err := Parse([]byte(yml))
		require.Error(t, err)
		assert.Equal(t, "land_value_rate", dErrors.FieldOf(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("zones: [this is: not valid"))
		require.Error(t, err)
	})
}
