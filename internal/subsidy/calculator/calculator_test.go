package calculator

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"subsidy/internal/subsidy/zone"
	dErrors "subsidy/pkg/domain-errors"
)

// CalculatorSuite pins the subsidy rules against the embedded zone table.
// Calculate is pure, so every case uses the real table with no doubles.
type CalculatorSuite struct {
	suite.Suite
	table *zone.Table
	calc  *Calculator
}

func TestCalculatorSuite(t *testing.T) {
	suite.Run(t, new(CalculatorSuite))
}

func (s *CalculatorSuite) SetupSuite() {
	s.table = zone.MustDefault()
	s.calc = FromTable(s.table)
}

func (s *CalculatorSuite) profile(code zone.Code) zone.Profile {
	p, err := s.table.Profile(code)
	s.Require().NoError(err)
	return p
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (s *CalculatorSuite) assertAmount(want string, got decimal.Decimal) {
	s.T().Helper()
	s.True(amount(want).Equal(got), "want %s got %s", want, got.StringFixed(2))
}

func baseRequest() Request {
	return Request{
		Name:           "Asha Verma",
		Subdivision:    "Hansi",
		EnterpriseSize: SizeMedium,
	}
}

func (s *CalculatorSuite) TestCapitalSubsidy() {
	s.Run("cap binds for small enterprise", func() {
		req := baseRequest()
		req.EnterpriseSize = SizeSmall
		req.PlantMachinery = amount("20000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeB), req)
		s.Require().NoError(err)
		s.assertAmount("2000000.00", res.CapitalInvestmentSubsidy)
	})

	s.Run("below cap for micro enterprise sums both bases", func() {
		req := baseRequest()
		req.EnterpriseSize = SizeMicro
		req.PlantMachinery = amount("1000000")
		req.BuildingCivilWork = amount("500000")

		res, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.Require().NoError(err)
		s.assertAmount("225000.00", res.CapitalInvestmentSubsidy)
	})

	s.Run("large enterprise is ineligible", func() {
		req := baseRequest()
		req.EnterpriseSize = SizeLarge
		req.PlantMachinery = amount("5000000")
		req.BuildingCivilWork = amount("1000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeD), req)
		s.Require().NoError(err)
		s.assertAmount("0.00", res.CapitalInvestmentSubsidy)
	})

	s.Run("other and medium are ineligible", func() {
		for _, size := range []EnterpriseSize{SizeMedium, SizeOther} {
			req := baseRequest()
			req.EnterpriseSize = size
			req.PlantMachinery = amount("100000")

			res, err := s.calc.Calculate(s.profile(zone.CodeC), req)
			s.Require().NoError(err)
			s.assertAmount("0.00", res.CapitalInvestmentSubsidy)
		}
	})
}

func (s *CalculatorSuite) TestStampDuty() {
	s.Run("no land owned ignores land cost", func() {
		req := baseRequest()
		req.LandOwned = false
		req.LandCost = amount("1000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeD), req)
		s.Require().NoError(err)
		s.assertAmount("0.00", res.StampDutyExemption)
	})

	s.Run("zone A has no exemption", func() {
		req := baseRequest()
		req.LandOwned = true
		req.LandCost = amount("1000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.Require().NoError(err)
		s.assertAmount("0.00", res.StampDutyExemption)
	})

	s.Run("zone B applies rate to assessed land value", func() {
		req := baseRequest()
		req.LandOwned = true
		req.LandCost = amount("1000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeB), req)
		s.Require().NoError(err)
		// 0.60 × (7% of 1,000,000)
		s.assertAmount("42000.00", res.StampDutyExemption)
	})

	s.Run("zone D", func() {
		req := baseRequest()
		req.LandOwned = true
		req.LandCost = amount("2500000")

		res, err := s.calc.Calculate(s.profile(zone.CodeD), req)
		s.Require().NoError(err)
		s.assertAmount("175000.00", res.StampDutyExemption)
	})
}

func (s *CalculatorSuite) TestInterestSubsidy() {
	s.Run("cap applies per year before multiplying", func() {
		req := baseRequest()
		req.LoanAvailed = true
		req.TermLoanAmount = amount("100000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.Require().NoError(err)
		// 5,000,000 a year capped to 2,000,000, for 5 years
		s.assertAmount("10000000.00", res.InterestSubsidy)
	})

	s.Run("uncapped zone C", func() {
		req := baseRequest()
		req.LoanAvailed = true
		req.TermLoanAmount = amount("10000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeC), req)
		s.Require().NoError(err)
		s.assertAmount("4200000.00", res.InterestSubsidy)
	})

	s.Run("no loan availed ignores loan amount", func() {
		req := baseRequest()
		req.LoanAvailed = false
		req.TermLoanAmount = amount("10000000")

		res, err := s.calc.Calculate(s.profile(zone.CodeC), req)
		s.Require().NoError(err)
		s.assertAmount("0.00", res.InterestSubsidy)
	})
}

func (s *CalculatorSuite) TestTaxReimbursement() {
	s.Run("initial and extended rates are additive", func() {
		req := baseRequest()
		req.SGSTPaid = amount("100000")

		res, err := s.calc.Calculate(s.profile(zone.CodeB), req)
		s.Require().NoError(err)
		s.assertAmount("90000.00", res.TaxReimbursement)
	})

	s.Run("zone D exceeds the base", func() {
		req := baseRequest()
		req.SGSTPaid = amount("100000")

		res, err := s.calc.Calculate(s.profile(zone.CodeD), req)
		s.Require().NoError(err)
		s.assertAmount("110000.00", res.TaxReimbursement)
	})
}

func (s *CalculatorSuite) TestRounding() {
	s.Run("half rounds away from zero", func() {
		req := baseRequest()
		req.LoanAvailed = true
		req.TermLoanAmount = amount("0.1")

		res, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.Require().NoError(err)
		// 5% of 0.1 for 5 years = 0.025; banker's rounding would give 0.02
		s.assertAmount("0.03", res.InterestSubsidy)
	})

	s.Run("components carry two places", func() {
		req := baseRequest()
		req.SGSTPaid = amount("333.33")

		res, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.Require().NoError(err)
		// 166.665 + 83.3325 = 249.9975
		s.assertAmount("250.00", res.TaxReimbursement)
		s.Equal("250.00", res.TaxReimbursement.StringFixed(2))
	})
}

func (s *CalculatorSuite) TestTotalIsSumOfRoundedComponents() {
	req := Request{
		EnterpriseSize:    SizeMicro,
		PlantMachinery:    amount("1234567.891"),
		BuildingCivilWork: amount("98765.4321"),
		LandOwned:         true,
		LandCost:          amount("765432.19"),
		LoanAvailed:       true,
		TermLoanAmount:    amount("3456789.01"),
		SGSTPaid:          amount("45678.905"),
	}
	for _, code := range zone.Codes() {
		s.Run(code.String(), func() {
			res, err := s.calc.Calculate(s.profile(code), req)
			s.Require().NoError(err)

			sum := res.CapitalInvestmentSubsidy.
				Add(res.StampDutyExemption).
				Add(res.InterestSubsidy).
				Add(res.TaxReimbursement)
			s.True(sum.Equal(res.TotalSubsidy), "total %s != sum %s", res.TotalSubsidy, sum)
			s.LessOrEqual(res.TotalSubsidy.Exponent(), int32(0))
			s.GreaterOrEqual(res.TotalSubsidy.Exponent(), int32(-Places))
		})
	}
}

func (s *CalculatorSuite) TestFullRequest() {
	req := Request{
		EnterpriseSize:    SizeSmall,
		PlantMachinery:    amount("4000000"),
		BuildingCivilWork: amount("1000000"),
		LandOwned:         true,
		LandCost:          amount("1000000"),
		LoanAvailed:       true,
		TermLoanAmount:    amount("8000000"),
		LoanTenure:        "7 years",
		SGSTPaid:          amount("100000"),
	}

	res, err := s.calc.Calculate(s.profile(zone.CodeB), req)
	s.Require().NoError(err)

	s.assertAmount("750000.00", res.CapitalInvestmentSubsidy)
	s.assertAmount("42000.00", res.StampDutyExemption)
	s.assertAmount("2000000.00", res.InterestSubsidy)
	s.assertAmount("90000.00", res.TaxReimbursement)
	s.assertAmount("2882000.00", res.TotalSubsidy)
}

func (s *CalculatorSuite) TestIdempotent() {
	req := Request{
		EnterpriseSize: SizeMicro,
		PlantMachinery: amount("1111111.11"),
		LandOwned:      true,
		LandCost:       amount("222222.22"),
		LoanAvailed:    true,
		TermLoanAmount: amount("3333333.33"),
		SGSTPaid:       amount("44444.44"),
	}
	first, err := s.calc.Calculate(s.profile(zone.CodeC), req)
	s.Require().NoError(err)
	second, err := s.calc.Calculate(s.profile(zone.CodeC), req)
	s.Require().NoError(err)

	s.True(first.Equal(second))
	s.Equal(first.TotalSubsidy.String(), second.TotalSubsidy.String())
}

func (s *CalculatorSuite) TestInvalidInput() {
	s.Run("missing enterprise size", func() {
		req := baseRequest()
		req.EnterpriseSize = ""

		_, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal("enterprise_size", dErrors.FieldOf(err))
	})

	s.Run("unsupported enterprise size", func() {
		req := baseRequest()
		req.EnterpriseSize = EnterpriseSize("huge")

		_, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("negative amount names the field", func() {
		req := baseRequest()
		req.SGSTPaid = amount("-1")

		_, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal("sgst_paid", dErrors.FieldOf(err))
	})

	s.Run("negative land cost ignored when land not owned", func() {
		req := baseRequest()
		req.LandCost = amount("-5")

		_, err := s.calc.Calculate(s.profile(zone.CodeA), req)
		s.NoError(err)
	})

	s.Run("extreme scale is rejected before arithmetic", func() {
		req := baseRequest()
		req.BuildingCivilWork = amount("1e-50000000")

		_, err := s.calc.Calculate(s.profile(zone.CodeB), req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal("building_civil_work", dErrors.FieldOf(err))
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"whole rupees", "2000000", false},
		{"paise", "1234.56", false},
		{"largest exponent", "1e15", false},
		{"finest scale", "0.0000000001", false},
		{"twenty digits", strings.Repeat("9", 20), false},
		{"tiny exponent", "1e-50000000", true},
		{"huge exponent", "1e400", true},
		{"too many digits", strings.Repeat("9", 100), true},
		{"too fine", "0.00000000001", true},
		{"negative is left to Validate", "-1", false},
		{"not a number", "ten lakh", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseAmount("sgst_paid", tt.in)
			if tt.wantErr {
				if !dErrors.HasCode(err, dErrors.CodeInvalidInput) || dErrors.FieldOf(err) != "sgst_paid" {
					t.Fatalf("expected invalid_input on sgst_paid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !d.Equal(decimal.RequireFromString(tt.in)) {
				t.Fatalf("expected %s, got %s", tt.in, d)
			}
		})
	}
}

func TestParseEnterpriseSize(t *testing.T) {
	cases := []struct {
		in   string
		want EnterpriseSize
	}{
		{"Micro", SizeMicro},
		{"  small ", SizeSmall},
		{"SMALL", SizeSmall},
		{"medium", SizeMedium},
		{"Large", SizeLarge},
		{"startup", SizeOther},
		{"small-ish", SizeOther},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseEnterpriseSize(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := ParseEnterpriseSize("   ")
		if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})
}

func TestNormalizedGates(t *testing.T) {
	req := Request{
		LandCost:       decimal.NewFromInt(10),
		TermLoanAmount: decimal.NewFromInt(20),
		LoanTenure:     "5 years",
	}.Normalized()

	if !req.LandCost.IsZero() || !req.TermLoanAmount.IsZero() {
		t.Fatalf("expected gated amounts to be zero, got %s and %s", req.LandCost, req.TermLoanAmount)
	}
	if req.LoanTenure != NoLoanTenure {
		t.Fatalf("expected tenure %q, got %q", NoLoanTenure, req.LoanTenure)
	}
}
