package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsidy/internal/subsidy/calculator"
	dErrors "subsidy/pkg/domain-errors"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"missing", ``, "0", false},
		{"null", `null`, "0", false},
		{"integer", `1500000`, "1500000", false},
		{"fraction", `333.33`, "333.33", false},
		{"numeric string", `" 250000.50 "`, "250000.5", false},
		{"empty string", `""`, "0", false},
		{"text", `"ten lakh"`, "", true},
		{"boolean", `true`, "", true},
		{"object", `{"v":1}`, "", true},
		{"tiny exponent", `"1e-50000000"`, "", true},
		{"huge exponent number", `1e400`, "", true},
		{"too many digits", strings.Repeat("9", 100), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount("plant_machinery", json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				assert.Equal(t, "plant_machinery", dErrors.FieldOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{``, false, false},
		{`true`, true, false},
		{`false`, false, false},
		{`"yes"`, true, false},
		{`"YES"`, true, false},
		{`"no"`, false, false},
		{`" y "`, true, false},
		{`"maybe"`, false, true},
		{`1`, false, true},
	}
	for _, tt := range tests {
		t.Run("raw "+tt.raw, func(t *testing.T) {
			got, err := parseFlag("land_owned", json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "land_owned", dErrors.FieldOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateRequestValidate(t *testing.T) {
	t.Run("parses and trims", func(t *testing.T) {
		req := &CalculateRequest{
			Subdivision:    "  Hansi ",
			Name:           " Asha Verma ",
			EnterpriseSize: " MICRO ",
			PlantMachinery: json.RawMessage(`"100000"`),
			LandOwned:      json.RawMessage(`"no"`),
			LandCost:       json.RawMessage(`500000`),
		}
		require.NoError(t, req.Validate())

		parsed := req.Parsed()
		assert.Equal(t, "Hansi", parsed.Subdivision)
		assert.Equal(t, "Asha Verma", parsed.Name)
		assert.Equal(t, calculator.SizeMicro, parsed.EnterpriseSize)
		assert.False(t, parsed.LandOwned)
		assert.True(t, parsed.PlantMachinery.Equal(decimal.NewFromInt(100000)))
	})

	t.Run("unknown size is accepted as other", func(t *testing.T) {
		req := &CalculateRequest{Subdivision: "Hansi", EnterpriseSize: "cottage"}
		require.NoError(t, req.Validate())
		assert.Equal(t, calculator.SizeOther, req.Parsed().EnterpriseSize)
	})

	t.Run("accepts subdistrict alias", func(t *testing.T) {
		req := &CalculateRequest{Subdistrict: " Hansi ", EnterpriseSize: "small"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Hansi", req.Parsed().Subdivision)
	})

	t.Run("requires subdivision", func(t *testing.T) {
		req := &CalculateRequest{EnterpriseSize: "small"}
		err := req.Validate()
		assert.Equal(t, "subdivision", dErrors.FieldOf(err))
	})

	t.Run("bounds text fields", func(t *testing.T) {
		req := &CalculateRequest{Subdivision: "Hansi", EnterpriseSize: "small", Name: strings.Repeat("a", 201)}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "name", dErrors.FieldOf(err))
	})

	t.Run("negative land cost is ignored when land is not owned", func(t *testing.T) {
		req := &CalculateRequest{
			Subdivision:    "Hansi",
			EnterpriseSize: "small",
			LandOwned:      json.RawMessage(`"no"`),
			LandCost:       json.RawMessage(`-5`),
		}
		require.NoError(t, req.Validate())
	})

	t.Run("negative land cost is rejected when land is owned", func(t *testing.T) {
		req := &CalculateRequest{
			Subdivision:    "Hansi",
			EnterpriseSize: "small",
			LandOwned:      json.RawMessage(`"yes"`),
			LandCost:       json.RawMessage(`-5`),
		}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "land_cost", dErrors.FieldOf(err))
	})

	t.Run("out of range amount names the field", func(t *testing.T) {
		req := &CalculateRequest{
			Subdivision:       "Hansi",
			EnterpriseSize:    "small",
			PlantMachinery:    json.RawMessage(`"1"`),
			BuildingCivilWork: json.RawMessage(`"1e-50000000"`),
		}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "building_civil_work", dErrors.FieldOf(err))
	})

	t.Run("nil request", func(t *testing.T) {
		var req *CalculateRequest
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeBadRequest))
	})
}
