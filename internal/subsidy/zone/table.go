package zone

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	dErrors "subsidy/pkg/domain-errors"
)

//go:embed zones.yaml
var defaultTable []byte

// Table is the immutable set of zone profiles.
type Table struct {
	landValueRate decimal.Decimal
	profiles      map[Code]Profile
}

type tableFile struct {
	LandValueRate decimal.Decimal `yaml:"land_value_rate"`
	Zones         []Profile       `yaml:"zones"`
}

// Default returns the embedded rate table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// MustDefault is Default for package-level wiring and tests.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadFile parses a rate table from a YAML file on disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone table: %w", err)
	}
	return Parse(data)
}

// Parse builds a Table from YAML and enforces its invariants: exactly one
// profile per supported code, every code present, no negative figures.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse zone table: %w", err)
	}
	if f.LandValueRate.IsNegative() {
		return nil, dErrors.Field(dErrors.CodeValidation, "land_value_rate", "must be non-negative")
	}

	profiles := make(map[Code]Profile, len(f.Zones))
	for _, p := range f.Zones {
		code, err := ParseCode(string(p.Code))
		if err != nil {
			return nil, err
		}
		p.Code = code
		if _, dup := profiles[code]; dup {
			return nil, dErrors.New(dErrors.CodeValidation, "duplicate profile for zone "+code.String())
		}
		for name, v := range p.decimals() {
			if v.IsNegative() {
				return nil, dErrors.Field(dErrors.CodeValidation, name, "zone "+code.String()+" must be non-negative")
			}
		}
		for name, v := range p.years() {
			if v < 0 {
				return nil, dErrors.Field(dErrors.CodeValidation, name, "zone "+code.String()+" must be non-negative")
			}
		}
		profiles[code] = p
	}
	for _, c := range Codes() {
		if _, ok := profiles[c]; !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "missing profile for zone "+c.String())
		}
	}

	return &Table{landValueRate: f.LandValueRate, profiles: profiles}, nil
}

// Profile returns the profile for code. Unknown codes are invalid input.
func (t *Table) Profile(code Code) (Profile, error) {
	p, ok := t.profiles[code]
	if !ok {
		return Profile{}, dErrors.Field(dErrors.CodeInvalidInput, "zone", "unknown zone "+code.String())
	}
	return p, nil
}

// Profiles returns every profile ordered by code.
func (t *Table) Profiles() []Profile {
	out := make([]Profile, 0, len(t.profiles))
	for _, c := range Codes() {
		out = append(out, t.profiles[c])
	}
	return out
}

// LandValueRate is the percent of declared land cost taken as assessable value.
func (t *Table) LandValueRate() decimal.Decimal {
	return t.landValueRate
}
