// Package location resolves administrative subdivisions to zone codes.
//
// An Index is built once from a reference dataset and is immutable after
// construction, so it is safe for concurrent use without locking.
package location

import (
	"strings"

	"subsidy/internal/subsidy/zone"
	dErrors "subsidy/pkg/domain-errors"
)

// Entry is one row of the reference dataset.
type Entry struct {
	Subdivision string    `json:"subdivision"`
	District    string    `json:"district,omitempty"`
	State       string    `json:"state,omitempty"`
	Zone        zone.Code `json:"zone"`
}

// Index maps normalized subdivision names to their entry.
type Index struct {
	bySubdivision map[string]Entry
}

// Normalize trims surrounding whitespace and lower-cases a subdivision name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewIndex builds an Index. Entries with a blank subdivision are skipped; for
// duplicate names the first entry wins.
func NewIndex(entries []Entry) *Index {
	m := make(map[string]Entry, len(entries))
	for idx := range entries {
		e := entries[idx]
		key := Normalize(e.Subdivision)
		if key == "" {
			continue
		}
		if _, exists := m[key]; exists {
			continue
		}
		e.Subdivision = strings.TrimSpace(e.Subdivision)
		m[key] = e
	}
	return &Index{bySubdivision: m}
}

// Lookup returns the full entry for a subdivision name.
func (i *Index) Lookup(name string) (Entry, error) {
	e, ok := i.bySubdivision[Normalize(name)]
	if !ok {
		return Entry{}, dErrors.Field(dErrors.CodeSubdivisionNotFound, "subdivision", "subdivision not found")
	}
	return e, nil
}

// Resolve returns the zone code for a subdivision name.
func (i *Index) Resolve(name string) (zone.Code, error) {
	e, err := i.Lookup(name)
	if err != nil {
		return "", err
	}
	return e.Zone, nil
}

// Len returns the number of distinct subdivisions indexed.
func (i *Index) Len() int {
	return len(i.bySubdivision)
}
