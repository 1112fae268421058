package location

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"subsidy/internal/subsidy/zone"
	dErrors "subsidy/pkg/domain-errors"
)

// Column headers recognised in the reference CSV. Matching ignores case and
// surrounding whitespace.
const (
	columnSubdistrict = "subdistrict"
	columnSubdivision = "subdivision"
	columnZone        = "zone"
	columnDistrict    = "district"
	columnState       = "state"
)

// CSVSource reads subdivision/zone pairs from a CSV file with a header row
// containing at least a Subdistrict (or Subdivision) column and a Zone column.
type CSVSource struct {
	path string
	open func() (io.ReadCloser, error)
}

// NewCSVSource reads from a file on disk.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{
		path: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewCSVReaderSource reads from an already open reader, mainly for tests and
// embedded datasets.
func NewCSVReaderSource(name string, r io.Reader) *CSVSource {
	return &CSVSource{
		path: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Load parses every row. A row naming an unknown zone fails the whole load.
func (s *CSVSource) Load(ctx context.Context) ([]Entry, error) {
	f, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open locations %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read locations header %s: %w", s.path, err)
	}
	cols := indexColumns(header)
	subIdx, ok := cols[columnSubdistrict]
	if !ok {
		subIdx, ok = cols[columnSubdivision]
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "locations file missing Subdistrict or Subdivision column")
	}
	zoneIdx, ok := cols[columnZone]
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "locations file missing Zone column")
	}

	var entries []Entry
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read locations %s line %d: %w", s.path, line, err)
		}
		name := field(record, subIdx)
		if strings.TrimSpace(name) == "" {
			continue
		}
		code, err := zone.ParseCode(field(record, zoneIdx))
		if err != nil {
			return nil, fmt.Errorf("locations %s line %d: %w", s.path, line, err)
		}
		entries = append(entries, Entry{
			Subdivision: name,
			District:    strings.TrimSpace(fieldByName(record, cols, columnDistrict)),
			State:       strings.TrimSpace(fieldByName(record, cols, columnState)),
			Zone:        code,
		})
	}
	return entries, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func fieldByName(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok {
		return ""
	}
	return field(record, idx)
}
