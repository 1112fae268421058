package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "subsidy/pkg/domain-errors"
)

const sampleCSV = "State,District,Subdistrict,Zone\nHaryana,Hisar,Hansi,B\nHaryana,Nuh,Nuh,D\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "subdivisions.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--locations", csvPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestZonesCommand(t *testing.T) {
	out, err := execute(t, "zones")
	require.NoError(t, err)
	assert.Contains(t, out, "ZONE")
	assert.Contains(t, out, "2000000.00")

	out, err = execute(t, "zones", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"code": "D"`)
}

func TestResolveCommand(t *testing.T) {
	out, err := execute(t, "resolve", " NUH ")
	require.NoError(t, err)
	assert.Contains(t, out, "zone D")

	_, err = execute(t, "resolve", "Atlantis")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSubdivisionNotFound))
}

func TestCalculateCommand(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "report.pdf")
	out, err := execute(t, "calculate",
		"--subdivision", "hansi", "--size", "Small",
		"--plant", "4000000", "--building", "1000000",
		"--land-owned", "--land-cost", "1000000",
		"--loan-availed", "--loan", "8000000", "--tenure", "7 years",
		"--sgst", "100000", "--out", pdfPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Zone: B")
	assert.Contains(t, out, "Total Subsidy: Rs.2,882,000")

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestCalculateCommandRejectsBadAmount(t *testing.T) {
	_, err := execute(t, "calculate", "--subdivision", "Hansi", "--size", "small", "--sgst", "lots")
	require.Error(t, err)
	assert.Equal(t, "sgst", dErrors.FieldOf(err))
}

func TestCalculateCommandRejectsExtremeScale(t *testing.T) {
	_, err := execute(t, "calculate", "--subdivision", "Hansi", "--size", "small", "--building", "1e-50000000")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Equal(t, "building", dErrors.FieldOf(err))
}

func TestCalculateCommandRequiresFlags(t *testing.T) {
	_, err := execute(t, "calculate", "--subdivision", "Hansi")
	require.Error(t, err)
}
