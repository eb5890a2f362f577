package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleCSV is a raw dataset of three routes over three months.
// JFK-LAX has no aircraft type and relies on the route assignment table.
const SampleCSV = `origin,destination,month,aircraft_type,passengers,avg_fare,competitor_seats
JFK,BOS,2024-01,A220,3500,150,12000
JFK,BOS,2024-02,A220,3800,155,11800
JFK,BOS,2024-03,A220,4100,149,12500
BOS,SEA,2024-01,A321,5200,310,8000
BOS,SEA,2024-02,A321,4900,325,8200
BOS,SEA,2024-03,A321,5600,318,7900
JFK,LAX,2024-01,,4500,420,15000
JFK,LAX,2024-02,,4700,415,15200
JFK,LAX,2024-03,,4300,435,14900
`

// SampleRows is the number of data rows in SampleCSV.
const SampleRows = 9

// WriteFile writes content to name under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteSample writes SampleCSV into a fresh temp directory.
func WriteSample(t testing.TB) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "route_monthly_performance.csv", SampleCSV)
}
