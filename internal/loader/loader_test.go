package loader

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/routeprofit/internal/testutil"
	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoad_Sample(t *testing.T) {
	path := testutil.WriteSample(t)

	table, err := New(Options{}, testutil.NewTestLogger(t)).Load(path)
	require.NoError(t, err)

	require.Len(t, table.Records, testutil.SampleRows)
	assert.Contains(t, table.Columns, ColAircraftType)
	assert.NotContains(t, table.Columns, ColDistanceMiles)

	// Sorted by origin, destination, month.
	first := table.Records[0]
	assert.Equal(t, "BOS", first.Origin)
	assert.Equal(t, "SEA", first.Destination)
	assert.Equal(t, core.Month{Year: 2024, Month: time.January}, first.Month)
	assert.Equal(t, "A321", first.AircraftType)
	assert.InDelta(t, 5200.0, first.Passengers, 0)
	assert.InDelta(t, 310.0, first.AvgFare, 0)
	assert.Equal(t, core.Float(8000), first.CompetitorSeats)
	assert.False(t, first.LoadFactor.Valid)

	var order []string
	for _, r := range table.Records {
		order = append(order, core.RouteID(r.Origin, r.Destination)+" "+r.Month.String())
	}
	assert.Equal(t, []string{
		"BOS-SEA 2024-01", "BOS-SEA 2024-02", "BOS-SEA 2024-03",
		"JFK-BOS 2024-01", "JFK-BOS 2024-02", "JFK-BOS 2024-03",
		"JFK-LAX 2024-01", "JFK-LAX 2024-02", "JFK-LAX 2024-03",
	}, order)
	assert.Empty(t, table.Records[6].AircraftType)
}

func TestLoadCSV_Headers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, rec *core.Record)
	}{
		{
			name:  "trimmed and mixed case headers",
			input: " Origin ,DESTINATION, Month,Passengers , Avg_Fare\nJFK,BOS,2024-01,100,150\n",
			check: func(t *testing.T, rec *core.Record) {
				assert.Equal(t, "JFK", rec.Origin)
				assert.InDelta(t, 150.0, rec.AvgFare, 0)
			},
		},
		{
			name:  "route column replaces origin and destination",
			input: "route,month,passengers,avg_fare\nbos-chs,2024-05-01,90,120\n",
			check: func(t *testing.T, rec *core.Record) {
				assert.Equal(t, "BOS", rec.Origin)
				assert.Equal(t, "CHS", rec.Destination)
				assert.Equal(t, core.Month{Year: 2024, Month: time.May}, rec.Month)
			},
		},
		{
			name:  "thousands separators and optional extras",
			input: "origin,destination,month,passengers,avg_fare,seats_configured,distance_miles,load_factor\nJFK,LAX,3/1/2024,\"4,500\",$420.50,159,\"2,475\",85%\n",
			check: func(t *testing.T, rec *core.Record) {
				assert.InDelta(t, 4500.0, rec.Passengers, 0)
				assert.InDelta(t, 420.5, rec.AvgFare, 0)
				assert.Equal(t, 159, rec.Seats)
				assert.InDelta(t, 2475.0, rec.DistanceMiles, 0)
				require.True(t, rec.LoadFactor.Valid)
				assert.InDelta(t, 0.85, rec.LoadFactor.Float64, 1e-12)
			},
		},
		{
			name:  "blank rows skipped",
			input: "origin,destination,month,passengers,avg_fare\n\n,,,,\nJFK,BOS,2024-01,100,150\n",
			check: func(t *testing.T, rec *core.Record) {
				assert.Equal(t, "BOS", rec.Destination)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadCSV(strings.NewReader(tt.input), "test.csv")
			require.NoError(t, err)
			require.Len(t, table.Records, 1)
			tt.check(t, table.Records[0])
		})
	}
}

func TestLoadCSV_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{
			name:    "all missing reported together",
			input:   "route_name,period\nx,y\n",
			missing: []string{"origin", "destination", "month", "passengers", "avg_fare"},
		},
		{
			name:    "fare only",
			input:   "origin,destination,month,passengers\nJFK,BOS,2024-01,100\n",
			missing: []string{"avg_fare"},
		},
		{
			name:    "route column satisfies endpoints",
			input:   "route,passengers\nJFK-BOS,100\n",
			missing: []string{"month", "avg_fare"},
		},
		{
			name:    "empty input",
			input:   "",
			missing: RequiredColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input), "raw.csv")
			require.Error(t, err)

			var mcErr *core.MissingColumnError
			require.True(t, errors.As(err, &mcErr), "want MissingColumnError, got %T", err)
			assert.Equal(t, tt.missing, mcErr.Columns)
			assert.Equal(t, "raw.csv", mcErr.Source)
		})
	}
}

func TestLoadCSV_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		row    int
		column string
	}{
		{
			name:   "bad month",
			input:  "origin,destination,month,passengers,avg_fare\nJFK,BOS,2024-01,1,1\nJFK,BOS,sometime,1,1\n",
			row:    2,
			column: ColMonth,
		},
		{
			name:   "non numeric passengers",
			input:  "origin,destination,month,passengers,avg_fare\nJFK,BOS,2024-01,lots,1\n",
			row:    1,
			column: ColPassengers,
		},
		{
			name:   "empty fare",
			input:  "origin,destination,month,passengers,avg_fare\nJFK,BOS,2024-01,10,\n",
			row:    1,
			column: ColAvgFare,
		},
		{
			name:   "bad optional competitor seats",
			input:  "origin,destination,month,passengers,avg_fare,competitor_seats\nJFK,BOS,2024-01,10,1,n/a\n",
			row:    1,
			column: ColCompetitorSeats,
		},
		{
			name:   "NaN passengers",
			input:  "origin,destination,month,passengers,avg_fare\nJFK,BOS,2024-01,NaN,150\n",
			row:    1,
			column: ColPassengers,
		},
		{
			name:   "infinite fare",
			input:  "origin,destination,month,passengers,avg_fare\nJFK,BOS,2024-01,100,Inf\n",
			row:    1,
			column: ColAvgFare,
		},
		{
			name:   "infinite optional load factor",
			input:  "origin,destination,month,passengers,avg_fare,load_factor\nJFK,BOS,2024-01,100,150,-Inf\n",
			row:    1,
			column: ColLoadFactor,
		},
		{
			name:   "negative passengers",
			input:  "origin,destination,month,passengers,avg_fare\nJFK,BOS,2024-01,-5,150\n",
			row:    1,
			column: ColPassengers,
		},
		{
			name:   "negative seats",
			input:  "origin,destination,month,passengers,avg_fare,seats\nJFK,BOS,2024-01,100,150,-200\n",
			row:    1,
			column: ColSeats,
		},
		{
			name:   "malformed route",
			input:  "route,month,passengers,avg_fare\nJFKBOS,2024-01,10,1\n",
			row:    1,
			column: ColRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input), "raw.csv")
			require.Error(t, err)

			var pErr *core.ParseError
			require.True(t, errors.As(err, &pErr), "want ParseError, got %T: %v", err, err)
			assert.Equal(t, tt.row, pErr.Row)
			assert.Equal(t, tt.column, pErr.Column)
		})
	}
}

func TestLoadCSV_DuplicateRouteMonth(t *testing.T) {
	input := "origin,destination,month,passengers,avg_fare\n" +
		"JFK,BOS,2024-01,100,150\n" +
		"JFK,BOS,2024-02,100,150\n" +
		"jfk,bos,2024-01-15,120,150\n"

	_, err := LoadCSV(strings.NewReader(input), "raw.csv")
	require.Error(t, err)

	var dupErr *core.DuplicateRecordError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "JFK-BOS", dupErr.Key.Route)
	assert.Equal(t, []int{1, 3}, dupErr.Rows)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New(Options{}, nil).Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input")
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "performance"))
	rows := [][]any{
		{"origin", "destination", "month", "passengers", "avg_fare", "aircraft_type"},
		{"JFK", "BOS", "2024-02", 3800, 155.0, "A220"},
		{"JFK", "BOS", "2024-01", 3500, 150.0, "A220"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("performance", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := New(Options{}, nil).Load(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "2024-01", table.Records[0].Month.String())
	assert.InDelta(t, 3500.0, table.Records[0].Passengers, 0)
	assert.Equal(t, "A220", table.Records[1].AircraftType)

	_, err = New(Options{Sheet: "missing"}, nil).Load(path)
	assert.Error(t, err)
}

func TestLoad_XLSXDateCells(t *testing.T) {
	tests := []struct {
		name     string
		date1904 bool
	}{
		{name: "1900 date system"},
		{name: "1904 date system", date1904: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "raw.xlsx")

			f := excelize.NewFile()
			if tt.date1904 {
				require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &tt.date1904}))
			}
			rows := [][]any{
				{"origin", "destination", "month", "passengers", "avg_fare"},
				{"JFK", "BOS", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 3500, 150.5},
				{"JFK", "BOS", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), 3800, 155},
				{"JFK", "BOS", "2024-03", 4000, 160},
			}
			for i, row := range rows {
				cell, err := excelize.CoordinatesToCellName(1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
			}
			require.NoError(t, f.SaveAs(path))
			require.NoError(t, f.Close())

			table, err := New(Options{}, testutil.NewTestLogger(t)).Load(path)
			require.NoError(t, err)
			require.Len(t, table.Records, 3)

			var months []string
			for _, r := range table.Records {
				months = append(months, r.Month.String())
			}
			assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, months)
			assert.InDelta(t, 150.5, table.Records[0].AvgFare, 0)
		})
	}
}

func TestExcelMonth(t *testing.T) {
	parse := excelMonth(false)

	m, err := parse("45292")
	require.NoError(t, err)
	assert.Equal(t, core.Month{Year: 2024, Month: time.January}, m)

	m, err = parse("Feb 2024")
	require.NoError(t, err)
	assert.Equal(t, core.Month{Year: 2024, Month: time.February}, m)

	_, err = parse("-1")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: " 1,234.5 ", want: 1234.5},
		{in: "$99.90", want: 99.9},
		{in: "50%", want: 0.5},
		{in: "-3", want: -3},
		{in: "1e3", want: 1000},
		{in: "abc", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "+Inf", wantErr: true},
		{in: "-infinity", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
