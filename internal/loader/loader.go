// Package loader reads the raw route-month performance dataset into records.
//
// CSV and XLSX inputs are accepted. Header names are trimmed and lower-cased,
// required columns are checked up front, and every (route, month) pair must
// be unique. Records are returned sorted by origin, destination and month.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/xuri/excelize/v2"
)

// Column names recognized in the raw input.
const (
	ColRoute           = "route"
	ColOrigin          = "origin"
	ColDestination     = "destination"
	ColMonth           = "month"
	ColPassengers      = "passengers"
	ColAvgFare         = "avg_fare"
	ColAircraftType    = "aircraft_type"
	ColSeats           = "seats"
	ColSeatsConfigured = "seats_configured"
	ColDistanceMiles   = "distance_miles"
	ColCompetitorSeats = "competitor_seats"
	ColLoadFactor      = "load_factor"
)

// RequiredColumns must be present in every input. A route column
// may stand in for origin and destination.
var RequiredColumns = []string{ColOrigin, ColDestination, ColMonth, ColPassengers, ColAvgFare}

// Table is the in-memory result of loading a raw dataset.
type Table struct {
	Source  string
	Columns []string // normalized header, input order
	Records []*core.Record
}

// Options controls how input files are read.
type Options struct {
	// Sheet is the XLSX worksheet to read. Empty means the first sheet.
	Sheet string
}

// Loader reads raw datasets.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Loader. If logger is nil, a discard logger is used.
func New(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{opts: opts, logger: logger}
}

// Load reads the dataset at path, dispatching on the file extension.
func (l *Loader) Load(path string) (*Table, error) {
	var (
		rows  [][]string
		month = core.ParseMonth
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		var date1904 bool
		rows, date1904, err = l.readXLSX(path)
		month = excelMonth(date1904)
	default:
		rows, err = readCSVFile(path)
	}
	if err != nil {
		return nil, err
	}

	table, err := fromRows(path, rows, month)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded dataset",
		slog.String("source", path),
		slog.Int("records", len(table.Records)),
		slog.Any("columns", table.Columns))
	return table, nil
}

// LoadCSV reads CSV data from r. source names the input in errors.
func LoadCSV(r io.Reader, source string) (*Table, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return fromRows(source, rows, core.ParseMonth)
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator-provided input
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readXLSX returns the raw cell values of the configured sheet, so numeric
// cells come back unformatted and date cells as Excel serial numbers.
func (l *Loader) readXLSX(path string) (rows [][]string, date1904 bool, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, false, fmt.Errorf("%s: workbook has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, fmt.Errorf("%s: failed to read sheet %q: %w", path, sheet, err)
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	l.logger.Debug("read worksheet", slog.String("sheet", sheet), slog.Int("rows", len(rows)), slog.Bool("date1904", date1904))
	return rows, date1904, nil
}

// excelMonth parses a month cell that is either an Excel date serial or text.
func excelMonth(date1904 bool) func(string) (core.Month, error) {
	return func(s string) (core.Month, error) {
		if serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				return core.Month{}, fmt.Errorf("invalid Excel date %q: %w", s, err)
			}
			return core.MonthOf(t), nil
		}
		return core.ParseMonth(s)
	}
}

// fromRows builds a Table from a header row followed by data rows.
// parseMonth converts the month cell.
func fromRows(source string, rows [][]string, parseMonth func(string) (core.Month, error)) (*Table, error) {
	if len(rows) == 0 {
		return nil, &core.MissingColumnError{Source: source, Columns: RequiredColumns}
	}

	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = normalizeHeader(name)
		header[i] = name
		if _, seen := index[name]; !seen && name != "" {
			index[name] = i
		}
	}

	if missing := missingColumns(index); len(missing) > 0 {
		return nil, &core.MissingColumnError{Source: source, Columns: missing}
	}

	p := &rowParser{source: source, index: index, parseMonth: parseMonth}
	table := &Table{Source: source, Columns: header}
	firstSeen := make(map[core.RouteMonth]int)

	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rowNum := i + 1
		rec, err := p.parse(rowNum, row)
		if err != nil {
			return nil, err
		}

		key := core.RouteMonth{Route: core.RouteID(rec.Origin, rec.Destination), Month: rec.Month}
		if prev, dup := firstSeen[key]; dup {
			return nil, &core.DuplicateRecordError{Key: key, Rows: []int{prev, rowNum}}
		}
		firstSeen[key] = rowNum
		table.Records = append(table.Records, rec)
	}

	SortRecords(table.Records)
	return table, nil
}

// SortRecords orders records by origin, destination, then month.
func SortRecords(records []*core.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.Destination != b.Destination {
			return a.Destination < b.Destination
		}
		return a.Month.Before(b.Month)
	})
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

func missingColumns(index map[string]int) []string {
	_, hasRoute := index[ColRoute]
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; ok {
			continue
		}
		if hasRoute && (col == ColOrigin || col == ColDestination) {
			continue
		}
		missing = append(missing, col)
	}
	return missing
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// rowParser converts one raw row into a Record.
type rowParser struct {
	source     string
	index      map[string]int
	parseMonth func(string) (core.Month, error)
}

func (p *rowParser) cell(row []string, column string) (string, bool) {
	i, ok := p.index[column]
	if !ok {
		return "", false
	}
	if i >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[i]), true
}

func (p *rowParser) fail(row int, column, value string, err error) error {
	return &core.ParseError{Source: p.source, Row: row, Column: column, Value: value, Err: err}
}

var (
	errEmpty     = errors.New("value is required")
	errNegative  = errors.New("must not be negative")
	errNotFinite = errors.New("must be a finite number")
)

func (p *rowParser) parse(rowNum int, row []string) (*core.Record, error) {
	rec := &core.Record{}

	origin, _ := p.cell(row, ColOrigin)
	destination, _ := p.cell(row, ColDestination)
	if origin == "" || destination == "" {
		if route, ok := p.cell(row, ColRoute); ok && route != "" {
			o, d, found := strings.Cut(route, "-")
			if !found || strings.TrimSpace(o) == "" || strings.TrimSpace(d) == "" {
				return nil, p.fail(rowNum, ColRoute, route, errors.New("want ORIGIN-DEST"))
			}
			origin, destination = o, d
		}
	}
	if origin == "" {
		return nil, p.fail(rowNum, ColOrigin, origin, errEmpty)
	}
	if destination == "" {
		return nil, p.fail(rowNum, ColDestination, destination, errEmpty)
	}
	rec.Origin = strings.ToUpper(strings.TrimSpace(origin))
	rec.Destination = strings.ToUpper(strings.TrimSpace(destination))

	monthStr, _ := p.cell(row, ColMonth)
	month, err := p.parseMonth(monthStr)
	if err != nil {
		return nil, p.fail(rowNum, ColMonth, monthStr, err)
	}
	rec.Month = month

	if rec.Passengers, err = p.required(rowNum, row, ColPassengers); err != nil {
		return nil, err
	}
	if rec.Passengers < 0 {
		raw, _ := p.cell(row, ColPassengers)
		return nil, p.fail(rowNum, ColPassengers, raw, errNegative)
	}
	if rec.AvgFare, err = p.required(rowNum, row, ColAvgFare); err != nil {
		return nil, err
	}

	if v, ok := p.cell(row, ColAircraftType); ok {
		rec.AircraftType = v
	}

	seatsCol := ColSeats
	if _, ok := p.index[seatsCol]; !ok {
		seatsCol = ColSeatsConfigured
	}
	seats, err := p.optional(rowNum, row, seatsCol)
	if err != nil {
		return nil, err
	}
	if seats.Valid && seats.Float64 < 0 {
		raw, _ := p.cell(row, seatsCol)
		return nil, p.fail(rowNum, seatsCol, raw, errNegative)
	}
	if seats.Valid {
		rec.Seats = int(seats.Float64 + 0.5)
	}

	distance, err := p.optional(rowNum, row, ColDistanceMiles)
	if err != nil {
		return nil, err
	}
	rec.DistanceMiles = distance.Float64

	if rec.CompetitorSeats, err = p.optional(rowNum, row, ColCompetitorSeats); err != nil {
		return nil, err
	}
	if rec.LoadFactor, err = p.optional(rowNum, row, ColLoadFactor); err != nil {
		return nil, err
	}

	return rec, nil
}

func (p *rowParser) required(rowNum int, row []string, column string) (float64, error) {
	raw, _ := p.cell(row, column)
	if raw == "" {
		return 0, p.fail(rowNum, column, raw, errEmpty)
	}
	v, err := ParseNumber(raw)
	if err != nil {
		return 0, p.fail(rowNum, column, raw, err)
	}
	return v, nil
}

func (p *rowParser) optional(rowNum int, row []string, column string) (core.Nullable, error) {
	raw, ok := p.cell(row, column)
	if !ok || raw == "" {
		return core.Nullable{}, nil
	}
	v, err := ParseNumber(raw)
	if err != nil {
		return core.Nullable{}, p.fail(rowNum, column, raw, err)
	}
	return core.Float(v), nil
}

// ParseNumber parses a finite decimal number, tolerating thousands separators,
// a leading currency sign and a trailing percent sign (which divides by 100).
// NaN and infinities are rejected.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	if percent {
		v /= 100
	}
	return v, nil
}
