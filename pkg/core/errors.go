package core

import (
	"fmt"
	"strings"
)

// MissingColumnError is returned when the raw input lacks required columns.
type MissingColumnError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Source, strings.Join(e.Columns, ", "))
}

// ParseError is returned when a raw cell cannot be converted to its column type.
type ParseError struct {
	Source string
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d: invalid %s value %q: %v", e.Source, e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateRecordError is returned when a (route, month) pair appears more than once.
type DuplicateRecordError struct {
	Key  RouteMonth
	Rows []int
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate observation for %s (rows %v)", e.Key, e.Rows)
}

// UnknownAircraftTypeError is returned when enrichment cannot resolve aircraft metadata.
type UnknownAircraftTypeError struct {
	Route        string
	AircraftType string
}

func (e *UnknownAircraftTypeError) Error() string {
	if e.AircraftType == "" {
		return fmt.Sprintf("route %s: no aircraft type in input and no route assignment configured", e.Route)
	}
	return fmt.Sprintf("route %s: unknown aircraft type %q", e.Route, e.AircraftType)
}

// UnknownAirportError is returned when a route has no distance and an endpoint
// is missing from the airport table.
type UnknownAirportError struct {
	Route   string
	Airport string
}

func (e *UnknownAirportError) Error() string {
	return fmt.Sprintf("route %s: no distance_miles in input and airport %q has no coordinates", e.Route, e.Airport)
}

// ExportError is returned when the export destination cannot be written.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
