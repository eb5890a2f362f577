// Package export writes the finished route-month master table and its
// summaries to flat files, and reads the master back.
//
// Files ending in .xlsx are written as workbooks; anything else is CSV.
// Undefined metrics are empty cells. Failures to write are reported as
// *core.ExportError. Writes are single-shot with no retry.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/xuri/excelize/v2"
)

// Sheet names used for workbook output.
const (
	MasterSheet       = "master"
	RouteSummarySheet = "route_summary"
	FleetSummarySheet = "fleet_summary"
)

// WriteMaster writes one row per (route, month), sorted by route then month,
// in MasterColumns order. The input slice is not reordered.
func WriteMaster(path string, records []*core.Record) error {
	sorted := append([]*core.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Route != sorted[j].Route {
			return sorted[i].Route < sorted[j].Route
		}
		return sorted[i].Month.Before(sorted[j].Month)
	})
	return write(path, MasterSheet, masterColumns, sorted)
}

// WriteRouteSummary writes one row per route in RouteSummaryColumns order.
func WriteRouteSummary(path string, summaries []core.RouteSummary) error {
	return write(path, RouteSummarySheet, routeSummaryColumns, summaries)
}

// WriteFleetSummary writes one row per aircraft type in FleetSummaryColumns order.
func WriteFleetSummary(path string, summaries []core.FleetSummary) error {
	return write(path, FleetSummarySheet, fleetSummaryColumns, summaries)
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func write[T any](path, sheet string, cols []column[T], rows []T) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return &core.ExportError{Path: path, Err: err}
		}
	}

	var err error
	if isWorkbook(path) {
		err = writeXLSX(path, sheet, cols, rows)
	} else {
		err = writeCSV(path, cols, rows)
	}
	if err != nil {
		return &core.ExportError{Path: path, Err: err}
	}
	return nil
}

func writeCSV[T any](path string, cols []column[T], rows []T) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is operator-provided output
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(names(cols)); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			record[i] = FormatCell(c.value(row))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX[T any](path, sheet string, cols []column[T], rows []T) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header(cols)); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values(cols, row)); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}
