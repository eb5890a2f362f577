package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/xuri/excelize/v2"
)

// ReadMaster loads a master file written by WriteMaster. Every column in
// MasterColumns must be present; extra columns are ignored.
func ReadMaster(path string) ([]*core.Record, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &core.MissingColumnError{Source: path, Columns: MasterColumns}
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, c := range masterColumns {
		if _, ok := index[c.name]; !ok {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return nil, &core.MissingColumnError{Source: path, Columns: missing}
	}

	records := make([]*core.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := &core.Record{}
		for _, c := range masterColumns {
			var cell string
			if i := index[c.name]; i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if err := c.parse(rec, cell); err != nil {
				return nil, &core.ParseError{Source: path, Row: n + 1, Column: c.name, Value: cell, Err: err}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func readRows(path string) ([][]string, error) {
	if isWorkbook(path) {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer func() { _ = f.Close() }()
		return f.GetRows(MasterSheet, excelize.Options{RawCellValue: true})
	}

	f, err := os.Open(path) //nolint:gosec // path is operator-provided input
	if err != nil {
		return nil, fmt.Errorf("failed to open master file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
