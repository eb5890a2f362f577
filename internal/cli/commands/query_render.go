package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/leapstack-labs/routeprofit/internal/validate"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

func renderResult(w io.Writer, name string, result *validate.Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, name, result)
	case "csv":
		return renderCSV(w, result)
	case "md", "markdown":
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

func renderTable(w io.Writer, result *validate.Result) error {
	if len(result.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, values := range result.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
	return nil
}

func renderJSON(w io.Writer, name string, result *validate.Result) error {
	out := output.QueryOutput{
		Analysis: name,
		Columns:  result.Columns,
		Rows:     make([]map[string]any, len(result.Rows)),
		RowCount: len(result.Rows),
	}
	for i, values := range result.Rows {
		row := make(map[string]any, len(values))
		for j, col := range result.Columns {
			row[col] = values[j]
		}
		out.Rows[i] = row
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderCSV(w io.Writer, result *validate.Result) error {
	// Header
	_, _ = fmt.Fprintln(w, strings.Join(result.Columns, ","))

	// Rows
	for _, values := range result.Rows {
		cells := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			cells[i] = escapeCSV(formatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, result *validate.Result) error {
	if len(result.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(result.Columns, " | "))
	// Separator
	seps := make([]string, len(result.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for _, values := range result.Rows {
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatValue(v)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

// formatValue renders a SQL value for display. Floats are rounded to four decimals.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(math.Round(x*1e4)/1e4, 'f', -1, 64)
	case float32:
		return formatValue(float64(x))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNullable(v core.Nullable) string {
	if !v.Valid {
		return "NULL"
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
