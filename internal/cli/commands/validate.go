package commands

import (
	"fmt"

	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/leapstack-labs/routeprofit/internal/validate"
	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/spf13/cobra"
)

// maxMismatchRows caps the mismatch table in text and markdown output.
const maxMismatchRows = 50

// ValidationError is returned when the SQL cross-check disagrees with the pipeline.
type ValidationError struct {
	Mismatches int
	Missing    int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d mismatched values, %d route-months missing on one side", e.Mismatches, e.Missing)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Cross-check pipeline metrics against SQL",
		Long: `Run the pipeline, load the enriched base columns into a SQL engine and
recompute revenue, cost, profit, margin, lags and growth with set-based SQL
(window functions). Every value is compared with the pipeline's within the
configured tolerance.

Exits non-zero when any value or route-month differs.`,
		Example: `  # Validate with in-memory DuckDB (default)
  routeprofit validate

  # Validate against SQLite with a looser tolerance
  routeprofit validate --target sqlite --tolerance 1e-6

  # Machine-readable report
  routeprofit validate -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd)
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().Float64("tolerance", 0, "Absolute/relative comparison tolerance")

	return cmd
}

func runValidate(cmd *cobra.Command) error {
	c := NewCommandContext(cmd)

	eng, res, err := c.runPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	report, err := eng.Validate(cmd.Context(), res.Records)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	r := c.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(validateOutput(report)); err != nil {
			return err
		}
	} else {
		renderReport(r, report)
	}

	if !report.OK() {
		return &ValidationError{
			Mismatches: len(report.Mismatches),
			Missing:    len(report.MissingInSQL) + len(report.MissingInPipeline),
		}
	}
	return nil
}

func nullablePtr(v core.Nullable) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func validateOutput(report *validate.Report) output.ValidateOutput {
	out := output.ValidateOutput{
		RunID:             report.RunID,
		Engine:            report.Engine,
		Table:             report.Table,
		Tolerance:         report.Tolerance,
		RowsChecked:       report.RowsChecked,
		ValuesChecked:     report.ValuesChecked,
		MissingInSQL:      report.MissingInSQL,
		MissingInPipeline: report.MissingInPipeline,
		Mismatches:        make([]output.MismatchInfo, 0, len(report.Mismatches)),
		OK:                report.OK(),
	}
	for _, m := range report.Mismatches {
		out.Mismatches = append(out.Mismatches, output.MismatchInfo{
			Route:    m.Route,
			Month:    m.Month,
			Metric:   m.Metric,
			Pipeline: nullablePtr(m.Pipeline),
			SQL:      nullablePtr(m.SQL),
		})
	}
	return out
}

func renderReport(r *output.Renderer, report *validate.Report) {
	r.Header(1, "SQL Validation")
	r.KeyValue("Engine", report.Engine)
	r.KeyValue("Table", report.Table)
	r.KeyValue("Tolerance", fmt.Sprintf("%g", report.Tolerance))
	r.KeyValue("Rows checked", output.FormatCount(report.RowsChecked))
	r.KeyValue("Values checked", output.FormatCount(report.ValuesChecked))
	r.Println("")

	for _, key := range report.MissingInSQL {
		r.StatusLine(key, "error", "missing in SQL result")
	}
	for _, key := range report.MissingInPipeline {
		r.StatusLine(key, "error", "missing in pipeline output")
	}

	if len(report.Mismatches) > 0 {
		r.Header(2, fmt.Sprintf("Mismatches (%d)", len(report.Mismatches)))
		rows := make([][]string, 0, min(len(report.Mismatches), maxMismatchRows))
		for i, m := range report.Mismatches {
			if i == maxMismatchRows {
				break
			}
			rows = append(rows, []string{m.Route, m.Month, m.Metric, formatNullable(m.Pipeline), formatNullable(m.SQL)})
		}
		r.Table([]string{"route", "month", "metric", "pipeline", "sql"}, rows)
		if len(report.Mismatches) > maxMismatchRows {
			r.Muted(fmt.Sprintf("... %d more", len(report.Mismatches)-maxMismatchRows))
		}
		return
	}

	if report.OK() {
		r.Success("Pipeline and SQL agree on every value")
	}
}
