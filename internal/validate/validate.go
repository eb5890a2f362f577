// Package validate cross-checks the pipeline's financial and growth metrics
// by recomputing them with set-based SQL on a database engine.
//
// The enriched base columns of every record are loaded into a table, one
// windowed query derives revenue, cost, profit, margin, lags and growth,
// and each value is compared with the procedurally computed one.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Config controls a validation run.
type Config struct {
	Validation config.Validation
	Cost       config.CostModel
}

// Validator runs the SQL cross-check against a connected adapter.
type Validator struct {
	db     core.Adapter
	cfg    Config
	logger *slog.Logger
}

// New creates a Validator. The adapter must already be connected.
// If logger is nil, a discard logger is used.
func New(db core.Adapter, cfg Config, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Validation.Table == "" {
		cfg.Validation.Table = config.DefaultValidationTable
	}
	if cfg.Validation.Tolerance <= 0 {
		cfg.Validation.Tolerance = config.DefaultTolerance
	}
	return &Validator{db: db, cfg: cfg, logger: logger}
}

// Mismatch is one value that differs between the pipeline and SQL.
type Mismatch struct {
	Route    string
	Month    string
	Metric   string
	Pipeline core.Nullable
	SQL      core.Nullable
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %s %s: pipeline=%s sql=%s", m.Route, m.Month, m.Metric, fmtNullable(m.Pipeline), fmtNullable(m.SQL))
}

func fmtNullable(v core.Nullable) string {
	if !v.Valid {
		return "NULL"
	}
	return fmt.Sprintf("%g", v.Float64)
}

// Report is the outcome of a validation run.
type Report struct {
	RunID         string
	Engine        string
	Table         string
	Tolerance     float64
	RowsChecked   int
	ValuesChecked int
	// MissingInSQL and MissingInPipeline list route-month keys that only
	// one side produced.
	MissingInSQL      []string
	MissingInPipeline []string
	Mismatches        []Mismatch
}

// OK reports whether both sides agree on every row and value.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && len(r.MissingInSQL) == 0 && len(r.MissingInPipeline) == 0
}

// Run loads the records' base columns, recomputes the metrics in SQL and
// compares them with the values on the records.
func (v *Validator) Run(ctx context.Context, records []*core.Record) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		Engine:    v.db.DialectName(),
		Table:     v.cfg.Validation.Table,
		Tolerance: v.cfg.Validation.Tolerance,
	}
	logger := v.logger.With(slog.String("run_id", report.RunID), slog.String("engine", report.Engine))

	if err := v.LoadBase(ctx, records); err != nil {
		return nil, err
	}

	query, err := metricsSQL(v.cfg.Validation.Table, v.cfg.Cost)
	if err != nil {
		return nil, err
	}
	got, err := v.queryMetrics(ctx, query)
	if err != nil {
		return nil, err
	}

	want := make(map[string]*core.Record, len(records))
	for _, rec := range records {
		want[rec.Key().String()] = rec
	}

	for key, row := range got {
		rec, ok := want[key]
		if !ok {
			report.MissingInPipeline = append(report.MissingInPipeline, key)
			continue
		}
		report.RowsChecked++
		for _, m := range compareRow(rec, row) {
			report.ValuesChecked++
			if !m.equal(v.cfg.Validation.Tolerance) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Route: rec.Route, Month: rec.Month.String(), Metric: m.metric,
					Pipeline: m.pipeline, SQL: m.sql,
				})
			}
		}
	}
	for key := range want {
		if _, ok := got[key]; !ok {
			report.MissingInSQL = append(report.MissingInSQL, key)
		}
	}

	sort.Strings(report.MissingInSQL)
	sort.Strings(report.MissingInPipeline)
	sort.Slice(report.Mismatches, func(i, j int) bool {
		a, b := report.Mismatches[i], report.Mismatches[j]
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Metric < b.Metric
	})

	logger.Info("validation complete",
		slog.Int("rows", report.RowsChecked),
		slog.Int("values", report.ValuesChecked),
		slog.Int("mismatches", len(report.Mismatches)),
		slog.Bool("ok", report.OK()))
	return report, nil
}

// LoadBase replaces the validation table with the records' enriched base columns.
func (v *Validator) LoadBase(ctx context.Context, records []*core.Record) error {
	table := v.cfg.Validation.Table
	if err := v.db.Exec(ctx, dropSQL(table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if err := v.db.Exec(ctx, createBaseSQL(table)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{
			rec.Route, rec.Month.String(), rec.AircraftType, int64(rec.Seats),
			rec.DistanceMiles, rec.UnitCost, rec.Passengers, rec.AvgFare,
		}
	}
	if err := v.db.InsertRows(ctx, table, baseColumns, rows); err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}

	v.logger.Debug("loaded validation base", slog.String("table", table), slog.Int("rows", len(rows)))
	return nil
}

// sqlRow holds one row of metricsSQL output.
type sqlRow struct {
	route, month string
	values       []core.Nullable // metricsColumns order
}

func (v *Validator) queryMetrics(ctx context.Context, query string) (map[string]*sqlRow, error) {
	rows, err := v.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("recompute metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]*sqlRow)
	for rows.Next() {
		r := &sqlRow{values: make([]core.Nullable, len(metricsColumns))}
		dest := []any{&r.route, &r.month}
		for i := range r.values {
			dest = append(dest, &r.values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		out[r.route+" "+r.month] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	return out, nil
}

type comparison struct {
	metric        string
	pipeline, sql core.Nullable
}

func compareRow(rec *core.Record, row *sqlRow) []comparison {
	pipeline := []core.Nullable{
		core.Float(rec.Revenue),
		core.Float(rec.Cost),
		core.Float(rec.Profit),
		rec.ProfitMargin,
		rec.LagRevenue,
		rec.LagProfit,
		rec.LagPassengers,
		rec.RevenueGrowth,
		rec.ProfitGrowth,
		rec.PassengerGrowth,
	}
	out := make([]comparison, len(metricsColumns))
	for i, name := range metricsColumns {
		out[i] = comparison{metric: name, pipeline: pipeline[i], sql: row.values[i]}
	}
	return out
}

// equal treats two undefined values as equal and compares defined values
// with a tolerance that is absolute near zero and relative elsewhere.
func (c comparison) equal(tol float64) bool {
	if c.pipeline.Valid != c.sql.Valid {
		return false
	}
	if !c.pipeline.Valid {
		return true
	}
	a, b := c.pipeline.Float64, c.sql.Float64
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol*scale
}
