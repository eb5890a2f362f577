package validate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// DefaultMasterTable is where LoadMaster puts the finished records.
const DefaultMasterTable = "route_performance"

// masterTableColumns is the subset of the master file the analyses read.
var masterTableColumns = []string{
	"route", "month", "aircraft_type", "seats", "passengers",
	"revenue", "cost", "profit", "profit_margin", "opportunity_score",
}

func createMasterSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
	route TEXT NOT NULL,
	month TEXT NOT NULL,
	aircraft_type TEXT,
	seats INTEGER,
	passengers DOUBLE PRECISION,
	revenue DOUBLE PRECISION,
	cost DOUBLE PRECISION,
	profit DOUBLE PRECISION,
	profit_margin DOUBLE PRECISION,
	opportunity_score DOUBLE PRECISION
)`, table)
}

func nullArg(v core.Nullable) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// LoadMaster replaces table with the finished records so analyses can run over it.
func LoadMaster(ctx context.Context, db core.Adapter, table string, records []*core.Record) error {
	if table == "" {
		table = DefaultMasterTable
	}
	if err := db.Exec(ctx, dropSQL(table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if err := db.Exec(ctx, createMasterSQL(table)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.Route, r.Month.String(), r.AircraftType, int64(r.Seats), r.Passengers,
			r.Revenue, r.Cost, r.Profit, nullArg(r.ProfitMargin), nullArg(r.OpportunityScore),
		}
	}
	if err := db.InsertRows(ctx, table, masterTableColumns, rows); err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	return nil
}

// Analysis is a named, canned query over the master table.
type Analysis struct {
	Name        string
	Description string
	query       string // %[1]s is the table name
}

// SQL returns the query text for table.
func (a Analysis) SQL(table string) string {
	return fmt.Sprintf(a.query, table)
}

var analyses = []Analysis{
	{
		Name:        "profit_by_route",
		Description: "Total profit per route, most profitable first",
		query: `SELECT route, SUM(profit) AS total_profit
FROM %[1]s
GROUP BY route
ORDER BY total_profit DESC, route`,
	},
	{
		Name:        "top_route_months",
		Description: "The five most profitable route-months",
		query: `SELECT route, month, profit
FROM %[1]s
ORDER BY profit DESC, route, month
LIMIT 5`,
	},
	{
		Name:        "profit_by_aircraft",
		Description: "Total and average monthly profit per aircraft type",
		query: `SELECT aircraft_type,
	SUM(profit) AS total_profit,
	AVG(profit) AS avg_profit_per_month
FROM %[1]s
GROUP BY aircraft_type
ORDER BY total_profit DESC, aircraft_type`,
	},
	{
		Name:        "load_factor_by_aircraft",
		Description: "Average passengers over configured seats per aircraft type",
		query: `SELECT aircraft_type,
	AVG(passengers) AS avg_passengers,
	AVG(seats) AS avg_seats,
	AVG(passengers) * 1.0 / NULLIF(AVG(seats), 0) AS load_factor_proxy
FROM %[1]s
GROUP BY aircraft_type
ORDER BY load_factor_proxy DESC, aircraft_type`,
	},
	{
		Name:        "profit_per_seat",
		Description: "Profit per configured seat per aircraft type",
		query: `SELECT aircraft_type,
	SUM(profit) AS total_profit,
	SUM(seats) AS total_seats_configured,
	SUM(profit) * 1.0 / NULLIF(SUM(seats), 0) AS profit_per_seat_proxy
FROM %[1]s
GROUP BY aircraft_type
ORDER BY profit_per_seat_proxy DESC, aircraft_type`,
	},
	{
		Name:        "monthly_profit_by_aircraft",
		Description: "Profit per aircraft type per month",
		query: `SELECT aircraft_type, month, SUM(profit) AS monthly_profit
FROM %[1]s
GROUP BY aircraft_type, month
ORDER BY aircraft_type, month`,
	},
	{
		Name:        "aircraft_mix",
		Description: "Months each route operated with each aircraft type",
		query: `SELECT route, aircraft_type, COUNT(*) AS months_operated
FROM %[1]s
GROUP BY route, aircraft_type
ORDER BY route, aircraft_type`,
	},
	{
		Name:        "revenue_growth",
		Description: "Month-over-month revenue growth per route",
		query: `SELECT route, month, revenue,
	LAG(revenue) OVER (PARTITION BY route ORDER BY month) AS revenue_prev,
	(revenue - LAG(revenue) OVER (PARTITION BY route ORDER BY month))
		/ NULLIF(LAG(revenue) OVER (PARTITION BY route ORDER BY month), 0) AS revenue_growth
FROM %[1]s
ORDER BY route, month`,
	},
	{
		Name:        "top_opportunities",
		Description: "Routes ranked by opportunity score",
		query: `SELECT route, aircraft_type, MAX(opportunity_score) AS opportunity_score, SUM(profit) AS total_profit
FROM %[1]s
GROUP BY route, aircraft_type
ORDER BY opportunity_score DESC, route`,
	},
}

// Analyses returns the canned analyses sorted by name.
func Analyses() []Analysis {
	out := append([]Analysis(nil), analyses...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupAnalysis finds a canned analysis by name.
func LookupAnalysis(name string) (Analysis, bool) {
	for _, a := range analyses {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Analysis{}, false
}

// UnknownAnalysisError is returned for an analysis name that does not exist.
type UnknownAnalysisError struct {
	Name      string
	Available []string
}

func (e *UnknownAnalysisError) Error() string {
	return fmt.Sprintf("unknown analysis %q\nAvailable analyses: %s", e.Name, strings.Join(e.Available, ", "))
}

// Result is a fully materialized query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// RunAnalysis executes the named analysis over table.
func RunAnalysis(ctx context.Context, db core.Adapter, name, table string, logger *slog.Logger) (*Result, error) {
	a, ok := LookupAnalysis(name)
	if !ok {
		names := make([]string, 0, len(analyses))
		for _, known := range Analyses() {
			names = append(names, known.Name)
		}
		return nil, &UnknownAnalysisError{Name: name, Available: names}
	}
	if table == "" {
		table = DefaultMasterTable
	}
	if logger != nil {
		logger.Debug("running analysis", slog.String("analysis", a.Name), slog.String("table", table))
	}
	return Query(ctx, db, a.SQL(table))
}

// Query runs sqlStr and collects every row. []byte values become strings.
func Query(ctx context.Context, db core.Adapter, sqlStr string) (*Result, error) {
	rows, err := db.Query(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
