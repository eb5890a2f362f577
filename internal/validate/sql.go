package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/routeprofit/internal/config"
)

// baseColumns are the enriched inputs loaded for the cross-check, in
// insert order.
var baseColumns = []string{
	"route", "month", "aircraft_type", "seats",
	"distance_miles", "unit_cost", "passengers", "avg_fare",
}

// createBaseSQL uses types every supported engine understands.
func createBaseSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
	route TEXT NOT NULL,
	month TEXT NOT NULL,
	aircraft_type TEXT,
	seats INTEGER,
	distance_miles DOUBLE PRECISION,
	unit_cost DOUBLE PRECISION,
	passengers DOUBLE PRECISION,
	avg_fare DOUBLE PRECISION
)`, table)
}

func dropSQL(table string) string {
	return "DROP TABLE IF EXISTS " + table
}

func sqlFloat(v float64) string {
	return "CAST(" + strconv.FormatFloat(v, 'f', -1, 64) + " AS DOUBLE PRECISION)"
}

// costExpr mirrors the configured cost model as a SQL expression over the
// base columns.
func costExpr(cost config.CostModel) (string, error) {
	switch cost.Model {
	case config.CostModelCASM, "":
		return sqlFloat(cost.FlightsPerMonth) + " * seats * distance_miles * unit_cost", nil
	case config.CostModelFixed:
		return "passengers * " + sqlFloat(cost.CostPerPassenger) +
			" + " + sqlFloat(cost.FlightsPerMonth) + " * " + sqlFloat(cost.CostPerFlight), nil
	default:
		return "", fmt.Errorf("unknown cost model %q", cost.Model)
	}
}

// metricsColumns is the select order of metricsSQL after route and month.
var metricsColumns = []string{
	"revenue", "cost", "profit", "profit_margin",
	"lag_revenue", "lag_profit", "lag_passengers",
	"revenue_growth", "profit_growth", "passenger_growth",
}

// metricsSQL recomputes financials and month-over-month growth with a
// window over each route's months.
func metricsSQL(table string, cost config.CostModel) (string, error) {
	costSQL, err := costExpr(cost)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `WITH financials AS (
	SELECT
		route,
		month,
		passengers,
		passengers * avg_fare AS revenue,
		%s AS cost
	FROM %s
),
profits AS (
	SELECT route, month, passengers, revenue, cost, revenue - cost AS profit
	FROM financials
),
lagged AS (
	SELECT
		route,
		month,
		passengers,
		revenue,
		cost,
		profit,
		profit / NULLIF(revenue, 0) AS profit_margin,
		LAG(revenue) OVER (PARTITION BY route ORDER BY month) AS lag_revenue,
		LAG(profit) OVER (PARTITION BY route ORDER BY month) AS lag_profit,
		LAG(passengers) OVER (PARTITION BY route ORDER BY month) AS lag_passengers
	FROM profits
)
SELECT
	route,
	month,
	revenue,
	cost,
	profit,
	profit_margin,
	lag_revenue,
	lag_profit,
	lag_passengers,
	(revenue - lag_revenue) / NULLIF(lag_revenue, 0) AS revenue_growth,
	(profit - lag_profit) / NULLIF(lag_profit, 0) AS profit_growth,
	(passengers - lag_passengers) / NULLIF(lag_passengers, 0) AS passenger_growth
FROM lagged
ORDER BY route, month`, costSQL, table)
	return b.String(), nil
}
