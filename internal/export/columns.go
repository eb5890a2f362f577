package export

import (
	"strconv"

	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// column describes one exported field of T. value returns a float64, int,
// string, or nil for an undefined metric. parse is only set for columns
// that ReadMaster restores.
type column[T any] struct {
	name  string
	value func(T) any
	parse func(T, string) error
}

func names[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func header[T any](cols []column[T]) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func values[T any](cols []column[T], row T) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c.value(row)
	}
	return out
}

// MasterColumns is the documented column order of the master file.
var MasterColumns = names(masterColumns)

var masterColumns = []column[*core.Record]{
	textCol("route", func(r *core.Record) *string { return &r.Route }),
	textCol("origin", func(r *core.Record) *string { return &r.Origin }),
	textCol("destination", func(r *core.Record) *string { return &r.Destination }),
	{
		name:  "month",
		value: func(r *core.Record) any { return r.Month.String() },
		parse: func(r *core.Record, s string) (err error) {
			r.Month, err = core.ParseMonth(s)
			return err
		},
	},
	textCol("aircraft_type", func(r *core.Record) *string { return &r.AircraftType }),
	{
		name:  "seats",
		value: func(r *core.Record) any { return r.Seats },
		parse: func(r *core.Record, s string) (err error) {
			if s == "" {
				r.Seats = 0
				return nil
			}
			r.Seats, err = strconv.Atoi(s)
			return err
		},
	},
	floatCol("distance_miles", func(r *core.Record) *float64 { return &r.DistanceMiles }),
	floatCol("unit_cost", func(r *core.Record) *float64 { return &r.UnitCost }),
	floatCol("passengers", func(r *core.Record) *float64 { return &r.Passengers }),
	floatCol("avg_fare", func(r *core.Record) *float64 { return &r.AvgFare }),
	nullCol("competitor_seats", func(r *core.Record) *core.Nullable { return &r.CompetitorSeats }),
	nullCol("load_factor", func(r *core.Record) *core.Nullable { return &r.LoadFactor }),
	floatCol("revenue", func(r *core.Record) *float64 { return &r.Revenue }),
	floatCol("cost", func(r *core.Record) *float64 { return &r.Cost }),
	floatCol("profit", func(r *core.Record) *float64 { return &r.Profit }),
	nullCol("profit_margin", func(r *core.Record) *core.Nullable { return &r.ProfitMargin }),
	nullCol("lag_revenue", func(r *core.Record) *core.Nullable { return &r.LagRevenue }),
	nullCol("lag_profit", func(r *core.Record) *core.Nullable { return &r.LagProfit }),
	nullCol("lag_passengers", func(r *core.Record) *core.Nullable { return &r.LagPassengers }),
	nullCol("revenue_growth", func(r *core.Record) *core.Nullable { return &r.RevenueGrowth }),
	nullCol("profit_growth", func(r *core.Record) *core.Nullable { return &r.ProfitGrowth }),
	nullCol("passenger_growth", func(r *core.Record) *core.Nullable { return &r.PassengerGrowth }),
	nullCol("opportunity_score", func(r *core.Record) *core.Nullable { return &r.OpportunityScore }),
}

func textCol(name string, field func(*core.Record) *string) column[*core.Record] {
	return column[*core.Record]{
		name:  name,
		value: func(r *core.Record) any { return *field(r) },
		parse: func(r *core.Record, s string) error {
			*field(r) = s
			return nil
		},
	}
}

func floatCol(name string, field func(*core.Record) *float64) column[*core.Record] {
	return column[*core.Record]{
		name:  name,
		value: func(r *core.Record) any { return *field(r) },
		parse: func(r *core.Record, s string) error {
			if s == "" {
				*field(r) = 0
				return nil
			}
			v, err := strconv.ParseFloat(s, 64)
			*field(r) = v
			return err
		},
	}
}

func nullCol(name string, field func(*core.Record) *core.Nullable) column[*core.Record] {
	return column[*core.Record]{
		name:  name,
		value: func(r *core.Record) any { return nullable(*field(r)) },
		parse: func(r *core.Record, s string) error {
			if s == "" {
				*field(r) = core.Nullable{}
				return nil
			}
			v, err := strconv.ParseFloat(s, 64)
			*field(r) = core.Float(v)
			return err
		},
	}
}

func nullable(v core.Nullable) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// RouteSummaryColumns is the column order of the route summary file.
var RouteSummaryColumns = names(routeSummaryColumns)

var routeSummaryColumns = []column[core.RouteSummary]{
	{name: "route", value: func(s core.RouteSummary) any { return s.Route }},
	{name: "aircraft_type", value: func(s core.RouteSummary) any { return s.AircraftType }},
	{name: "months", value: func(s core.RouteSummary) any { return s.Months }},
	{name: "total_passengers", value: func(s core.RouteSummary) any { return s.TotalPassengers }},
	{name: "total_revenue", value: func(s core.RouteSummary) any { return s.TotalRevenue }},
	{name: "total_cost", value: func(s core.RouteSummary) any { return s.TotalCost }},
	{name: "total_profit", value: func(s core.RouteSummary) any { return s.TotalProfit }},
	{name: "avg_profit_margin", value: func(s core.RouteSummary) any { return nullable(s.AvgProfitMargin) }},
	{name: "avg_revenue_growth", value: func(s core.RouteSummary) any { return nullable(s.AvgRevenueGrowth) }},
	{name: "avg_profit_growth", value: func(s core.RouteSummary) any { return nullable(s.AvgProfitGrowth) }},
	{name: "avg_passenger_growth", value: func(s core.RouteSummary) any { return nullable(s.AvgPassengerGrowth) }},
	{name: "avg_competitor_seats", value: func(s core.RouteSummary) any { return nullable(s.AvgCompetitorSeats) }},
	{name: "avg_load_factor", value: func(s core.RouteSummary) any { return nullable(s.AvgLoadFactor) }},
	{name: "norm_growth", value: func(s core.RouteSummary) any { return s.NormGrowth }},
	{name: "norm_profit", value: func(s core.RouteSummary) any { return s.NormProfit }},
	{name: "norm_margin", value: func(s core.RouteSummary) any { return s.NormMargin }},
	{name: "norm_competition", value: func(s core.RouteSummary) any { return s.NormCompetition }},
	{name: "norm_passenger_growth", value: func(s core.RouteSummary) any { return s.NormPassengerGrowth }},
	{name: "opportunity_score", value: func(s core.RouteSummary) any { return nullable(s.OpportunityScore) }},
}

// FleetSummaryColumns is the column order of the fleet summary file.
var FleetSummaryColumns = names(fleetSummaryColumns)

var fleetSummaryColumns = []column[core.FleetSummary]{
	{name: "aircraft_type", value: func(s core.FleetSummary) any { return s.AircraftType }},
	{name: "routes", value: func(s core.FleetSummary) any { return s.Routes }},
	{name: "route_months", value: func(s core.FleetSummary) any { return s.RouteMonths }},
	{name: "total_passengers", value: func(s core.FleetSummary) any { return s.TotalPassengers }},
	{name: "avg_passengers_per_month", value: func(s core.FleetSummary) any { return s.AvgPassengersPerMonth }},
	{name: "seats_configured", value: func(s core.FleetSummary) any { return s.SeatsConfigured }},
	{name: "avg_load_factor_proxy", value: func(s core.FleetSummary) any { return nullable(s.LoadFactorProxy) }},
	{name: "total_profit", value: func(s core.FleetSummary) any { return s.TotalProfit }},
	{name: "total_seats_configured", value: func(s core.FleetSummary) any { return s.TotalSeatsConfigured }},
	{name: "profit_per_seat_proxy", value: func(s core.FleetSummary) any { return nullable(s.ProfitPerSeatProxy) }},
}

// FormatCell renders an exported value as text: floats use the shortest
// representation that parses back to the same value, nil is empty.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// RouteSummaryRows returns the route summaries as formatted text rows
// in RouteSummaryColumns order.
func RouteSummaryRows(summaries []core.RouteSummary) [][]string {
	return textRows(routeSummaryColumns, summaries)
}

// FleetSummaryRows returns the fleet summaries as formatted text rows
// in FleetSummaryColumns order.
func FleetSummaryRows(summaries []core.FleetSummary) [][]string {
	return textRows(fleetSummaryColumns, summaries)
}

func textRows[T any](cols []column[T], rows []T) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = FormatCell(c.value(row))
		}
		out[i] = cells
	}
	return out
}

// RouteSummaryMaps returns the route summaries keyed by column name, with
// undefined metrics as nil.
func RouteSummaryMaps(summaries []core.RouteSummary) []map[string]any {
	return keyed(routeSummaryColumns, summaries)
}

// FleetSummaryMaps returns the fleet summaries keyed by column name.
func FleetSummaryMaps(summaries []core.FleetSummary) []map[string]any {
	return keyed(fleetSummaryColumns, summaries)
}

func keyed[T any](cols []column[T], rows []T) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		vals := values(cols, row)
		m := make(map[string]any, len(cols))
		for j, c := range cols {
			m[c.name] = vals[j]
		}
		out[i] = m
	}
	return out
}
