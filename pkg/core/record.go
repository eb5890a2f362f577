package core

import (
	"database/sql"
	"strings"
)

// Nullable is a float metric that may be undefined.
// It is database/sql's NullFloat64 so SQL results scan straight into it.
type Nullable = sql.NullFloat64

// Float returns a defined Nullable holding v.
func Float(v float64) Nullable {
	return Nullable{Float64: v, Valid: true}
}

// Ratio returns num/den, or an undefined value when den is zero.
func Ratio(num, den float64) Nullable {
	if den == 0 {
		return Nullable{}
	}
	return Float(num / den)
}

// Growth returns (current - lag) / lag, undefined when lag is undefined or zero.
func Growth(current float64, lag Nullable) Nullable {
	if !lag.Valid || lag.Float64 == 0 {
		return Nullable{}
	}
	return Float((current - lag.Float64) / lag.Float64)
}

// RouteMonth identifies a single observation.
type RouteMonth struct {
	Route string
	Month Month
}

func (k RouteMonth) String() string {
	return k.Route + " " + k.Month.String()
}

// RouteID builds the ORIGIN-DEST route identifier.
func RouteID(origin, destination string) string {
	return strings.ToUpper(strings.TrimSpace(origin)) + "-" + strings.ToUpper(strings.TrimSpace(destination))
}

// Record is one route-month observation. Pipeline stages fill it in
// column by column; no stage removes a value set by an earlier one.
type Record struct {
	// Raw observation (loader)
	Origin          string
	Destination     string
	Route           string
	Month           Month
	AircraftType    string
	Seats           int
	DistanceMiles   float64
	Passengers      float64
	AvgFare         float64
	CompetitorSeats Nullable
	LoadFactor      Nullable

	// Enrichment
	UnitCost float64

	// Financials
	Revenue      float64
	Cost         float64
	Profit       float64
	ProfitMargin Nullable

	// Growth
	LagRevenue       Nullable
	LagProfit        Nullable
	LagPassengers    Nullable
	RevenueGrowth    Nullable
	ProfitGrowth     Nullable
	PassengerGrowth  Nullable
	OpportunityScore Nullable
}

// Key returns the (route, month) identity of the record.
func (r *Record) Key() RouteMonth {
	return RouteMonth{Route: r.Route, Month: r.Month}
}

// RouteSummary aggregates one route across all its months.
type RouteSummary struct {
	Route              string
	AircraftType       string
	Months             int
	TotalPassengers    float64
	TotalRevenue       float64
	TotalCost          float64
	TotalProfit        float64
	AvgProfitMargin    Nullable
	AvgRevenueGrowth   Nullable
	AvgProfitGrowth    Nullable
	AvgPassengerGrowth Nullable
	AvgCompetitorSeats Nullable
	AvgLoadFactor      Nullable

	// Score components after min-max normalization across routes.
	NormGrowth          float64
	NormProfit          float64
	NormMargin          float64
	NormCompetition     float64
	NormPassengerGrowth float64

	OpportunityScore Nullable
}

// FleetSummary aggregates utilization and profitability per aircraft type.
type FleetSummary struct {
	AircraftType          string
	Routes                int
	RouteMonths           int
	TotalPassengers       float64
	AvgPassengersPerMonth float64
	SeatsConfigured       int
	LoadFactorProxy       Nullable
	TotalProfit           float64
	TotalSeatsConfigured  int
	ProfitPerSeatProxy    Nullable
}
