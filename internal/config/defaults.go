package config

import "strings"

// Default configuration values.
const (
	DefaultInput           = "route_monthly_performance.csv"
	DefaultOutput          = "jetblue_route_profitability_master.csv"
	DefaultTargetType      = "duckdb"
	DefaultValidationTable = "route_month_base"
	DefaultTolerance       = 1e-9
)

// DefaultCostModel returns the seat-mile cost model with 30 departures a month.
func DefaultCostModel() CostModel {
	return CostModel{
		Model:            CostModelCASM,
		FlightsPerMonth:  30,
		CostPerPassenger: 65,
		CostPerFlight:    18000,
	}
}

// DefaultScoring weights growth momentum and absolute profit equally.
func DefaultScoring() Scoring {
	return Scoring{
		GrowthWeight: 0.5,
		ProfitWeight: 0.5,
	}
}

// DefaultValidation returns the SQL cross-check defaults.
func DefaultValidation() Validation {
	return Validation{
		Tolerance: DefaultTolerance,
		Table:     DefaultValidationTable,
	}
}

// DefaultReference returns the JetBlue fleet deployment tables.
func DefaultReference() Reference {
	return Reference{
		Aircraft: map[string]AircraftSpec{
			"A220":      {Seats: 140, UnitCost: 0.11},
			"A320":      {Seats: 162, UnitCost: 0.11},
			"A321":      {Seats: 200, UnitCost: 0.11},
			"A321 Mint": {Seats: 159, UnitCost: 0.11}, // 16 Mint + 143 economy
		},
		Routes: map[string]string{
			"JFK-LAX": "A321 Mint",
			"JFK-SFO": "A321 Mint",
			"JFK-SAN": "A321 Mint",
			"BOS-SEA": "A321",
			"BOS-DEN": "A320",
			"BOS-MCO": "A320",
			"BOS-CHS": "A220",
			"FLL-AUS": "A220",
			"FLL-EWR": "A220",
			"JFK-AUS": "A320",
		},
		Airports: map[string]Airport{
			"AUS": {Lat: 30.1975, Lon: -97.6664},
			"BOS": {Lat: 42.3656, Lon: -71.0096},
			"CHS": {Lat: 32.8986, Lon: -80.0405},
			"DEN": {Lat: 39.8561, Lon: -104.6737},
			"EWR": {Lat: 40.6895, Lon: -74.1745},
			"FLL": {Lat: 26.0742, Lon: -80.1506},
			"JFK": {Lat: 40.6413, Lon: -73.7781},
			"LAX": {Lat: 33.9416, Lon: -118.4085},
			"MCO": {Lat: 28.4312, Lon: -81.3081},
			"SAN": {Lat: 32.7338, Lon: -117.1933},
			"SEA": {Lat: 47.4502, Lon: -122.3088},
			"SFO": {Lat: 37.6213, Lon: -122.3790},
		},
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	t.Type = strings.ToLower(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	// Apply type-specific defaults
	switch t.Type {
	case "postgres":
		if t.Port == 0 {
			t.Port = 5432
		}
	case "duckdb", "sqlite":
		if t.Database == "" {
			t.Database = ":memory:"
		}
	}
}

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	if strings.ToLower(dbType) == "postgres" {
		return "public"
	}
	return "main"
}
