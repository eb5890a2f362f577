// Package config provides shared configuration types for routeprofit.
// This package is decoupled from CLI concerns: the pipeline stages take
// these types directly and the CLI layer only decides where values come from.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/routeprofit/pkg/adapter"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Cost model names.
const (
	CostModelCASM  = "casm"
	CostModelFixed = "fixed"
)

// CostModel parameterizes the operating cost of a route-month.
type CostModel struct {
	// Model selects the formula: "casm" (seat-miles x unit cost) or "fixed"
	// (per-passenger plus per-flight cost).
	Model            string  `koanf:"model" yaml:"model" validate:"oneof=casm fixed"`
	FlightsPerMonth  float64 `koanf:"flights_per_month" yaml:"flights_per_month" validate:"gte=0"`
	CostPerPassenger float64 `koanf:"cost_per_passenger" yaml:"cost_per_passenger" validate:"gte=0"`
	CostPerFlight    float64 `koanf:"cost_per_flight" yaml:"cost_per_flight" validate:"gte=0"`
}

// Scoring holds the fixed weights of the opportunity score.
// Margin 0.4, passenger growth 0.4 and competition 0.2 give the analysis
// notebook's score.
type Scoring struct {
	GrowthWeight          float64 `koanf:"growth_weight" yaml:"growth_weight" validate:"gte=0"`
	ProfitWeight          float64 `koanf:"profit_weight" yaml:"profit_weight" validate:"gte=0"`
	MarginWeight          float64 `koanf:"margin_weight" yaml:"margin_weight" validate:"gte=0"`
	CompetitionWeight     float64 `koanf:"competition_weight" yaml:"competition_weight" validate:"gte=0"`
	PassengerGrowthWeight float64 `koanf:"passenger_growth_weight" yaml:"passenger_growth_weight" validate:"gte=0"`
}

// AircraftSpec is the static metadata for one aircraft type.
type AircraftSpec struct {
	Seats    int     `koanf:"seats" yaml:"seats" validate:"gte=0"`
	UnitCost float64 `koanf:"unit_cost" yaml:"unit_cost" validate:"gte=0"` // cost per available seat-mile
}

// Airport holds the coordinates used for great-circle distances.
type Airport struct {
	Lat float64 `koanf:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `koanf:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

// Reference holds the static lookup tables used by enrichment.
type Reference struct {
	// Aircraft maps aircraft type to seats and unit cost.
	Aircraft map[string]AircraftSpec `koanf:"aircraft" yaml:"aircraft" validate:"required,dive"`
	// Routes assigns an aircraft type to a route when the input has none.
	Routes map[string]string `koanf:"routes" yaml:"routes"`
	// Airports maps IATA code to coordinates.
	Airports map[string]Airport `koanf:"airports" yaml:"airports" validate:"dive"`
}

// Validation configures the SQL cross-check.
type Validation struct {
	Tolerance float64 `koanf:"tolerance" yaml:"tolerance" validate:"gt=0"`
	Table     string  `koanf:"table" yaml:"table" validate:"required"`
}

// TargetConfig is the shared SQL target configuration.
type TargetConfig = core.TargetConfig

// ValidateTarget checks that the target names a registered adapter.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}
