// Package enrich adds route identity, aircraft metadata and distance to raw
// route-month records using static reference tables.
package enrich

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Enricher augments records from the configured reference tables.
type Enricher struct {
	ref    config.Reference
	names  map[string]string // upper-cased aircraft type -> configured name
	logger *slog.Logger
}

// New creates an Enricher over the normalized reference tables. It fails
// when route assignments name unknown aircraft or keys collide by case.
// If logger is nil, a discard logger is used.
func New(ref config.Reference, logger *slog.Logger) (*Enricher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	norm, err := ref.Normalized()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(norm.Aircraft))
	for name := range norm.Aircraft {
		names[strings.ToUpper(name)] = name
	}
	return &Enricher{ref: norm, names: names, logger: logger}, nil
}

// Apply enriches every record in place. It stops at the first record that
// cannot be resolved.
func (e *Enricher) Apply(records []*core.Record) error {
	distances := make(map[string]float64)
	for _, rec := range records {
		if err := e.enrich(rec, distances); err != nil {
			return err
		}
	}
	e.logger.Debug("enriched records", slog.Int("records", len(records)), slog.Int("computed_distances", len(distances)))
	return nil
}

func (e *Enricher) enrich(rec *core.Record, distances map[string]float64) error {
	rec.Origin = strings.ToUpper(strings.TrimSpace(rec.Origin))
	rec.Destination = strings.ToUpper(strings.TrimSpace(rec.Destination))
	rec.Route = core.RouteID(rec.Origin, rec.Destination)

	aircraft := strings.TrimSpace(rec.AircraftType)
	if aircraft == "" {
		aircraft = e.ref.Routes[rec.Route]
	}
	spec, name, ok := e.lookupAircraft(aircraft)
	if !ok {
		return &core.UnknownAircraftTypeError{Route: rec.Route, AircraftType: aircraft}
	}
	rec.AircraftType = name
	if spec.Seats > 0 {
		rec.Seats = spec.Seats
	}
	rec.UnitCost = spec.UnitCost

	if rec.DistanceMiles > 0 {
		return nil
	}
	if d, ok := distances[rec.Route]; ok {
		rec.DistanceMiles = d
		return nil
	}
	d, err := e.RouteDistance(rec.Origin, rec.Destination)
	if err != nil {
		return err
	}
	distances[rec.Route] = d
	rec.DistanceMiles = d
	return nil
}

// lookupAircraft resolves an aircraft type case-insensitively and returns
// the configured name.
func (e *Enricher) lookupAircraft(aircraft string) (config.AircraftSpec, string, bool) {
	name, ok := e.names[strings.ToUpper(aircraft)]
	if !ok || aircraft == "" {
		return config.AircraftSpec{}, "", false
	}
	return e.ref.Aircraft[name], name, true
}

// RouteDistance returns the great-circle distance in statute miles between
// two airports in the reference table.
func (e *Enricher) RouteDistance(origin, destination string) (float64, error) {
	route := core.RouteID(origin, destination)
	from, ok := e.ref.Airports[strings.ToUpper(origin)]
	if !ok {
		return 0, &core.UnknownAirportError{Route: route, Airport: strings.ToUpper(origin)}
	}
	to, ok := e.ref.Airports[strings.ToUpper(destination)]
	if !ok {
		return 0, &core.UnknownAirportError{Route: route, Airport: strings.ToUpper(destination)}
	}
	return Haversine(from.Lat, from.Lon, to.Lat, to.Lon), nil
}
