package enrich

import (
	"sort"

	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// FleetUtilization aggregates passengers, seats and profit per aircraft type.
// The load factor proxy is average passengers per route-month over configured
// seats. Profit per seat divides total profit by the seats configured across
// all route-months. Results are sorted by aircraft type.
func FleetUtilization(records []*core.Record) []core.FleetSummary {
	type acc struct {
		summary core.FleetSummary
		routes  map[string]struct{}
	}
	byType := make(map[string]*acc)

	for _, rec := range records {
		a, ok := byType[rec.AircraftType]
		if !ok {
			a = &acc{
				summary: core.FleetSummary{AircraftType: rec.AircraftType, SeatsConfigured: rec.Seats},
				routes:  make(map[string]struct{}),
			}
			byType[rec.AircraftType] = a
		}
		a.routes[rec.Route] = struct{}{}
		a.summary.RouteMonths++
		a.summary.TotalPassengers += rec.Passengers
		a.summary.TotalProfit += rec.Profit
		a.summary.TotalSeatsConfigured += rec.Seats
	}

	out := make([]core.FleetSummary, 0, len(byType))
	for _, a := range byType {
		s := a.summary
		s.Routes = len(a.routes)
		s.AvgPassengersPerMonth = s.TotalPassengers / float64(s.RouteMonths)
		s.LoadFactorProxy = core.Ratio(s.AvgPassengersPerMonth, float64(s.SeatsConfigured))
		s.ProfitPerSeatProxy = core.Ratio(s.TotalProfit, float64(s.TotalSeatsConfigured))
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AircraftType < out[j].AircraftType })
	return out
}
