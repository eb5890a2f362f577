// Package growth computes month-over-month lags and growth per route, the
// route-level summary and the opportunity score.
package growth

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Calculator computes growth metrics and opportunity scores.
type Calculator struct {
	weights config.Scoring
	logger  *slog.Logger
}

// New creates a Calculator. If logger is nil, a discard logger is used.
func New(weights config.Scoring, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Calculator{weights: weights, logger: logger}
}

// Apply sorts records by route and month, fills the lag and growth columns,
// scores every route and copies each route's score onto its monthly records.
// The returned summaries are sorted by route.
func (c *Calculator) Apply(records []*core.Record) ([]core.RouteSummary, error) {
	w := c.weights
	if w.GrowthWeight+w.ProfitWeight+w.MarginWeight+w.CompetitionWeight+w.PassengerGrowthWeight == 0 {
		return nil, errors.New("scoring weights are all zero")
	}

	SortByRouteMonth(records)
	AddLags(records)

	summaries := Summarize(records)
	Score(summaries, c.weights)

	scores := make(map[string]core.Nullable, len(summaries))
	for _, s := range summaries {
		scores[s.Route] = s.OpportunityScore
	}
	for _, rec := range records {
		rec.OpportunityScore = scores[rec.Route]
	}

	c.logger.Debug("computed growth metrics",
		slog.Int("records", len(records)),
		slog.Int("routes", len(summaries)))
	return summaries, nil
}

// SortByRouteMonth orders records by route, then month ascending.
func SortByRouteMonth(records []*core.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Route != records[j].Route {
			return records[i].Route < records[j].Route
		}
		return records[i].Month.Before(records[j].Month)
	})
}

// AddLags sets the lag and growth columns. Records must already be sorted
// by route and month. The lag is the previous observed month of the same
// route, so a gap in the data does not reset it.
func AddLags(records []*core.Record) {
	var prev *core.Record
	for _, rec := range records {
		if prev != nil && prev.Route == rec.Route {
			rec.LagRevenue = core.Float(prev.Revenue)
			rec.LagProfit = core.Float(prev.Profit)
			rec.LagPassengers = core.Float(prev.Passengers)
		} else {
			rec.LagRevenue = core.Nullable{}
			rec.LagProfit = core.Nullable{}
			rec.LagPassengers = core.Nullable{}
		}
		rec.RevenueGrowth = core.Growth(rec.Revenue, rec.LagRevenue)
		rec.ProfitGrowth = core.Growth(rec.Profit, rec.LagProfit)
		rec.PassengerGrowth = core.Growth(rec.Passengers, rec.LagPassengers)
		prev = rec
	}
}
