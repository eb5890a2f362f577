package growth

import (
	"sort"

	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// mean accumulates the average of defined values only.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v core.Nullable) {
	if v.Valid {
		m.sum += v.Float64
		m.n++
	}
}

func (m mean) value() core.Nullable {
	if m.n == 0 {
		return core.Nullable{}
	}
	return core.Float(m.sum / float64(m.n))
}

// Summarize aggregates records into one summary per route, sorted by route.
// Averages skip undefined values and are undefined when no month has one.
func Summarize(records []*core.Record) []core.RouteSummary {
	type acc struct {
		summary                             core.RouteSummary
		margin, revG, profG, paxG, comp, lf mean
	}
	byRoute := make(map[string]*acc)

	for _, rec := range records {
		a, ok := byRoute[rec.Route]
		if !ok {
			a = &acc{summary: core.RouteSummary{Route: rec.Route, AircraftType: rec.AircraftType}}
			byRoute[rec.Route] = a
		}
		a.summary.Months++
		a.summary.TotalPassengers += rec.Passengers
		a.summary.TotalRevenue += rec.Revenue
		a.summary.TotalCost += rec.Cost
		a.summary.TotalProfit += rec.Profit
		a.margin.add(rec.ProfitMargin)
		a.revG.add(rec.RevenueGrowth)
		a.profG.add(rec.ProfitGrowth)
		a.paxG.add(rec.PassengerGrowth)
		a.comp.add(rec.CompetitorSeats)
		a.lf.add(rec.LoadFactor)
	}

	out := make([]core.RouteSummary, 0, len(byRoute))
	for _, a := range byRoute {
		s := a.summary
		s.AvgProfitMargin = a.margin.value()
		s.AvgRevenueGrowth = a.revG.value()
		s.AvgProfitGrowth = a.profG.value()
		s.AvgPassengerGrowth = a.paxG.value()
		s.AvgCompetitorSeats = a.comp.value()
		s.AvgLoadFactor = a.lf.value()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// Momentum is the mean of a route's average revenue and profit growth,
// with undefined averages counted as zero.
func Momentum(s core.RouteSummary) float64 {
	return (zeroIfNull(s.AvgRevenueGrowth) + zeroIfNull(s.AvgProfitGrowth)) / 2
}

func zeroIfNull(v core.Nullable) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

// Score fills the normalized components and the opportunity score of every
// summary. Each component is min-max normalized across routes; a component
// whose values are all equal normalizes to zero. Competition contributes
// 1 - norm(avg competitor seats), so less contested routes score higher.
// Passenger growth treats an undefined average as zero. Undefined margin
// or competitor inputs contribute nothing. The score is
// undefined only when no weighted component is defined for the route.
func Score(summaries []core.RouteSummary, w config.Scoring) {
	growth := make([]core.Nullable, len(summaries))
	profit := make([]core.Nullable, len(summaries))
	margin := make([]core.Nullable, len(summaries))
	comp := make([]core.Nullable, len(summaries))
	pax := make([]core.Nullable, len(summaries))
	for i, s := range summaries {
		growth[i] = core.Float(Momentum(s))
		profit[i] = core.Float(s.TotalProfit)
		margin[i] = s.AvgProfitMargin
		comp[i] = s.AvgCompetitorSeats
		pax[i] = core.Float(zeroIfNull(s.AvgPassengerGrowth))
	}

	normGrowth := MinMax(growth)
	normProfit := MinMax(profit)
	normMargin := MinMax(margin)
	normComp := MinMax(comp)
	normPax := MinMax(pax)

	for i := range summaries {
		s := &summaries[i]
		s.NormGrowth = zeroIfNull(normGrowth[i])
		s.NormProfit = zeroIfNull(normProfit[i])
		s.NormMargin = zeroIfNull(normMargin[i])
		s.NormCompetition = zeroIfNull(normComp[i])
		s.NormPassengerGrowth = zeroIfNull(normPax[i])

		var score float64
		var defined bool
		add := func(weight float64, v core.Nullable) {
			if weight == 0 || !v.Valid {
				return
			}
			score += weight * v.Float64
			defined = true
		}
		add(w.GrowthWeight, normGrowth[i])
		add(w.ProfitWeight, normProfit[i])
		add(w.MarginWeight, normMargin[i])
		add(w.PassengerGrowthWeight, normPax[i])
		if normComp[i].Valid {
			add(w.CompetitionWeight, core.Float(1-normComp[i].Float64))
		}

		if defined {
			s.OpportunityScore = core.Float(score)
		} else {
			s.OpportunityScore = core.Nullable{}
		}
	}
}

// MinMax rescales the defined values to [0, 1]. Undefined values stay
// undefined. When all defined values are equal every one maps to 0.
func MinMax(values []core.Nullable) []core.Nullable {
	out := make([]core.Nullable, len(values))

	lo, hi, seen := 0.0, 0.0, false
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !seen || v.Float64 < lo {
			lo = v.Float64
		}
		if !seen || v.Float64 > hi {
			hi = v.Float64
		}
		seen = true
	}

	span := hi - lo
	for i, v := range values {
		switch {
		case !v.Valid:
		case span == 0:
			out[i] = core.Float(0)
		default:
			out[i] = core.Float((v.Float64 - lo) / span)
		}
	}
	return out
}
