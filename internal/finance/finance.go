// Package finance derives revenue, cost, profit and margin for each
// route-month record.
package finance

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Calculator applies a cost model to enriched records.
type Calculator struct {
	cfg    config.CostModel
	logger *slog.Logger
}

// New creates a Calculator. If logger is nil, a discard logger is used.
func New(cfg config.CostModel, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Calculator{cfg: cfg, logger: logger}
}

// Apply fills Revenue, Cost, Profit and ProfitMargin on every record.
// ProfitMargin is left undefined when revenue is zero.
func (c *Calculator) Apply(records []*core.Record) error {
	costFn, err := c.costFunc()
	if err != nil {
		return err
	}

	var undefinedMargins int
	for _, rec := range records {
		rec.Revenue = Revenue(rec)
		rec.Cost = costFn(rec)
		rec.Profit = rec.Revenue - rec.Cost
		rec.ProfitMargin = core.Ratio(rec.Profit, rec.Revenue)
		if !rec.ProfitMargin.Valid {
			undefinedMargins++
		}
	}

	c.logger.Debug("computed financials",
		slog.String("cost_model", c.cfg.Model),
		slog.Int("records", len(records)),
		slog.Int("undefined_margins", undefinedMargins))
	return nil
}

func (c *Calculator) costFunc() (func(*core.Record) float64, error) {
	switch c.cfg.Model {
	case config.CostModelCASM, "":
		return func(rec *core.Record) float64 {
			return CASMCost(rec, c.cfg.FlightsPerMonth)
		}, nil
	case config.CostModelFixed:
		return func(rec *core.Record) float64 {
			return FixedCost(rec, c.cfg)
		}, nil
	default:
		return nil, fmt.Errorf("unknown cost model %q (want %s or %s)", c.cfg.Model, config.CostModelCASM, config.CostModelFixed)
	}
}

// Revenue is passengers times average fare.
func Revenue(rec *core.Record) float64 {
	return rec.Passengers * rec.AvgFare
}

// CASMCost is the seat-mile cost: available seat-miles flown in the month
// times the aircraft's cost per available seat-mile.
func CASMCost(rec *core.Record, flightsPerMonth float64) float64 {
	return flightsPerMonth * float64(rec.Seats) * rec.DistanceMiles * rec.UnitCost
}

// FixedCost is a per-passenger handling cost plus a per-departure cost.
func FixedCost(rec *core.Record, cfg config.CostModel) float64 {
	return rec.Passengers*cfg.CostPerPassenger + cfg.FlightsPerMonth*cfg.CostPerFlight
}
