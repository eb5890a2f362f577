package engine

// run.go - Stage orchestration for a single pipeline run

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/routeprofit/internal/enrich"
	"github.com/leapstack-labs/routeprofit/internal/export"
	"github.com/leapstack-labs/routeprofit/internal/finance"
	"github.com/leapstack-labs/routeprofit/internal/growth"
	"github.com/leapstack-labs/routeprofit/internal/loader"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Stage names, in pipeline order.
const (
	StageLoad    = "load"
	StageEnrich  = "enrich"
	StageFinance = "finance"
	StageGrowth  = "growth"
	StageExport  = "export"
)

// StageTiming records how long a stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result is the output of a pipeline run.
type Result struct {
	RunID   string
	Records []*core.Record
	Routes  []core.RouteSummary
	Fleet   []core.FleetSummary
	Timings []StageTiming
	// Outputs lists the files written by the export stage.
	Outputs []string
}

// Run executes every stage in order. Any stage failure aborts the run and
// is returned as a *StageError. The export stage only runs when an output
// path is configured.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.New().String()}
	logger := e.logger.With("run_id", res.RunID)
	logger.Info("starting run", "input", e.cfg.Input)

	stages := []struct {
		name string
		fn   func() error
	}{
		{StageLoad, func() error {
			table, err := loader.New(loader.Options{Sheet: e.cfg.Sheet}, logger).Load(e.cfg.Input)
			if err != nil {
				return err
			}
			res.Records = table.Records
			return nil
		}},
		{StageEnrich, func() error {
			enricher, err := enrich.New(e.cfg.Reference, logger)
			if err != nil {
				return err
			}
			return enricher.Apply(res.Records)
		}},
		{StageFinance, func() error {
			return finance.New(e.cfg.Cost, logger).Apply(res.Records)
		}},
		{StageGrowth, func() error {
			routes, err := growth.New(e.cfg.Scoring, logger).Apply(res.Records)
			res.Routes = routes
			res.Fleet = enrich.FleetUtilization(res.Records)
			return err
		}},
		{StageExport, func() error {
			return e.export(res)
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return res, &StageError{Stage: stage.name, Err: err}
		}
		start := time.Now()
		if err := stage.fn(); err != nil {
			logger.Error("run failed", "stage", stage.name, "error", err.Error())
			return res, &StageError{Stage: stage.name, Err: err}
		}
		res.Timings = append(res.Timings, StageTiming{Stage: stage.name, Duration: time.Since(start)})
		logger.Debug("stage complete", "stage", stage.name, "duration", time.Since(start))
	}

	logger.Info("run completed",
		slog.Int("records", len(res.Records)),
		slog.Int("routes", len(res.Routes)),
		slog.Any("outputs", res.Outputs))
	return res, nil
}

func (e *Engine) export(res *Result) error {
	if e.cfg.Output != "" {
		if err := export.WriteMaster(e.cfg.Output, res.Records); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, e.cfg.Output)
	}
	if e.cfg.RouteSummary != "" {
		if err := export.WriteRouteSummary(e.cfg.RouteSummary, res.Routes); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, e.cfg.RouteSummary)
	}
	if e.cfg.FleetSummary != "" {
		if err := export.WriteFleetSummary(e.cfg.FleetSummary, res.Fleet); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, e.cfg.FleetSummary)
	}
	return nil
}
