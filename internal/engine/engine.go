// Package engine orchestrates the route profitability pipeline.
// It runs the loader, enricher, financial and growth stages in order,
// exports the results, and drives the optional SQL cross-check.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/internal/validate"
	"github.com/leapstack-labs/routeprofit/pkg/adapter"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// Engine runs the pipeline stages and owns the lazily opened SQL adapter.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConnected bool
	dbMu        sync.Mutex
}

// Config holds engine configuration.
type Config struct {
	// Input is the raw dataset (CSV or XLSX)
	Input string
	// Sheet selects the worksheet of an XLSX input (optional)
	Sheet string
	// Output is the master file path; empty skips the export stage
	Output string
	// RouteSummary and FleetSummary are optional summary export paths
	RouteSummary string
	FleetSummary string

	Reference  config.Reference
	Cost       config.CostModel
	Scoring    config.Scoring
	Validation config.Validation

	// Target is the SQL engine used by Validate and Query
	Target core.AdapterConfig

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New validates cfg and creates an engine. The database adapter is only
// connected when Validate or Query is called.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, part := range []any{cfg.Reference, cfg.Cost, cfg.Scoring} {
		if err := config.Struct(part); err != nil {
			return nil, err
		}
	}
	if err := cfg.Reference.RouteAssignments(); err != nil {
		return nil, err
	}

	logger.Debug("initializing engine", "input", cfg.Input, "cost_model", cfg.Cost.Model)
	return &Engine{cfg: cfg, logger: logger}, nil
}

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsStage reports whether err came from the named stage.
func IsStage(err error, stage string) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}

// ensureDBConnected lazily connects to the configured target.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "adapter_type", e.cfg.Target.Type)

	db, err := adapter.Open(ctx, e.cfg.Target, e.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	e.db = db
	e.dbConnected = true
	e.logger.Debug("database connected", "dialect", db.DialectName())
	return nil
}

// Validate recomputes the metrics of records in SQL and compares them.
func (e *Engine) Validate(ctx context.Context, records []*core.Record) (*validate.Report, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	v := validate.New(e.db, validate.Config{Validation: e.cfg.Validation, Cost: e.cfg.Cost}, e.logger)
	return v.Run(ctx, records)
}

// Query loads records into the master table and runs a canned analysis.
func (e *Engine) Query(ctx context.Context, records []*core.Record, analysis string) (*validate.Result, error) {
	if _, ok := validate.LookupAnalysis(analysis); !ok {
		return validate.RunAnalysis(ctx, nil, analysis, "", e.logger)
	}
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	if err := validate.LoadMaster(ctx, e.db, validate.DefaultMasterTable, records); err != nil {
		return nil, err
	}
	return validate.RunAnalysis(ctx, e.db, analysis, validate.DefaultMasterTable, e.logger)
}

// Close releases the database adapter, if one was opened.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	e.dbMu.Lock()
	defer e.dbMu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.dbConnected = false
	return err
}
