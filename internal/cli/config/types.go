// Package config provides configuration management for the routeprofit CLI.
//
// This package layers CLI concerns (file discovery, env vars, flags, path
// resolution) over the shared configuration types in internal/config. The
// shared types are re-exported here via type aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/pkg/core"
)

// TargetConfig is an alias for the shared SQL target configuration.
type TargetConfig = core.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	// Input is the raw route-month dataset (CSV or XLSX).
	Input string `koanf:"input" yaml:"input" validate:"required"`
	// Sheet selects a worksheet of an XLSX input; empty uses the first one.
	Sheet string `koanf:"sheet" yaml:"sheet,omitempty"`
	// Out is the master file written by run.
	Out          string `koanf:"out" yaml:"out"`
	RouteSummary string `koanf:"route_summary" yaml:"route_summary,omitempty"`
	FleetSummary string `koanf:"fleet_summary" yaml:"fleet_summary,omitempty"`

	Verbose      bool   `koanf:"verbose" yaml:"verbose,omitempty"`
	LogLevel     string `koanf:"log_level" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	OutputFormat string `koanf:"output" yaml:"output,omitempty" validate:"omitempty,oneof=auto text table markdown md json"`

	Target     *TargetConfig        `koanf:"target" yaml:"target"`
	Reference  sharedcfg.Reference  `koanf:"reference" yaml:"reference"`
	Cost       sharedcfg.CostModel  `koanf:"cost" yaml:"cost"`
	Scoring    sharedcfg.Scoring    `koanf:"scoring" yaml:"scoring"`
	Validation sharedcfg.Validation `koanf:"validation" yaml:"validation"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values.
const (
	DefaultInput    = sharedcfg.DefaultInput
	DefaultOut      = sharedcfg.DefaultOutput
	DefaultLogLevel = "warn"
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"routeprofit.yaml", "routeprofit.yml"}

// Default returns the configuration used when no file, env var or flag
// overrides a value.
func Default() *Config {
	return &Config{
		Input:        DefaultInput,
		Out:          DefaultOut,
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Target:       &TargetConfig{Type: sharedcfg.DefaultTargetType, Database: ":memory:"},
		Reference:    sharedcfg.DefaultReference(),
		Cost:         sharedcfg.DefaultCostModel(),
		Scoring:      sharedcfg.DefaultScoring(),
		Validation:   sharedcfg.DefaultValidation(),
	}
}
