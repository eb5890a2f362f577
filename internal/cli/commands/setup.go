// Package commands implements the routeprofit subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/routeprofit/internal/cli/config"
	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/leapstack-labs/routeprofit/internal/engine"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	mode := output.Mode(cfg.OutputFormat)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// getConfig returns the current configuration, or the defaults when the
// root command did not load one.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// engineConfig builds the pipeline configuration. Export paths are left
// empty; the run command sets them.
func (c *CommandContext) engineConfig() engine.Config {
	cfg := c.Cfg
	ec := engine.Config{
		Input:      cfg.Input,
		Sheet:      cfg.Sheet,
		Reference:  cfg.Reference,
		Cost:       cfg.Cost,
		Scoring:    cfg.Scoring,
		Validation: cfg.Validation,
		Logger:     c.Logger,
	}
	if cfg.Target != nil {
		ec.Target = cfg.Target.AdapterConfig()
	}
	return ec
}

// runPipeline runs every stage except export and returns the engine for
// follow-up SQL work. The caller must Close the engine.
func (c *CommandContext) runPipeline(ctx context.Context) (*engine.Engine, *engine.Result, error) {
	if err := c.Cfg.ValidateInput(); err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(c.engineConfig())
	if err != nil {
		return nil, nil, err
	}
	res, err := eng.Run(ctx)
	if err != nil {
		_ = eng.Close()
		return nil, nil, fmt.Errorf("run failed: %w", err)
	}
	return eng, res, nil
}

// addTargetFlags registers the SQL target overrides shared by validate and query.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "SQL engine: duckdb, sqlite or postgres")
	cmd.Flags().String("database", "", "Database file (duckdb, sqlite) or name (postgres)")
	_ = cmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"duckdb", "sqlite", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})
}
