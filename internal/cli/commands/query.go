package commands

import (
	"fmt"

	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/leapstack-labs/routeprofit/internal/validate"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [analysis]",
		Short: "List or run canned SQL analyses",
		Long: `Run the pipeline, load the master dataset into the SQL target as
route_performance and execute one of the canned analyses over it.

Without an argument, lists the available analyses.`,
		Example: `  # List analyses
  routeprofit query

  # Most profitable routes
  routeprofit query profit_by_route

  # Aircraft mix as CSV, computed in SQLite
  routeprofit query aircraft_mix --target sqlite --format csv`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, a := range validate.Analyses() {
				names = append(names, a.Name+"\t"+a.Description)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listAnalyses(cmd)
			}
			return runQuery(cmd, args[0], opts)
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Result format: table, json, csv, md (default follows --output)")

	return cmd
}

func listAnalyses(cmd *cobra.Command) error {
	r := NewCommandContext(cmd).Renderer
	analyses := validate.Analyses()

	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]output.AnalysisInfo, len(analyses))
		for i, a := range analyses {
			infos[i] = output.AnalysisInfo{Name: a.Name, Description: a.Description}
		}
		return r.JSON(infos)
	}

	r.Header(1, fmt.Sprintf("Analyses (%d)", len(analyses)))
	rows := make([][]string, len(analyses))
	for i, a := range analyses {
		rows[i] = []string{a.Name, a.Description}
	}
	r.Table([]string{"name", "description"}, rows)
	return nil
}

func runQuery(cmd *cobra.Command, name string, opts *QueryOptions) error {
	c := NewCommandContext(cmd)

	if _, ok := validate.LookupAnalysis(name); !ok {
		// Fail before running the pipeline.
		_, err := validate.RunAnalysis(cmd.Context(), nil, name, "", c.Logger)
		return err
	}

	eng, res, err := c.runPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	result, err := eng.Query(cmd.Context(), res.Records, name)
	if err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}

	format := opts.Format
	if format == "" {
		switch c.Renderer.EffectiveMode() {
		case output.ModeJSON:
			format = "json"
		case output.ModeMarkdown:
			format = "md"
		default:
			format = "table"
		}
	}
	return renderResult(cmd.OutOrStdout(), name, result, format)
}
