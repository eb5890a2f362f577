package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/leapstack-labs/routeprofit/internal/engine"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline and export the master dataset",
		Long: `Load the raw route-month dataset, enrich it with aircraft and distance
data, compute revenue, cost, profit and growth metrics, score every route,
and write the master file.

The output format follows the file extension: .csv or .xlsx. Route and fleet
summaries are written too when their paths are set.`,
		Example: `  # Run with routeprofit.yaml settings
  routeprofit run

  # Override input and output
  routeprofit run --input data/q3.xlsx --out build/master.xlsx

  # Also write summaries, using the fixed cost model
  routeprofit run --route-summary build/routes.csv --fleet-summary build/fleet.csv --cost-model fixed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd)
		},
	}

	cmd.Flags().String("out", "", "Master file path (.csv or .xlsx)")
	cmd.Flags().String("route-summary", "", "Route summary path (optional)")
	cmd.Flags().String("fleet-summary", "", "Fleet summary path (optional)")

	return cmd
}

func runRun(cmd *cobra.Command) error {
	c := NewCommandContext(cmd)
	if err := c.Cfg.ValidateInput(); err != nil {
		return err
	}

	ec := c.engineConfig()
	ec.Output = c.Cfg.Out
	ec.RouteSummary = c.Cfg.RouteSummary
	ec.FleetSummary = c.Cfg.FleetSummary

	eng, err := engine.New(ec)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	start := time.Now()
	res, err := eng.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	elapsed := time.Since(start)

	r := c.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		out := output.RunOutput{
			RunID:   res.RunID,
			Input:   c.Cfg.Input,
			Records: len(res.Records),
			Routes:  len(res.Routes),
			Outputs: res.Outputs,
			TotalMS: elapsed.Milliseconds(),
		}
		for _, st := range res.Timings {
			out.Stages = append(out.Stages, output.StageTiming{Stage: st.Stage, MS: st.Duration.Milliseconds()})
		}
		return r.JSON(out)
	}

	r.Header(1, "Route Profitability Run")
	r.KeyValue("Run ID", res.RunID)
	r.KeyValue("Input", c.Cfg.Input)
	r.KeyValue("Records", output.FormatCount(len(res.Records)))
	r.KeyValue("Routes", output.FormatCount(len(res.Routes)))
	r.Println("")

	r.Header(2, "Stages")
	for _, st := range res.Timings {
		r.StatusLine(st.Stage, "success", st.Duration.Round(time.Microsecond).String())
	}
	r.Println("")

	if len(res.Outputs) > 0 {
		r.Header(2, "Outputs")
		for _, path := range res.Outputs {
			r.StatusLine(path, "success", "")
		}
		r.Println("")
	}

	r.Success(fmt.Sprintf("Completed in %s", elapsed.Round(time.Millisecond)))
	return nil
}
