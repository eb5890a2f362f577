package commands

import (
	"sort"

	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/leapstack-labs/routeprofit/internal/export"
	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/spf13/cobra"
)

// SummaryOptions holds options for the summary command.
type SummaryOptions struct {
	Fleet bool
	Top   int
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	opts := &SummaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show route and fleet summaries",
		Long: `Run the pipeline and print one row per route, ranked by opportunity
score: totals, average margin and growth, and the score itself.

Use --fleet to also print utilization and profit per aircraft type.`,
		Example: `  # Top 5 routes
  routeprofit summary --top 5

  # Routes and fleet as JSON
  routeprofit summary --fleet -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Fleet, "fleet", false, "Include the fleet utilization summary")
	cmd.Flags().IntVar(&opts.Top, "top", 0, "Only show the N highest-scoring routes (0 = all)")

	return cmd
}

func runSummary(cmd *cobra.Command, opts *SummaryOptions) error {
	c := NewCommandContext(cmd)

	eng, res, err := c.runPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	routes := RankRoutes(res.Routes)
	if opts.Top > 0 && opts.Top < len(routes) {
		routes = routes[:opts.Top]
	}

	r := c.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		out := output.SummaryOutput{RunID: res.RunID, Routes: export.RouteSummaryMaps(routes)}
		if opts.Fleet {
			out.Fleet = export.FleetSummaryMaps(res.Fleet)
		}
		return r.JSON(out)
	}

	r.Header(1, "Route Summary")
	rows := make([][]string, len(routes))
	for i, s := range routes {
		rows[i] = []string{
			s.Route,
			s.AircraftType,
			output.FormatCount(s.Months),
			output.FormatMoney(s.TotalRevenue),
			output.FormatMoney(s.TotalProfit),
			percentOrDash(s.AvgProfitMargin),
			percentOrDash(s.AvgRevenueGrowth),
			percentOrDash(s.AvgProfitGrowth),
			scoreOrDash(s.OpportunityScore),
		}
	}
	r.Table([]string{"route", "aircraft", "months", "revenue", "profit", "margin", "rev growth", "profit growth", "score"}, rows)

	if opts.Fleet {
		r.Println("")
		r.Header(1, "Fleet Utilization")
		r.Table(export.FleetSummaryColumns, fleetRows(res.Fleet))
	}
	return nil
}

// RankRoutes returns a copy of summaries ordered by opportunity score,
// highest first, with undefined scores last and ties broken by route.
func RankRoutes(summaries []core.RouteSummary) []core.RouteSummary {
	out := append([]core.RouteSummary(nil), summaries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].OpportunityScore, out[j].OpportunityScore
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && a.Float64 != b.Float64 {
			return a.Float64 > b.Float64
		}
		return out[i].Route < out[j].Route
	})
	return out
}

func fleetRows(fleet []core.FleetSummary) [][]string {
	rows := export.FleetSummaryRows(fleet)
	for i, s := range fleet {
		rows[i][3] = output.FormatCount(int(s.TotalPassengers))
		rows[i][7] = output.FormatMoney(s.TotalProfit)
	}
	return rows
}

func percentOrDash(v core.Nullable) string {
	if !v.Valid {
		return "-"
	}
	return output.FormatPercent(v.Float64)
}

func scoreOrDash(v core.Nullable) string {
	if !v.Valid {
		return "-"
	}
	return formatValue(v.Float64)
}
