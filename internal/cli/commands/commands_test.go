package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/routeprofit/internal/cli/config"
	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	clitest "github.com/leapstack-labs/routeprofit/internal/cli/testutil"
	"github.com/leapstack-labs/routeprofit/internal/validate"
	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name  string
		new   func() *cobra.Command
		use   string
		flags []string
	}{
		{name: "run", new: NewRunCommand, use: "run", flags: []string{"out", "route-summary", "fleet-summary"}},
		{name: "validate", new: NewValidateCommand, use: "validate", flags: []string{"target", "database", "tolerance"}},
		{name: "summary", new: NewSummaryCommand, use: "summary", flags: []string{"fleet", "top"}},
		{name: "query", new: NewQueryCommand, use: "query [analysis]", flags: []string{"target", "database", "format"}},
		{name: "init", new: NewInitCommand, use: "init [directory]", flags: []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.new()
			assert.Equal(t, tt.use, cmd.Use)
			assert.NotEmpty(t, cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc123", "2024-06-01")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "routeprofit v1.2.3")
	assert.Contains(t, buf.String(), "commit abc123, built 2024-06-01")
}

func TestRankRoutes(t *testing.T) {
	in := []core.RouteSummary{
		{Route: "BOS-SEA", OpportunityScore: core.Float(0.4)},
		{Route: "JFK-BOS", OpportunityScore: core.Nullable{}},
		{Route: "JFK-LAX", OpportunityScore: core.Float(0.9)},
		{Route: "BOS-MCO", OpportunityScore: core.Float(0.4)},
	}

	got := RankRoutes(in)

	routes := make([]string, len(got))
	for i, s := range got {
		routes[i] = s.Route
	}
	assert.Equal(t, []string{"JFK-LAX", "BOS-MCO", "BOS-SEA", "JFK-BOS"}, routes)
	assert.Equal(t, "BOS-SEA", in[0].Route, "input is not reordered")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "NULL"},
		{name: "rounded float", in: 0.123456, want: "0.1235"},
		{name: "whole float", in: 1200.0, want: "1200"},
		{name: "int", in: int64(42), want: "42"},
		{name: "string", in: "JFK-BOS", want: "JFK-BOS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestRenderResult(t *testing.T) {
	result := &validate.Result{
		Columns: []string{"route", "total_profit"},
		Rows: [][]any{
			{"JFK-BOS", 1200.5},
			{"BOS, SEA", nil},
		},
	}

	tests := []struct {
		format string
		want   []string
	}{
		{format: "csv", want: []string{"route,total_profit\n", "JFK-BOS,1200.5\n", "\"BOS, SEA\",\n"}},
		{format: "md", want: []string{"| route | total_profit |", "| --- | --- |", "| BOS, SEA | NULL |"}},
		{format: "table", want: []string{"JFK-BOS", "1200.5", "(2 rows)"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderResult(&buf, "profit_by_route", result, tt.format))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, "profit_by_route", result, "json"))

		var got output.QueryOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "profit_by_route", got.Analysis)
		assert.Equal(t, 2, got.RowCount)
		assert.Equal(t, 1200.5, got.Rows[0]["total_profit"])
		assert.Nil(t, got.Rows[1]["total_profit"])
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, "x", &validate.Result{Columns: []string{"a"}}, "table"))
		assert.Equal(t, "(0 rows)\n", buf.String())
	})
}

func TestRenderReport(t *testing.T) {
	report := &validate.Report{
		Engine:        "duckdb",
		Table:         "route_month_base",
		Tolerance:     1e-9,
		RowsChecked:   9,
		ValuesChecked: 90,
		MissingInSQL:  []string{"JFK-SFO 2024-01"},
		Mismatches: []validate.Mismatch{
			{Route: "JFK-BOS", Month: "2024-02", Metric: "profit", Pipeline: core.Float(1200), SQL: core.Float(1100)},
			{Route: "JFK-BOS", Month: "2024-02", Metric: "lag_revenue", Pipeline: core.Nullable{}, SQL: core.Float(5)},
		},
	}

	tr := clitest.NewTestRendererMarkdown()
	renderReport(tr.Renderer, report)

	got := tr.Output()
	clitest.AssertNoANSI(t, got)
	clitest.AssertValidMarkdown(t, got)
	assert.Contains(t, got, "- **Engine**: duckdb")
	assert.Contains(t, got, "- **Values checked**: 90")
	assert.Contains(t, got, "JFK-SFO 2024-01  missing in SQL result")
	assert.Contains(t, got, "## Mismatches (2)")
	assert.Contains(t, got, "| JFK-BOS | 2024-02 | lag_revenue | NULL | 5 |")

	out := validateOutput(report)
	assert.False(t, out.OK)
	require.Len(t, out.Mismatches, 2)
	assert.Nil(t, out.Mismatches[1].Pipeline)
	require.NotNil(t, out.Mismatches[0].SQL)
	assert.InDelta(t, 1100, *out.Mismatches[0].SQL, 0)

	err := &ValidationError{Mismatches: 2, Missing: 1}
	assert.Equal(t, "validation failed: 2 mismatched values, 1 route-months missing on one side", err.Error())
}

func TestRenderReport_OK(t *testing.T) {
	tr := clitest.NewTestRendererText()
	renderReport(tr.Renderer, &validate.Report{Engine: "sqlite", Table: "route_month_base", Tolerance: 1e-9})

	assert.Contains(t, tr.Output(), "Pipeline and SQL agree on every value")
	assert.NotContains(t, tr.Output(), "Mismatches")
}

func TestDefaultConfigYAML(t *testing.T) {
	data, err := DefaultConfigYAML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# routeprofit configuration"))

	var got config.Config
	require.NoError(t, yaml.Unmarshal(data, &got))

	want := config.Default()
	assert.Equal(t, want.Input, got.Input)
	assert.Equal(t, want.Out, got.Out)
	assert.Equal(t, want.Cost, got.Cost)
	assert.Equal(t, want.Scoring, got.Scoring)
	assert.Equal(t, want.Validation, got.Validation)
	assert.Equal(t, want.Reference, got.Reference)
	require.NotNil(t, got.Target)
	assert.Equal(t, "duckdb", got.Target.Type)
}

func TestRunInit(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		force    bool
		wantErr  bool
	}{
		{name: "empty directory"},
		{name: "existing config without force", existing: true, wantErr: true},
		{name: "existing config with force", existing: true, force: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "project")
			path := filepath.Join(dir, "routeprofit.yaml")
			if tt.existing {
				require.NoError(t, os.MkdirAll(dir, 0o750))
				require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))
			}

			tr := clitest.NewTestRendererMarkdown()
			err := runInit(tr.Renderer, dir, tt.force)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				data, _ := os.ReadFile(path)
				assert.Equal(t, "existing", string(data))
				return
			}

			require.NoError(t, err)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "cost:")
			assert.Contains(t, tr.Output(), "routeprofit initialized!")
		})
	}
}
