package cli

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
	"github.com/leapstack-labs/routeprofit/internal/export"
	"github.com/leapstack-labs/routeprofit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	root := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Run(t *testing.T) {
	dir := clitest.SetupTestProject(t, "route_summary: build/routes.csv\n")
	cfgPath := filepath.Join(dir, "routeprofit.yaml")

	stdout, _, err := execute(t, "--config", cfgPath, "run", "-o", "json", "--fleet-summary", filepath.Join(dir, "fleet.xlsx"))
	require.NoError(t, err)

	var got output.RunOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, filepath.Join(dir, "data", "raw.csv"), got.Input)
	assert.Equal(t, testutil.SampleRows, got.Records)
	assert.Equal(t, 3, got.Routes)
	assert.Len(t, got.Stages, 5)
	assert.Equal(t, []string{
		filepath.Join(dir, "build", "master.csv"),
		filepath.Join(dir, "build", "routes.csv"),
		filepath.Join(dir, "fleet.xlsx"),
	}, got.Outputs)

	records, err := export.ReadMaster(filepath.Join(dir, "build", "master.csv"))
	require.NoError(t, err)
	assert.Len(t, records, testutil.SampleRows)
}

func TestRoot_RunMarkdown(t *testing.T) {
	dir := clitest.SetupTestProject(t, "")

	stdout, _, err := execute(t, "--config", filepath.Join(dir, "routeprofit.yaml"), "run", "--cost-model", "fixed")
	require.NoError(t, err)

	clitest.AssertNoANSI(t, stdout)
	clitest.AssertValidMarkdown(t, stdout)
	assert.Contains(t, stdout, "# Route Profitability Run")
	assert.Contains(t, stdout, "- **Records**: 9")
	assert.Contains(t, stdout, "master.csv")
}

func TestRoot_Validate(t *testing.T) {
	for _, target := range []string{"duckdb", "sqlite"} {
		t.Run(target, func(t *testing.T) {
			dir := clitest.SetupTestProject(t, "")

			stdout, _, err := execute(t, "--config", filepath.Join(dir, "routeprofit.yaml"), "validate", "--target", target, "-o", "json")
			require.NoError(t, err)

			var got output.ValidateOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.True(t, got.OK)
			assert.Equal(t, target, got.Engine)
			assert.Equal(t, testutil.SampleRows, got.RowsChecked)
			assert.Empty(t, got.Mismatches)
		})
	}
}

func TestRoot_Summary(t *testing.T) {
	dir := clitest.SetupTestProject(t, "")
	cfgPath := filepath.Join(dir, "routeprofit.yaml")

	stdout, _, err := execute(t, "--config", cfgPath, "summary", "--fleet", "--top", "2", "-o", "json")
	require.NoError(t, err)

	var got output.SummaryOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Len(t, got.Routes, 2)
	assert.Len(t, got.Fleet, 3)
	first, second := got.Routes[0]["opportunity_score"].(float64), got.Routes[1]["opportunity_score"].(float64)
	assert.GreaterOrEqual(t, first, second)

	stdout, _, err = execute(t, "--config", cfgPath, "summary", "--fleet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Route Summary")
	assert.Contains(t, stdout, "# Fleet Utilization")
	assert.Contains(t, stdout, "| JFK-BOS |")
}

func TestRoot_Query(t *testing.T) {
	dir := clitest.SetupTestProject(t, "")
	cfgPath := filepath.Join(dir, "routeprofit.yaml")

	t.Run("list", func(t *testing.T) {
		stdout, _, err := execute(t, "--config", cfgPath, "query", "-o", "json")
		require.NoError(t, err)

		var got []output.AnalysisInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		require.NotEmpty(t, got)
		names := make([]string, len(got))
		for i, a := range got {
			names[i] = a.Name
		}
		assert.Contains(t, names, "profit_by_route")
	})

	t.Run("csv", func(t *testing.T) {
		stdout, _, err := execute(t, "--config", cfgPath, "query", "profit_by_route", "--target", "sqlite", "--format", "csv")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		assert.Len(t, lines, 4, "header and one row per route")
		assert.True(t, strings.HasPrefix(lines[0], "route,"), lines[0])
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := execute(t, "--config", cfgPath, "query", "not_an_analysis")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown analysis")
	})
}

func TestRoot_Errors(t *testing.T) {
	dir := clitest.SetupTestProject(t, "")
	cfgPath := filepath.Join(dir, "routeprofit.yaml")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing input",
			args:    []string{"--config", cfgPath, "run", "--input", filepath.Join(dir, "absent.csv")},
			wantErr: "input file does not exist",
		},
		{
			name:    "bad cost model",
			args:    []string{"--config", cfgPath, "run", "--cost-model", "guess"},
			wantErr: "Cost.Model",
		},
		{
			name:    "unknown target",
			args:    []string{"--config", cfgPath, "validate", "--target", "oracle"},
			wantErr: "unknown adapter type",
		},
		{
			name:    "missing config file",
			args:    []string{"--config", filepath.Join(dir, "absent.yaml"), "run"},
			wantErr: "error reading config file",
		},
		{
			name:    "unexpected argument",
			args:    []string{"--config", cfgPath, "run", "extra"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRoot_InitThenRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "analysis")

	stdout, _, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "routeprofit initialized!")

	_, _, err = execute(t, "init", dir)
	require.Error(t, err, "existing config without --force")

	_, _, err = execute(t, "init", dir, "--force")
	require.NoError(t, err)

	testutil.WriteFile(t, dir, config.DefaultInput, testutil.SampleCSV)

	_, _, err = execute(t, "--config", filepath.Join(dir, "routeprofit.yaml"), "run")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, config.DefaultOut))
	assert.NoError(t, err, "default master file is written next to the config")
}

func TestRoot_VersionAndCompletion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "routeprofit v"+Version)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "routeprofit")
		})
	}

	_, _, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}
