package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFields_Documented(t *testing.T) {
	fields := configFields()
	require.NotEmpty(t, fields)

	byKey := make(map[string]ConfigField, len(fields))
	for _, f := range fields {
		assert.NotEmpty(t, f.Description, "key %q has no description", f.Key)
		byKey[f.Key] = f
	}

	assert.Equal(t, "casm", byKey["cost.model"].Default)
	assert.Equal(t, "duckdb", byKey["target.type"].Default)
	assert.Equal(t, "map", byKey["reference.aircraft"].Type)
	assert.NotContains(t, byKey, "project_root")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "ROUTEPROFIT_COST__MODEL", envName("cost.model"))
	assert.Equal(t, "ROUTEPROFIT_INPUT", envName("input"))
}

func TestCleanExample(t *testing.T) {
	in := "  # Run\n  routeprofit run\n\n    nested"
	assert.Equal(t, "# Run\nrouteprofit run\n\n  nested", cleanExample(in))
}

func TestGenerateDocs(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, generateCLIDocs(filepath.Join(dir, "cli")))
	require.NoError(t, generateConfigDocs(filepath.Join(dir, "reference")))

	for _, name := range []string{"index.md", "run.md", "validate.md", "summary.md", "query.md", "init.md"} {
		assert.FileExists(t, filepath.Join(dir, "cli", name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "reference", "configuration.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "| `cost.model` | string | `casm` |")
	assert.Contains(t, string(data), "```yaml\n# routeprofit configuration")

	index, err := os.ReadFile(filepath.Join(dir, "cli", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "`ROUTEPROFIT_VALIDATION__TOLERANCE`")
	assert.NotContains(t, string(index), "ROUTEPROFIT_REFERENCE__AIRCRAFT")
}
