package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/routeprofit/internal/cli/config"
	"github.com/leapstack-labs/routeprofit/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# routeprofit configuration
#
# Precedence (highest first): flags, ROUTEPROFIT_* environment variables,
# this file, built-in defaults. Nested keys use a double underscore in the
# environment, e.g. ROUTEPROFIT_COST__MODEL=fixed.
#
# Relative paths are resolved against the directory holding this file.
# Target credentials may reference environment variables as ${VAR}.

`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default routeprofit.yaml",
		Long: `Write a routeprofit.yaml holding every setting with its default value:
input and output paths, the SQL target, the cost model, score weights and
the aircraft, route assignment and airport reference tables.`,
		Example: `  # Initialize in current directory
  routeprofit init

  # Initialize in a new directory
  routeprofit init analysis

  # Force overwrite existing config
  routeprofit init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

// DefaultConfigYAML renders the default configuration as commented YAML.
func DefaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func runInit(r *output.Renderer, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	data, err := DefaultConfigYAML()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.StatusLine(configPath, "success", "")
	r.Println("")
	r.Success("routeprofit initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Printf("  1. Put the raw dataset at %s (or edit input)\n", config.DefaultInput)
	r.Println("  2. Run 'routeprofit run' to build the master file")
	r.Println("  3. Run 'routeprofit validate' to cross-check the metrics in SQL")
	r.Println("  4. Run 'routeprofit summary --fleet' to review routes and fleet")

	return nil
}
