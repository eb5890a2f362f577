package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by the loader.
// A double underscore separates nested keys: ROUTEPROFIT_COST__MODEL sets cost.model.
const EnvPrefix = "ROUTEPROFIT_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// flagKeys maps flag names whose config key is not the snake_case flag name.
var flagKeys = map[string]string{
	"target":     "target.type",
	"database":   "target.database",
	"tolerance":  "validation.tolerance",
	"cost-model": "cost.model",
}

// FlagKey returns the config key a flag overrides.
func FlagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// pathKeys are the config keys holding file paths resolved against the project root.
var pathKeys = []string{"input", "out", "route_summary", "fleet_summary"}

// configExistsIn returns the config file in dir, if any.
func configExistsIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if path := configExistsIn(dir); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"input":                           d.Input,
		"out":                             d.Out,
		"verbose":                         false,
		"log_level":                       d.LogLevel,
		"output":                          d.OutputFormat,
		"cost.model":                      d.Cost.Model,
		"cost.flights_per_month":          d.Cost.FlightsPerMonth,
		"cost.cost_per_passenger":         d.Cost.CostPerPassenger,
		"cost.cost_per_flight":            d.Cost.CostPerFlight,
		"scoring.growth_weight":           d.Scoring.GrowthWeight,
		"scoring.profit_weight":           d.Scoring.ProfitWeight,
		"scoring.margin_weight":           d.Scoring.MarginWeight,
		"scoring.competition_weight":      d.Scoring.CompetitionWeight,
		"scoring.passenger_growth_weight": d.Scoring.PassengerGrowthWeight,
		"validation.tolerance":            d.Validation.Tolerance,
		"validation.table":                d.Validation.Table,
	}
}

// LoadConfig loads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults. Only flags that were explicitly set override.
//
// Relative paths from the config file are resolved against the directory
// holding it; relative paths given as flags are resolved against the CWD.
// Each reference table present in the file replaces the built-in one.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables
	// Transform: ROUTEPROFIT_COST__MODEL -> cost.model
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	flagPaths := make(map[string]bool)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := FlagKey(f.Name)
			flagPaths[key] = true
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	defaults := Default()
	if cfg.Reference.Aircraft == nil {
		cfg.Reference.Aircraft = defaults.Reference.Aircraft
	}
	if cfg.Reference.Routes == nil {
		cfg.Reference.Routes = defaults.Reference.Routes
	}
	if cfg.Reference.Airports == nil {
		cfg.Reference.Airports = defaults.Reference.Airports
	}

	// 6. Resolve relative paths
	for _, key := range pathKeys {
		p := pathField(&cfg, key)
		if flagPaths[key] {
			if abs, err := filepath.Abs(*p); err == nil && *p != "" {
				*p = abs
			}
			continue
		}
		*p = resolvePathRelativeTo(*p, projectRoot)
	}

	// Initialize default target if not specified
	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}

	// Apply defaults based on target type
	intconfig.ApplyTargetDefaults(cfg.Target)

	// Expand environment variables in target
	expandTargetEnvVars(cfg.Target)

	if db := cfg.Target.Database; cfg.Target.Type != "postgres" && db != ":memory:" {
		if flagPaths["target.database"] {
			cfg.Target.Database, _ = filepath.Abs(db)
		} else {
			cfg.Target.Database = resolvePathRelativeTo(db, projectRoot)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

func pathField(cfg *Config, key string) *string {
	switch key {
	case "input":
		return &cfg.Input
	case "out":
		return &cfg.Out
	case "route_summary":
		return &cfg.RouteSummary
	default:
		return &cfg.FleetSummary
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
}
