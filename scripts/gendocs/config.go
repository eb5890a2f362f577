package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/leapstack-labs/routeprofit/internal/cli/commands"
	clicfg "github.com/leapstack-labs/routeprofit/internal/cli/config"
)

// ConfigField is one leaf key of routeprofit.yaml.
type ConfigField struct {
	Key         string
	Type        string
	Default     string
	Description string
}

// fieldDescriptions documents every key produced by configFields.
var fieldDescriptions = map[string]string{
	"input":                           "Raw route-month dataset (CSV or XLSX)",
	"sheet":                           "Worksheet of an XLSX input; empty selects the first sheet",
	"out":                             "Master file written by run (CSV or XLSX)",
	"route_summary":                   "Optional route summary file",
	"fleet_summary":                   "Optional fleet summary file",
	"verbose":                         "Enable debug logging",
	"log_level":                       "Log level: debug, info, warn, error",
	"output":                          "Output mode: auto, text, markdown, json",
	"target.type":                     "SQL engine for validate and query: duckdb, sqlite, postgres",
	"target.database":                 "File path (DuckDB, SQLite) or database name (PostgreSQL)",
	"target.host":                     "PostgreSQL host",
	"target.port":                     "PostgreSQL port",
	"target.user":                     "PostgreSQL user",
	"target.password":                 "PostgreSQL password; ${VAR} references are expanded",
	"target.schema":                   "Schema holding the validation tables",
	"target.options":                  "Additional driver-specific options",
	"target.params":                   "Adapter-specific settings (DuckDB extensions, settings)",
	"reference.aircraft":              "Aircraft type to seats and unit cost per seat-mile",
	"reference.routes":                "Route to aircraft type, used when the input has no aircraft_type",
	"reference.airports":              "IATA code to latitude and longitude",
	"cost.model":                      "Cost formula: casm or fixed",
	"cost.flights_per_month":          "Flights per month assumed by the fixed cost model",
	"cost.cost_per_passenger":         "Per-passenger cost of the fixed cost model",
	"cost.cost_per_flight":            "Per-flight cost of the fixed cost model",
	"scoring.growth_weight":           "Weight of normalized growth momentum in the opportunity score",
	"scoring.profit_weight":           "Weight of normalized total profit",
	"scoring.margin_weight":           "Weight of normalized average margin",
	"scoring.competition_weight":      "Weight of inverted normalized competitor seats",
	"scoring.passenger_growth_weight": "Weight of normalized average passenger growth (undefined counts as zero)",
	"validation.tolerance":            "Absolute/relative tolerance when comparing pipeline and SQL values",
	"validation.table":                "Table the base columns are loaded into",
}

// configFields walks the CLI configuration and returns its leaf keys with
// their default values.
func configFields() []ConfigField {
	var fields []ConfigField
	walkConfig(reflect.ValueOf(clicfg.Default()).Elem(), "", &fields)
	return fields
}

func walkConfig(v reflect.Value, prefix string, fields *[]ConfigField) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				fv = reflect.New(sf.Type.Elem()).Elem()
			} else {
				fv = fv.Elem()
			}
		}

		switch fv.Kind() {
		case reflect.Struct:
			walkConfig(fv, key, fields)
		case reflect.Map:
			*fields = append(*fields, ConfigField{
				Key:         key,
				Type:        "map",
				Default:     defaultMapLabel(fv),
				Description: fieldDescriptions[key],
			})
		default:
			*fields = append(*fields, ConfigField{
				Key:         key,
				Type:        fv.Kind().String(),
				Default:     fmt.Sprint(fv.Interface()),
				Description: fieldDescriptions[key],
			})
		}
	}
}

func defaultMapLabel(v reflect.Value) string {
	if v.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%d built-in entries", v.Len())
}

// envName returns the environment variable that sets key.
func envName(key string) string {
	return clicfg.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "routeprofit configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("routeprofit reads %s from the working directory or the nearest parent. Relative paths are resolved against the directory holding the file.", InlineCode(clicfg.ConfigFileNames[0])))

	groups := []struct {
		title  string
		prefix string
	}{
		{"Files and Output", ""},
		{"SQL Target", "target."},
		{"Reference Tables", "reference."},
		{"Cost Model", "cost."},
		{"Opportunity Score", "scoring."},
		{"Validation", "validation."},
	}

	fields := configFields()
	for _, g := range groups {
		w.Header(2, g.title)
		headers := []string{"Key", "Type", "Default", "Description"}
		var rows [][]string
		for _, f := range fields {
			if fieldGroup(f.Key) != g.prefix {
				continue
			}
			def := f.Default
			if def == "" {
				def = "-"
			} else if f.Type != "map" {
				def = InlineCode(def)
			}
			rows = append(rows, []string{InlineCode(f.Key), f.Type, def, f.Description})
		}
		w.Table(headers, rows)
	}

	w.Header(2, "Default Configuration")
	w.Paragraph("The file written by `routeprofit init`:")
	data, err := commands.DefaultConfigYAML()
	if err != nil {
		return fmt.Errorf("failed to render default configuration: %w", err)
	}
	w.CodeBlock("yaml", string(data))

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}

// fieldGroup returns the dotted prefix of key, or "" for top-level keys.
func fieldGroup(key string) string {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i+1]
	}
	return ""
}
