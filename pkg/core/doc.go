// Package core defines the shared language of the routeprofit system.
//
// This package contains:
//   - Domain entities (Record, Month, RouteSummary, FleetSummary)
//   - Pipeline error types (MissingColumnError, UnknownAircraftTypeError, etc.)
//   - Service interfaces (Adapter) and their configuration (AdapterConfig, TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
