package config

import (
	"fmt"
	"os"

	intconfig "github.com/leapstack-labs/routeprofit/internal/config"
)

// Validate checks struct constraints, the route assignment table and the target.
func (c *Config) Validate() error {
	if err := intconfig.Struct(c); err != nil {
		return err
	}
	if err := c.Reference.RouteAssignments(); err != nil {
		return err
	}
	if err := intconfig.ValidateTarget(c.Target); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	return nil
}

// ValidateInput checks that the input dataset exists.
func (c *Config) ValidateInput() error {
	if _, err := os.Stat(c.Input); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s\nHint: Set input in routeprofit.yaml or use --input to specify a different path", c.Input)
	}
	return nil
}
