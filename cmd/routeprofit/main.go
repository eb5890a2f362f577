// Package main provides the CLI for the routeprofit pipeline.
package main

import (
	"os"

	"github.com/leapstack-labs/routeprofit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
