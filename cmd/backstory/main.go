// Package main provides the entry point for the Backstory CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/runnerr0/backstory/internal/cli"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
