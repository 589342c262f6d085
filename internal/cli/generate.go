package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/runnerr0/backstory/internal/config"
)

// generateJSON is the JSON output structure for the generate command.
type generateJSON struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Seed      int64  `json:"seed"`
	Visits    int    `json:"visits"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// Execute implements the go-flags Commander interface for GenerateCommand.
func (c *GenerateCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

// run generates a History file per the resolved config (split out for testing).
func (c *GenerateCommand) run(cfg *config.Config) error {
	if c.Out == "" {
		return fmt.Errorf("--out is required")
	}
	if _, err := os.Stat(c.Out); err == nil {
		if !c.Force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.Out)
		}
		if err := os.Remove(c.Out); err != nil {
			return fmt.Errorf("removing existing file: %w", err)
		}
	}

	seed := resolveSeed(c.Seed)
	rng := rand.New(rand.NewSource(seed))

	weeks, err := resolveWeeks(c.Weeks, cfg)
	if err != nil {
		return err
	}
	start, end, err := resolveWindow(c.Start, c.End, rng, cfg, weeks)
	if err != nil {
		return err
	}

	db, visits, err := generateInto(context.Background(), cfg, buildLibrary(cfg), rng, c.Out, start, end)
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing target: %w", err)
	}

	var size int64
	if info, err := os.Stat(c.Out); err == nil {
		size = info.Size()
	}

	if c.globals != nil && c.globals.JSON {
		out := generateJSON{
			Path:      c.Out,
			SizeBytes: size,
			Seed:      seed,
			Visits:    visits,
			Start:     start.Format(time.RFC3339),
			End:       end.Format(time.RFC3339),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Wrote %s visits to %s (%s)\n", formatNumber(int64(visits)), c.Out, formatBytes(size))
	fmt.Printf("  Seed:   %d\n", seed)
	fmt.Printf("  Window: %s to %s\n", start.Format(time.RFC3339), end.Format(time.RFC3339))
	return nil
}
