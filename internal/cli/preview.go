package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/runnerr0/backstory/internal/config"
	"github.com/runnerr0/backstory/internal/storage"
)

// previewJSON is the JSON output structure for the preview command.
type previewJSON struct {
	Seed        int64                  `json:"seed"`
	Weeks       int                    `json:"weeks"`
	TotalVisits int                    `json:"total_visits"`
	Visits      []storage.PreviewEntry `json:"visits"`
}

// Execute implements the go-flags Commander interface for PreviewCommand.
func (c *PreviewCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(cfg)
}

// run generates into memory and prints recent visits (split out for testing).
func (c *PreviewCommand) run(cfg *config.Config) error {
	if c.Limit < 1 {
		return fmt.Errorf("--limit must be positive")
	}

	seed := resolveSeed(c.Seed)
	rng := rand.New(rand.NewSource(seed))

	weeks, err := resolveWeeks(c.Weeks, cfg)
	if err != nil {
		return err
	}
	start, end, err := resolveWindow("", "", rng, cfg, weeks)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, visits, err := generateInto(ctx, cfg, buildLibrary(cfg), rng, ":memory:", start, end)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := storage.ReadRecentVisits(ctx, db, c.Limit)
	if err != nil {
		return fmt.Errorf("reading preview: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := previewJSON{
			Seed:        seed,
			Weeks:       weeks,
			TotalVisits: visits,
			Visits:      entries,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, e := range entries {
		fmt.Printf("%s  %s\n", e.Time.Format("2006-01-02 15:04"), e.URL)
		if e.Title != "" {
			fmt.Printf("%18s%s\n", "", e.Title)
		}
	}
	fmt.Printf("\n%s visits total (seed %d, %d weeks)\n", formatNumber(int64(visits)), seed, weeks)
	return nil
}
