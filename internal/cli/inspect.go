package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/backstory/internal/storage"
)

// inspectJSON is the JSON output structure for the inspect command.
type inspectJSON struct {
	Path        string            `json:"path"`
	SizeBytes   int64             `json:"size_bytes"`
	TotalURLs   int64             `json:"total_urls"`
	TotalVisits int64             `json:"total_visits"`
	TypedVisits int64             `json:"typed_visits"`
	SearchTerms int64             `json:"search_terms"`
	OldestVisit string            `json:"oldest_visit,omitempty"`
	NewestVisit string            `json:"newest_visit,omitempty"`
	TopDomains  []domainCountJSON `json:"top_domains"`
}

type domainCountJSON struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for InspectCommand.
func (c *InspectCommand) Execute(args []string) error {
	if c.DB == "" {
		return fmt.Errorf("--db is required for inspect command")
	}
	if _, err := os.Stat(c.DB); err != nil {
		return fmt.Errorf("opening %s: %w", c.DB, err)
	}

	// Read-only so inspecting never mutates the file.
	db, err := sql.Open("sqlite3", "file:"+c.DB+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return c.executeWithDB(db, c.DB)
}

// executeWithDB runs inspect against a provided db (for testing).
func (c *InspectCommand) executeWithDB(db *sql.DB, path string) error {
	stats, err := storage.ReadStats(context.Background(), db)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(stats, path, size)
	}
	return c.printHuman(stats, path, size)
}

func (c *InspectCommand) printHuman(stats *storage.Stats, path string, size int64) error {
	fmt.Println("History File")
	fmt.Println("============")
	fmt.Printf("Path:       %s (%s)\n", path, formatBytes(size))
	fmt.Printf("URLs:       %s\n", formatNumber(stats.TotalURLs))
	fmt.Printf("Visits:     %s\n", formatNumber(stats.TotalVisits))

	if stats.TotalVisits > 0 {
		pct := float64(stats.TypedVisits) / float64(stats.TotalVisits) * 100
		fmt.Printf("Typed:      %s (%.1f%%)\n", formatNumber(stats.TypedVisits), pct)
	} else {
		fmt.Printf("Typed:      %s\n", formatNumber(stats.TypedVisits))
	}
	fmt.Printf("Searches:   %s\n", formatNumber(stats.SearchTerms))

	if stats.TotalVisits > 0 {
		fmt.Printf("Oldest:     %s\n", stats.OldestVisit.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Newest:     %s\n", stats.NewestVisit.Local().Format("2006-01-02 15:04"))
	}

	if len(stats.TopDomains) > 0 {
		fmt.Println()
		fmt.Println("Top Domains:")
		for _, d := range stats.TopDomains {
			fmt.Printf("  %-28s %s\n", d.Domain, formatNumber(d.Count))
		}
	}

	return nil
}

func (c *InspectCommand) printJSON(stats *storage.Stats, path string, size int64) error {
	out := inspectJSON{
		Path:        path,
		SizeBytes:   size,
		TotalURLs:   stats.TotalURLs,
		TotalVisits: stats.TotalVisits,
		TypedVisits: stats.TypedVisits,
		SearchTerms: stats.SearchTerms,
		TopDomains:  make([]domainCountJSON, len(stats.TopDomains)),
	}

	if stats.TotalVisits > 0 {
		out.OldestVisit = stats.OldestVisit.UTC().Format(time.RFC3339)
		out.NewestVisit = stats.NewestVisit.UTC().Format(time.RFC3339)
	}

	for i, d := range stats.TopDomains {
		out.TopDomains[i] = domainCountJSON{Domain: d.Domain, Count: d.Count}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
