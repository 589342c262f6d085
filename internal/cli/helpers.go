package cli

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/backstory/internal/config"
	"github.com/runnerr0/backstory/internal/flows"
	"github.com/runnerr0/backstory/internal/history"
	"github.com/runnerr0/backstory/internal/storage"
)

const maxWeeks = 52

// loadConfig resolves the config path: the --config flag first, then the
// BACKSTORY_CONFIG environment variable, then the default path (created
// with defaults when missing).
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	if path := os.Getenv("BACKSTORY_CONFIG"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrCreate()
}

// buildLibrary applies configured pool overrides to the built-in content.
func buildLibrary(cfg *config.Config) *flows.Library {
	pools := flows.DefaultPools().WithSearchTopics(cfg.Flows.SearchTopics)
	return flows.NewLibrary(pools)
}

// resolveSeed returns the flag value when set, a time-based seed
// otherwise.
func resolveSeed(flag *int64) int64 {
	if flag != nil {
		return *flag
	}
	return time.Now().UnixNano()
}

// resolveWeeks validates the --weeks flag, falling back to the config
// default when the flag is absent.
func resolveWeeks(flag int, cfg *config.Config) (int, error) {
	if flag == 0 {
		return cfg.Generator.DefaultWeeks, nil
	}
	if flag < 1 || flag > maxWeeks {
		return 0, fmt.Errorf("--weeks must be in [1, %d]", maxWeeks)
	}
	return flag, nil
}

// resolveWindow builds the generation window from explicit --start/--end
// flags, or derives one reaching back the given number of weeks. The
// derived start minute comes from rng so a fixed seed replays the run.
func resolveWindow(startFlag, endFlag string, rng *rand.Rand, cfg *config.Config, weeks int) (time.Time, time.Time, error) {
	if (startFlag == "") != (endFlag == "") {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end must be given together")
	}

	if startFlag != "" {
		start, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --end: %w", err)
		}
		if !end.After(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("--end must be after --start")
		}
		return start, end, nil
	}

	start, end := history.Window(rng, time.Now().In(cfg.Location()), weeks)
	return start, end, nil
}

// generateInto opens (and migrates) the target database and fills it
// with history for [start, end]. The caller closes the returned handle.
func generateInto(ctx context.Context, cfg *config.Config, lib *flows.Library, rng *rand.Rand, dbPath string, start, end time.Time) (*sql.DB, int, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open target: %w", err)
	}

	writer := storage.NewHistoryWriter(db, rng)
	writer.KeywordID = cfg.Generator.KeywordID

	gen := history.NewGenerator(rng, lib, writer)
	visits, err := gen.Run(ctx, start, end)
	if err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("generate: %w", err)
	}
	return db, visits, nil
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
