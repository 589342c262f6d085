package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"

	"github.com/runnerr0/backstory/internal/chromet"
)

// ReadStats returns aggregate statistics about a History database.
func ReadStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	stats := &Stats{}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM urls").Scan(&stats.TotalURLs); err != nil {
		return nil, fmt.Errorf("count urls: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM visits").Scan(&stats.TotalVisits); err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM visits WHERE transition & 0xFF = 1",
	).Scan(&stats.TypedVisits); err != nil {
		return nil, fmt.Errorf("count typed visits: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM keyword_search_terms").Scan(&stats.SearchTerms); err != nil {
		return nil, fmt.Errorf("count search terms: %w", err)
	}

	if stats.TotalVisits > 0 {
		var oldest, newest int64
		err := db.QueryRowContext(ctx, "SELECT MIN(visit_time), MAX(visit_time) FROM visits").Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("visit time range: %w", err)
		}
		stats.OldestVisit = chromet.FromChromeTime(oldest)
		stats.NewestVisit = chromet.FromChromeTime(newest)
	}

	domains, err := topDomains(ctx, db, 10)
	if err != nil {
		return nil, err
	}
	stats.TopDomains = domains

	return stats, nil
}

// topDomains aggregates visit counts by hostname. Chrome's urls table has
// no domain column, so the hostnames are derived here.
func topDomains(ctx context.Context, db *sql.DB, limit int) ([]DomainCount, error) {
	rows, err := db.QueryContext(ctx, "SELECT url, visit_count FROM urls")
	if err != nil {
		return nil, fmt.Errorf("query urls: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var rawURL string
		var visitCount int64
		if err := rows.Scan(&rawURL, &visitCount); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		if domain := extractDomain(rawURL); domain != "" {
			counts[domain] += visitCount
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		result = append(result, DomainCount{Domain: domain, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Domain < result[j].Domain
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ReadRecentVisits returns the newest visits joined with their URL rows,
// most recent first.
func ReadRecentVisits(ctx context.Context, db *sql.DB, limit int) ([]PreviewEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT v.visit_time, u.url, COALESCE(u.title, '')
		FROM visits v
		JOIN urls u ON v.url = u.id
		ORDER BY v.visit_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent visits: %w", err)
	}
	defer rows.Close()

	entries := []PreviewEntry{}
	for rows.Next() {
		var visitTime int64
		var e PreviewEntry
		if err := rows.Scan(&visitTime, &e.URL, &e.Title); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		e.Time = chromet.FromChromeTime(visitTime)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// extractDomain pulls the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
