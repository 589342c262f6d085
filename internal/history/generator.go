// Package history assembles generated browsing flows into a chronological
// visit record and drives persistence. It walks every calendar day of the
// requested window, asks the scheduler for that day's sessions, runs each
// session's flow, and hands timestamped visits to the writer with causal
// links attached.
package history

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/runnerr0/backstory/internal/chromet"
	"github.com/runnerr0/backstory/internal/flows"
	"github.com/runnerr0/backstory/internal/random"
	"github.com/runnerr0/backstory/internal/schedule"
	"github.com/runnerr0/backstory/internal/storage"
)

// Inter-visit gap bounds in seconds: the pause between finishing one page
// and landing on the next within a session.
const (
	minVisitGapSec = 3
	maxVisitGapSec = 40
)

const googleSearchPrefix = "https://www.google.com/search?"

// Generator runs one generation pass. It exclusively owns its random
// source and writer; concurrent runs each need their own.
type Generator struct {
	rng    *rand.Rand
	lib    *flows.Library
	writer *storage.HistoryWriter
}

// NewGenerator creates a Generator. The rand source must be the same one
// given to the writer so a seed replays the whole run.
func NewGenerator(rng *rand.Rand, lib *flows.Library, writer *storage.HistoryWriter) *Generator {
	return &Generator{rng: rng, lib: lib, writer: writer}
}

// Run generates history for the inclusive window [start, end] and returns
// the number of visits persisted. Session entries before the window are
// clamped up to start; visits that would land past end are dropped, which
// may truncate a session mid-flow. Sessions start at their planned minute
// regardless of when the previous session's clock ended, so timestamps
// are monotonic within a session but not across sessions.
func (g *Generator) Run(ctx context.Context, start, end time.Time) (int, error) {
	if _, err := chromet.ToChromeTime(start); err != nil {
		return 0, fmt.Errorf("window start: %w", err)
	}
	if _, err := chromet.ToChromeTime(end); err != nil {
		return 0, fmt.Errorf("window end: %w", err)
	}

	loc := start.Location()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	total := 0
	for !day.After(endDay) {
		for _, entry := range schedule.Plan(g.rng, day) {
			sessionStart := day.Add(time.Duration(entry.StartMinute) * time.Minute)
			if sessionStart.Before(start) {
				sessionStart = start
			}
			if sessionStart.After(end) {
				continue
			}

			persisted, err := g.runSession(ctx, entry.Kind, sessionStart, end)
			if err != nil {
				return total, err
			}
			total += persisted
		}
		day = day.AddDate(0, 0, 1)
	}

	return total, nil
}

// runSession executes one flow starting at sessionStart, persisting each
// visit until the pages run out or the clock passes end.
func (g *Generator) runSession(ctx context.Context, kind flows.Kind, sessionStart, end time.Time) (int, error) {
	pages := g.lib.Generate(g.rng, kind)

	t := sessionStart
	count := 0
	var prevVisitID int64
	var prevURL string

	for i, page := range pages {
		if i > 0 {
			t = t.Add(time.Duration(random.IntBetween(g.rng, minVisitGapSec, maxVisitGapSec)) * time.Second)
		}
		if t.After(end) {
			break
		}

		visitTime, err := chromet.ToChromeTime(t)
		if err != nil {
			return count, err
		}

		urlID, err := g.writer.UpsertURL(ctx, page.URL, page.Title, visitTime, page.Typed)
		if err != nil {
			return count, fmt.Errorf("upsert url %s: %w", page.URL, err)
		}

		transition := storage.TransitionLink
		if page.Typed {
			transition = storage.TransitionTypedFromBar
		}

		var fromVisit int64
		if !page.Typed {
			fromVisit = prevVisitID
		}

		referrer := page.Referrer
		if referrer == "" && !page.Typed {
			referrer = prevURL
		}

		searchTerm := ExtractSearchTerm(page.URL)

		visitID, err := g.writer.InsertVisit(ctx, storage.VisitRecord{
			URLID:            urlID,
			VisitTime:        visitTime,
			FromVisit:        fromVisit,
			ExternalReferrer: referrer,
			Transition:       transition,
			DwellSec:         page.DwellSec,
			SearchTerm:       searchTerm,
		})
		if err != nil {
			return count, fmt.Errorf("insert visit %s: %w", page.URL, err)
		}
		count++

		if searchTerm != "" {
			if err := g.writer.InsertSearchTerm(ctx, urlID, searchTerm); err != nil {
				return count, err
			}
		}

		prevVisitID = visitID
		prevURL = page.URL
		t = t.Add(time.Duration(storage.ClampDwell(page.DwellSec)) * time.Second)
	}

	return count, nil
}

// ExtractSearchTerm returns the q parameter of a Google search results
// URL, or "" when the URL is not a search page or the query is empty.
func ExtractSearchTerm(rawURL string) string {
	if !strings.HasPrefix(rawURL, googleSearchPrefix) {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("q")
}

// Window derives a generation window ending now and reaching back the
// given number of weeks. The start lands shortly after 6am on the first
// day, with the exact minute and second drawn from the run's source.
func Window(r *rand.Rand, now time.Time, weeks int) (start, end time.Time) {
	end = now
	back := end.AddDate(0, 0, -7*weeks)
	start = time.Date(back.Year(), back.Month(), back.Day(),
		6, random.IntBetween(r, 10, 55), random.IntBetween(r, 0, 59), 0, back.Location())
	return start, end
}
