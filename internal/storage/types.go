package storage

import "time"

// Chrome page-transition bitmasks. The core type occupies the low byte;
// qualifier bits mark chain boundaries and address-bar origin.
const (
	coreTransitionLink  = 0
	coreTransitionTyped = 1

	transitionChainStart     = 0x10000000
	transitionChainEnd       = 0x20000000
	transitionFromAddressBar = 0x00800000

	// TransitionLink marks a visit reached by following a link.
	TransitionLink = coreTransitionLink | transitionChainStart | transitionChainEnd

	// TransitionTypedFromBar marks a visit typed into the address bar.
	TransitionTypedFromBar = coreTransitionTyped | transitionChainStart | transitionChainEnd | transitionFromAddressBar
)

// DefaultKeywordID is the omnibox Google keyword row id Chrome assigns in
// a fresh profile.
const DefaultKeywordID = 2

// Dwell bounds applied before durations are converted to microseconds.
const (
	MinDwellSec = 5
	MaxDwellSec = 3600
)

// ClampDwell bounds a dwell duration in seconds to [MinDwellSec,
// MaxDwellSec]. The assembler advances its session clock by the same
// clamped value the writer stores.
func ClampDwell(sec int) int {
	if sec < MinDwellSec {
		return MinDwellSec
	}
	if sec > MaxDwellSec {
		return MaxDwellSec
	}
	return sec
}

// VisitRecord carries everything needed to persist one visit row and its
// annotation side rows. FromVisit 0 and empty strings mean "none".
type VisitRecord struct {
	URLID            int64
	VisitTime        int64 // Chrome microseconds
	FromVisit        int64
	ExternalReferrer string
	Transition       int
	DwellSec         int
	SearchTerm       string
}

// Stats holds aggregate statistics about a History database.
type Stats struct {
	TotalURLs   int64
	TotalVisits int64
	TypedVisits int64
	SearchTerms int64
	OldestVisit time.Time
	NewestVisit time.Time
	TopDomains  []DomainCount
}

// DomainCount pairs a domain with its accumulated visit count.
type DomainCount struct {
	Domain string
	Count  int64
}

// PreviewEntry is one row of a recent-visits preview.
type PreviewEntry struct {
	Time  time.Time `json:"time"`
	URL   string    `json:"url"`
	Title string    `json:"title"`
}
