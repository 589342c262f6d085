// Package schedule plans which browsing sessions happen on a given
// calendar day and when. Weekdays and weekends use disjoint slot tables:
// school-day slots cluster around commutes, lunch, and the evening, while
// weekend slots spread study blocks across the whole day.
package schedule

import (
	"math/rand"
	"sort"
	"time"

	"github.com/runnerr0/backstory/internal/flows"
	"github.com/runnerr0/backstory/internal/random"
)

// Entry is one planned session: a start minute within the day and the
// flow kind to run.
type Entry struct {
	StartMinute int
	Kind        flows.Kind
}

// slot is one candidate session window. prob gates inclusion (1 means
// unconditional); the start minute is drawn uniformly from [fromMin,
// toMin]; when several kinds are eligible one is chosen uniformly.
type slot struct {
	prob    float64
	fromMin int
	toMin   int
	kinds   []flows.Kind
}

// Weekday slots. The 14:30 block models a free afternoon: it only happens
// when there is no CCA, hence the 0.65 gate. The last slot runs past
// midnight (minute 1470 = 00:30 next day), matching a late-night study
// crawl.
var weekdaySlots = []slot{
	{prob: 0.45, fromMin: 6*60 + 30, toMin: 7*60 + 45, kinds: []flows.Kind{flows.KindQuickSearch}},
	{prob: 0.35, fromMin: 10*60 + 15, toMin: 10*60 + 45, kinds: []flows.Kind{flows.KindQuickSearch}},
	{prob: 0.40, fromMin: 12*60 + 15, toMin: 13 * 60, kinds: []flows.Kind{flows.KindQuickSearch}},
	{prob: 0.65, fromMin: 14*60 + 30, toMin: 15*60 + 30, kinds: []flows.Kind{flows.KindHomework, flows.KindClassroom}},
	{prob: 0.75, fromMin: 16*60 + 30, toMin: 18*60 + 30, kinds: []flows.Kind{flows.KindHomework, flows.KindPortal, flows.KindRevision, flows.KindClassroom}},
	{prob: 0.85, fromMin: 19 * 60, toMin: 21 * 60, kinds: []flows.Kind{flows.KindRevision, flows.KindHomework, flows.KindPastPapers}},
	{prob: 0.65, fromMin: 21 * 60, toMin: 23 * 60, kinds: []flows.Kind{flows.KindRevision, flows.KindPastPapers, flows.KindHomework}},
	{prob: 0.25, fromMin: 23 * 60, toMin: 24*60 + 30, kinds: []flows.Kind{flows.KindRevision}},
}

// Weekend slots. The morning and evening blocks are unconditional, so a
// weekend plan always has at least two entries.
var weekendSlots = []slot{
	{prob: 1, fromMin: 9 * 60, toMin: 11 * 60, kinds: []flows.Kind{flows.KindHomework, flows.KindRevision}},
	{prob: 0.7, fromMin: 11 * 60, toMin: 13 * 60, kinds: []flows.Kind{flows.KindHomework, flows.KindPortal}},
	{prob: 0.8, fromMin: 14 * 60, toMin: 16*60 + 30, kinds: []flows.Kind{flows.KindPastPapers, flows.KindRevision, flows.KindHomework}},
	{prob: 0.65, fromMin: 16*60 + 30, toMin: 18*60 + 30, kinds: []flows.Kind{flows.KindRevision, flows.KindHomework}},
	{prob: 1, fromMin: 19 * 60, toMin: 21 * 60, kinds: []flows.Kind{flows.KindRevision, flows.KindPastPapers, flows.KindHomework}},
	{prob: 0.75, fromMin: 21 * 60, toMin: 23 * 60, kinds: []flows.Kind{flows.KindRevision, flows.KindHomework}},
}

// Plan produces the day's session entries sorted ascending by start
// minute. A weekday plan may be empty when every gate fails; weekend
// plans always contain the unconditional entries.
func Plan(r *rand.Rand, day time.Time) []Entry {
	slots := weekdaySlots
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		slots = weekendSlots
	}

	var plan []Entry
	for _, s := range slots {
		if s.prob < 1 && !random.Chance(r, s.prob) {
			continue
		}

		minute := random.IntBetween(r, s.fromMin, s.toMin)
		kind := s.kinds[0]
		if len(s.kinds) > 1 {
			kind = random.Choice(r, s.kinds)
		}
		plan = append(plan, Entry{StartMinute: minute, Kind: kind})
	}

	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].StartMinute < plan[j].StartMinute
	})
	return plan
}
