// Package flows generates cohesive browsing sessions. Each flow kind
// produces one activity's worth of page visits (a homework session, a
// revision block, a quick lookup) as an ordered sequence of Page
// descriptors for the assembler to timestamp and persist.
package flows

import (
	"math/rand"
	"strings"

	"github.com/runnerr0/backstory/internal/random"
)

// Page describes one abstract page visit produced by a flow. Referrer is
// empty when the page has no explicit navigation origin.
type Page struct {
	URL      string
	Title    string
	Typed    bool
	Referrer string
	DwellSec int
}

// Kind identifies a flow. The set is closed; Generate dispatches
// exhaustively over it.
type Kind int

const (
	KindQuickSearch Kind = iota
	KindHomework
	KindRevision
	KindPastPapers
	KindPortal
	KindClassroom
)

// String returns the flow kind's short name.
func (k Kind) String() string {
	switch k {
	case KindQuickSearch:
		return "quick_search"
	case KindHomework:
		return "homework"
	case KindRevision:
		return "revision"
	case KindPastPapers:
		return "past_papers"
	case KindPortal:
		return "portal"
	case KindClassroom:
		return "classroom"
	default:
		return "unknown"
	}
}

// Library generates flows from a set of content pools.
type Library struct {
	pools Pools
}

// NewLibrary creates a Library over the given pools.
func NewLibrary(pools Pools) *Library {
	return &Library{pools: pools}
}

// Generate produces the page sequence for one session of the given kind.
// Every flow returns at least one page; an unrecognized kind falls back to
// a quick search.
func (l *Library) Generate(r *rand.Rand, kind Kind) []Page {
	switch kind {
	case KindHomework:
		return l.homeworkSession(r)
	case KindRevision:
		return l.revisionSession(r)
	case KindPastPapers:
		return l.pastPapersSession(r)
	case KindPortal:
		return l.portalSession(r)
	case KindClassroom:
		return l.classroomSession(r)
	default:
		return l.quickSearch(r)
	}
}

func (l *Library) pickTopic(r *rand.Rand) string {
	topic, err := random.Pick(r, l.pools.SearchTopics)
	if err != nil {
		return "how to study effectively for exams"
	}
	return topic
}

// homeworkSession: open the assignment source (Classroom or the learning
// portal), search the topic, read a few results, maybe detour through
// YouTube, maybe end on ChatGPT.
func (l *Library) homeworkSession(r *rand.Rand) []Page {
	var pages []Page
	topic := l.pickTopic(r)

	if random.Chance(r, 0.6) {
		course := classroomCourseURL(r)
		assign := classroomAssignmentURL(r, course)
		doc := docsURL(r, "document")
		pages = append(pages,
			Page{URL: classroomHomeURL, Title: "Google Classroom", Typed: true, DwellSec: random.IntBetween(r, 30, 90)},
			Page{URL: course, Title: "Class - Google Classroom", Referrer: classroomHomeURL, DwellSec: random.IntBetween(r, 60, 180)},
			Page{URL: assign, Title: "Assignment - Google Classroom", Referrer: course, DwellSec: random.IntBetween(r, 60, 180)},
			Page{URL: doc, Title: "Untitled document - Google Docs", Referrer: assign, DwellSec: random.IntBetween(r, 300, 900)},
		)
	} else {
		mod := slsModuleURL(r)
		pages = append(pages,
			Page{URL: slsLoginPage, Title: "SLS Login", Typed: true, DwellSec: random.IntBetween(r, 15, 45)},
			Page{URL: mimsPortalPage, Title: "MIMS Portal", Referrer: slsLoginPage, DwellSec: random.IntBetween(r, 30, 90)},
			Page{URL: mod, Title: "Learning Module - SLS", Referrer: mimsPortalPage, DwellSec: random.IntBetween(r, 300, 900)},
		)
	}

	searchURL := GoogleSearchURL(topic)
	pages = append(pages, Page{URL: searchURL, Title: googleSearchTitle(topic), Typed: true, DwellSec: random.IntBetween(r, 15, 45)})

	for i := random.IntBetween(r, 2, 5); i > 0; i-- {
		site := random.Choice(r, l.pools.ResultSites)
		pages = append(pages, Page{URL: site.URL, Title: site.Title, Referrer: searchURL, DwellSec: random.IntBetween(r, 120, 480)})
	}

	if random.Chance(r, 0.75) {
		ytSearch := youtubeSearchURL(topic)
		pages = append(pages, Page{URL: ytSearch, Title: topic + " - YouTube", Referrer: searchURL, DwellSec: random.IntBetween(r, 20, 60)})
		vidURL, vidTitle := l.youtubeEduVideo(r)
		pages = append(pages, Page{URL: vidURL, Title: vidTitle, Referrer: ytSearch, DwellSec: random.IntBetween(r, 300, 900)})
	}

	if random.Chance(r, 0.65) {
		pages = append(pages, Page{URL: chatGPTURL, Title: "ChatGPT", Typed: true, DwellSec: random.IntBetween(r, 180, 600)})
	}

	return pages
}

// revisionSession: flashcards and notes first, then a topic search with a
// couple of reference reads, sometimes a video, sometimes ChatGPT.
func (l *Library) revisionSession(r *rand.Rand) []Page {
	var pages []Page
	topic := l.pickTopic(r)

	if random.Chance(r, 0.55) {
		qURL, qTitle := quizletURL(r, titleFirstWord(topic))
		pages = append(pages, Page{URL: qURL, Title: qTitle, Typed: true, DwellSec: random.IntBetween(r, 300, 900)})
	}

	if random.Chance(r, 0.45) {
		nURL, nTitle := l.notionPage(r)
		pages = append(pages, Page{URL: nURL, Title: nTitle, Typed: true, DwellSec: random.IntBetween(r, 300, 900)})
	}

	searchURL := GoogleSearchURL(topic)
	pages = append(pages, Page{URL: searchURL, Title: googleSearchTitle(topic), Typed: true, DwellSec: random.IntBetween(r, 20, 60)})

	for i := random.IntBetween(r, 1, 3); i > 0; i-- {
		site := random.Choice(r, l.pools.RevisionSites)
		pages = append(pages, Page{URL: site.URL, Title: site.Title, Referrer: searchURL, DwellSec: random.IntBetween(r, 180, 600)})
	}

	if random.Chance(r, 0.6) {
		vidURL, vidTitle := l.youtubeEduVideo(r)
		pages = append(pages, Page{URL: vidURL, Title: vidTitle, Typed: true, DwellSec: random.IntBetween(r, 300, 900)})
	}

	if random.Chance(r, 0.55) {
		pages = append(pages, Page{URL: chatGPTURL, Title: "ChatGPT", Typed: true, DwellSec: random.IntBetween(r, 180, 600)})
	}

	return pages
}

// pastPapersSession: search for papers, open an archive site, work through
// answers in a doc.
func (l *Library) pastPapersSession(r *rand.Rand) []Page {
	var pages []Page
	topic := l.pickTopic(r)

	query := firstWord(topic) + " o level past year papers"
	searchURL := GoogleSearchURL(query)
	pages = append(pages, Page{URL: searchURL, Title: googleSearchTitle(query), Typed: true, DwellSec: random.IntBetween(r, 20, 60)})

	site := random.Choice(r, l.pools.ExamPaperSites)
	pages = append(pages, Page{URL: site.URL, Title: site.Title, Referrer: searchURL, DwellSec: random.IntBetween(r, 300, 900)})

	doc := docsURL(r, "document")
	pages = append(pages, Page{URL: doc, Title: "Practice Answers - Google Docs", Typed: true, DwellSec: random.IntBetween(r, 600, 1800)})

	if random.Chance(r, 0.6) {
		pages = append(pages, Page{URL: chatGPTURL, Title: "ChatGPT", Typed: true, DwellSec: random.IntBetween(r, 180, 600)})
	}

	return pages
}

// portalSession: log in to SLS through MIMS and work through modules.
func (l *Library) portalSession(r *rand.Rand) []Page {
	pages := []Page{
		{URL: slsLoginPage, Title: "SLS Login", Typed: true, DwellSec: random.IntBetween(r, 15, 45)},
		{URL: mimsPortalPage, Title: "MIMS Portal", Referrer: slsLoginPage, DwellSec: random.IntBetween(r, 30, 90)},
	}

	for i := random.IntBetween(r, 1, 3); i > 0; i-- {
		mod := slsModuleURL(r)
		pages = append(pages, Page{URL: mod, Title: "Learning Module - SLS", Referrer: mimsPortalPage, DwellSec: random.IntBetween(r, 300, 900)})
	}

	return pages
}

// classroomSession: browse the class stream and open assignments, most of
// which link out to a Google Docs artifact.
func (l *Library) classroomSession(r *rand.Rand) []Page {
	pages := []Page{
		{URL: classroomHomeURL, Title: "Google Classroom", Typed: true, DwellSec: random.IntBetween(r, 30, 90)},
	}

	course := classroomCourseURL(r)
	pages = append(pages, Page{URL: course, Title: "Class - Google Classroom", Referrer: classroomHomeURL, DwellSec: random.IntBetween(r, 60, 180)})

	docKinds := []string{"document", "spreadsheets", "presentation"}
	for i := random.IntBetween(r, 1, 3); i > 0; i-- {
		assign := classroomAssignmentURL(r, course)
		pages = append(pages, Page{URL: assign, Title: "Assignment - Google Classroom", Referrer: course, DwellSec: random.IntBetween(r, 60, 180)})
		if random.Chance(r, 0.7) {
			doc := docsURL(r, random.Choice(r, docKinds))
			pages = append(pages, Page{URL: doc, Title: "Assignment - Google Docs", Referrer: assign, DwellSec: random.IntBetween(r, 300, 900)})
		}
	}

	return pages
}

// quickSearch: one search and one or two result reads.
func (l *Library) quickSearch(r *rand.Rand) []Page {
	var pages []Page
	topic := l.pickTopic(r)

	searchURL := GoogleSearchURL(topic)
	pages = append(pages, Page{URL: searchURL, Title: googleSearchTitle(topic), Typed: true, DwellSec: random.IntBetween(r, 15, 45)})

	for i := random.IntBetween(r, 1, 2); i > 0; i-- {
		site := random.Choice(r, l.pools.QuickSites)
		pages = append(pages, Page{URL: site.URL, Title: site.Title, Referrer: searchURL, DwellSec: random.IntBetween(r, 60, 300)})
	}

	return pages
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}

func titleFirstWord(s string) string {
	w := firstWord(s)
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
