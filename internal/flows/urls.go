package flows

import (
	"fmt"
	"math/rand"
	"net/url"
	"regexp"

	"github.com/runnerr0/backstory/internal/random"
)

// Identifier lengths matching the real services' URL formats.
const (
	docIDLen    = 44 // Google Docs/Sheets/Slides document id
	videoIDLen  = 11 // YouTube video id
	notionIDLen = 32 // Notion page id
)

const (
	classroomHomeURL = "https://classroom.google.com/u/0/h"
	slsLoginPage     = "https://vle.learning.moe.edu.sg/login"
	mimsPortalPage   = "https://mims.moe.gov.sg/"
	chatGPTURL       = "https://chat.openai.com/"
)

var classroomCourseIDRe = regexp.MustCompile(`/c/(\d+)`)

// GoogleSearchURL builds a Google search results URL for a query.
// Exported because the assembler recognizes this prefix for search-term
// extraction.
func GoogleSearchURL(q string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

func googleSearchTitle(q string) string {
	return q + " - Google Search"
}

func docsURL(r *rand.Rand, kind string) string {
	return fmt.Sprintf("https://docs.google.com/%s/d/%s/edit", kind, random.URLSafeID(r, docIDLen))
}

func classroomCourseURL(r *rand.Rand) string {
	cid := random.Int64Between(r, 100000000000, 999999999999)
	return fmt.Sprintf("https://classroom.google.com/u/0/c/%d", cid)
}

// classroomAssignmentURL builds an assignment URL under the same course id
// as courseURL so the session stays within one class.
func classroomAssignmentURL(r *rand.Rand, courseURL string) string {
	cid := ""
	if m := classroomCourseIDRe.FindStringSubmatch(courseURL); m != nil {
		cid = m[1]
	} else {
		cid = fmt.Sprintf("%d", random.Int64Between(r, 100000000000, 999999999999))
	}
	wid := random.Int64Between(r, 100000000000, 999999999999)
	return fmt.Sprintf("https://classroom.google.com/u/0/c/%s/a/%d/details", cid, wid)
}

func slsModuleURL(r *rand.Rand) string {
	return fmt.Sprintf("https://vle.learning.moe.edu.sg/learner/module/%d", random.IntBetween(r, 100000, 999999))
}

func youtubeSearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}

func (l *Library) youtubeEduVideo(r *rand.Rand) (string, string) {
	title, err := random.Pick(r, l.pools.VideoTitles)
	if err != nil {
		title = "Study With Me"
	}
	vid := random.URLSafeID(r, videoIDLen)
	return "https://www.youtube.com/watch?v=" + vid, title + " - YouTube"
}

func (l *Library) notionPage(r *rand.Rand) (string, string) {
	pageID := random.URLSafeID(r, notionIDLen)
	return "https://www.notion.so/" + pageID, random.Choice(r, l.pools.NotionTitles)
}

var quizletSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

func quizletURL(r *rand.Rand, topic string) (string, string) {
	setID := random.IntBetween(r, 100000, 999999)
	slug := quizletSlugRe.ReplaceAllString(toLowerASCII(topic), "-")
	if len(slug) > 30 {
		slug = slug[:30]
	}
	return fmt.Sprintf("https://quizlet.com/%d/%s-flash-cards/", setID, slug),
		topic + " Flashcards | Quizlet"
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
