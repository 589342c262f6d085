package flows

import "github.com/runnerr0/backstory/internal/random"

// Site is a static destination page from a content pool.
type Site struct {
	URL   string
	Title string
}

// Pools holds the static content backing the flow generators: search
// topics, video titles, and destination sites. Pools are data, not
// behavior; callers may swap any of them via configuration.
type Pools struct {
	SearchTopics   []random.Weighted[string]
	VideoTitles    []random.Weighted[string]
	ResultSites    []Site
	RevisionSites  []Site
	QuickSites     []Site
	ExamPaperSites []Site
	NotionTitles   []string
}

// DefaultPools returns the built-in content pools: an O-Level student's
// study topics and the sites that orbit them.
func DefaultPools() Pools {
	return Pools{
		SearchTopics: []random.Weighted[string]{
			{Item: "suvat equations examples", Weight: 12},
			{Item: "kinematics graphs explained", Weight: 10},
			{Item: "newton's laws of motion examples", Weight: 11},
			{Item: "principle of moments questions", Weight: 9},
			{Item: "pressure in liquids formula", Weight: 8},
			{Item: "electromagnetic induction o level", Weight: 7},
			{Item: "lens ray diagram convex concave", Weight: 8},
			{Item: "wave equation v=f lambda", Weight: 6},
			{Item: "thermal physics heat capacity", Weight: 7},
			{Item: "electricity series parallel circuit", Weight: 9},
			{Item: "mole concept chemistry o level", Weight: 10},
			{Item: "redox reaction examples", Weight: 8},
			{Item: "acid base titration calculation", Weight: 9},
			{Item: "organic chemistry alkanes alkenes", Weight: 7},
			{Item: "electrolysis of brine", Weight: 6},
			{Item: "differentiation chain rule a math", Weight: 11},
			{Item: "integration by substitution", Weight: 9},
			{Item: "trigonometry identities a math", Weight: 10},
			{Item: "quadratic formula questions", Weight: 8},
			{Item: "indices and surds rules", Weight: 7},
			{Item: "probability tree diagram", Weight: 8},
			{Item: "vectors addition questions", Weight: 7},
			{Item: "logarithm rules and examples", Weight: 9},
			{Item: "argumentative essay structure", Weight: 8},
			{Item: "summary writing tips o level", Weight: 7},
			{Item: "social studies singapore sbq", Weight: 9},
			{Item: "python for loop examples", Weight: 8},
			{Item: "o level exam format 2026", Weight: 7},
			{Item: "how to study effectively for exams", Weight: 8},
			{Item: "past year papers o level", Weight: 9},
		},
		VideoTitles: []random.Weighted[string]{
			{Item: "Organic Chemistry in 30 Minutes", Weight: 8},
			{Item: "A-Math Differentiation Full Revision", Weight: 10},
			{Item: "Physics O-Level Electricity Explained", Weight: 11},
			{Item: "How to Score A1 for O-Level Math", Weight: 9},
			{Item: "Chemistry Mole Concept Made Easy", Weight: 10},
			{Item: "Kinematics Explained - O Level Physics", Weight: 9},
			{Item: "Newton's Laws Full Revision", Weight: 8},
			{Item: "Acids Bases and Salts O Level", Weight: 8},
			{Item: "Integration Techniques A Math", Weight: 9},
			{Item: "Trigonometry Full Revision A Math", Weight: 10},
		},
		ResultSites: []Site{
			{URL: "https://www.khanacademy.org/", Title: "Khan Academy | Free Online Courses"},
			{URL: "https://www.physicsclassroom.com/", Title: "The Physics Classroom"},
			{URL: "https://www.mathsisfun.com/", Title: "Math is Fun"},
			{URL: "https://brilliant.org/", Title: "Brilliant | Learn to think"},
			{URL: "https://www.chemguide.co.uk/", Title: "chemguide"},
		},
		RevisionSites: []Site{
			{URL: "https://www.khanacademy.org/", Title: "Khan Academy"},
			{URL: "https://www.physicsclassroom.com/", Title: "The Physics Classroom"},
			{URL: "https://brilliant.org/", Title: "Brilliant"},
		},
		QuickSites: []Site{
			{URL: "https://www.khanacademy.org/", Title: "Khan Academy"},
			{URL: "https://www.mathsisfun.com/", Title: "Math is Fun"},
			{URL: "https://en.wikipedia.org/wiki/Main_Page", Title: "Wikipedia"},
		},
		ExamPaperSites: []Site{
			{URL: "https://www.yoursingaporeantutor.com/past-papers/", Title: "Free O Level Past Papers"},
			{URL: "https://sgtestpaper.com/", Title: "SG Test Paper - Free Exam Papers"},
		},
		NotionTitles: []string{
			"Physics Notes - Notion",
			"Chemistry Revision - Notion",
			"A Math Notes - Notion",
			"Study Plan - Notion",
		},
	}
}

// WithSearchTopics returns a copy of the pools with the search topics
// replaced by the given equally-weighted list. Empty input leaves the
// pools unchanged.
func (p Pools) WithSearchTopics(topics []string) Pools {
	if len(topics) == 0 {
		return p
	}
	replaced := make([]random.Weighted[string], len(topics))
	for i, topic := range topics {
		replaced[i] = random.Weighted[string]{Item: topic, Weight: 1}
	}
	p.SearchTopics = replaced
	return p
}
