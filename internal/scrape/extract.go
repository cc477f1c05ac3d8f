package scrape

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/baileyram/somewherescout/internal/jobs"
)

const (
	unknownTitle       = "Unknown Position"
	competitiveDisplay = "Competitive"

	// defaultSalary is a synthetic value used only so postings without a
	// parseable salary still sort and filter.
	defaultSalary = 4000

	// descriptionLimit is a display contract, not a parsing artifact.
	descriptionLimit = 280
)

// salaryPattern matches the first currency-prefixed numeric token, e.g.
// "$5,000", "$4500" or "$5k".
var salaryPattern = regexp.MustCompile(`\$\s?(\d{1,3}(?:[,.]\d{3})+|\d+)\s?([kK])?`)

var titleBoilerplatePrefixes = []string{
	"Apply | ",
	"Apply for ",
	"Apply - ",
}

var titleBoilerplateSuffixes = []string{
	" | Somewhere.com",
	" | Somewhere",
	" - Somewhere.com",
	" - Somewhere",
}

// Extractor parses heterogeneous HTML into a normalized Posting using an
// ordered list of strategies; the first one that yields a title wins.
type Extractor struct {
	logger     *zap.Logger
	strategies []strategy
}

// strategy is one pure extraction attempt over a parsed document.
type strategy struct {
	name    string
	extract func(doc *goquery.Document) (title, description string, ok bool)
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		logger: logger,
		strategies: []strategy{
			{name: "next_data", extract: extractNextData},
			{name: "meta_title", extract: extractMetaTitle},
			{name: "heading", extract: extractHeading},
		},
	}
}

// Extract builds a Posting from the HTML body of one source. The posting's
// ApplyURL is the source URL itself, copied verbatim on every path. A body
// that yields no title still produces a record with a placeholder title so
// the source can be audited by a human.
func (e *Extractor) Extract(body, sourceURL string) (*jobs.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	title := unknownTitle
	description := ""
	matched := "none"

	for _, s := range e.strategies {
		t, d, ok := s.extract(doc)
		if !ok {
			continue
		}
		title = t
		description = d
		matched = s.name
		break
	}

	pageText := collapseWhitespace(doc.Find("body").Text())
	if description == "" {
		description = pageText
	}

	e.logger.Debug("extracted posting",
		zap.String("url", sourceURL),
		zap.String("strategy", matched),
		zap.String("title", title),
	)

	salary, display := parseSalary(pageText)

	return &jobs.Posting{
		Title:         title,
		Company:       jobs.SourceCompany,
		Salary:        salary,
		SalaryDisplay: display,
		Contract:      "Contract",
		Description:   truncateDescription(description),
		ApplyURL:      sourceURL,
		SearchText:    strings.ToLower(title + " " + description),
	}, nil
}

// extractNextData probes the structured payload embedded by the page's
// rendering framework and searches it for a job object carrying title and
// description fields.
func extractNextData(doc *goquery.Document) (string, string, bool) {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return "", "", false
	}

	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", "", false
	}

	title, description := findJobObject(payload)
	if title == "" {
		return "", "", false
	}
	return title, description, true
}

// findJobObject walks the decoded payload depth-first looking for the first
// object with a non-empty string "title". A sibling string "description" is
// taken along when present.
func findJobObject(node any) (string, string) {
	switch v := node.(type) {
	case map[string]any:
		title, _ := v["title"].(string)
		if strings.TrimSpace(title) != "" {
			description, _ := v["description"].(string)
			return strings.TrimSpace(title), collapseWhitespace(description)
		}
		for _, child := range v {
			if t, d := findJobObject(child); t != "" {
				return t, d
			}
		}
	case []any:
		for _, child := range v {
			if t, d := findJobObject(child); t != "" {
				return t, d
			}
		}
	}
	return "", ""
}

func extractMetaTitle(doc *goquery.Document) (string, string, bool) {
	content, exists := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if !exists {
		return "", "", false
	}

	title := stripBoilerplate(content)
	if title == "" {
		return "", "", false
	}

	description, _ := doc.Find(`meta[property="og:description"]`).First().Attr("content")
	return title, collapseWhitespace(description), true
}

func extractHeading(doc *goquery.Document) (string, string, bool) {
	title := collapseWhitespace(doc.Find("h1").First().Text())
	if title == "" {
		return "", "", false
	}
	return title, "", true
}

func stripBoilerplate(title string) string {
	title = strings.TrimSpace(title)
	for _, prefix := range titleBoilerplatePrefixes {
		title = strings.TrimPrefix(title, prefix)
	}
	for _, suffix := range titleBoilerplateSuffixes {
		title = strings.TrimSuffix(title, suffix)
	}
	return strings.TrimSpace(title)
}

// parseSalary scans visible text for the first currency-prefixed numeric
// token. Absence yields the synthetic default and a "Competitive" display.
func parseSalary(text string) (int, string) {
	match := salaryPattern.FindStringSubmatch(text)
	if match == nil {
		return defaultSalary, competitiveDisplay
	}

	digits := strings.NewReplacer(",", "", ".", "").Replace(match[1])
	amount := 0
	for _, r := range digits {
		amount = amount*10 + int(r-'0')
	}
	if match[2] != "" {
		amount *= 1000
	}
	if amount == 0 {
		return defaultSalary, competitiveDisplay
	}

	return amount, strings.TrimSpace(match[0])
}

func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionLimit {
		return s
	}
	return string(runes[:descriptionLimit]) + "..."
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
