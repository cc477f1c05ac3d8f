package scrape

import (
	"strings"
	"unicode"
)

// DefaultRegionKeywords are matched as plain substrings of the page text.
func DefaultRegionKeywords() []string {
	return []string{
		"south africa",
		"cape town",
		"johannesburg",
		"durban",
		"pretoria",
	}
}

// DefaultRegionTokens are short codes matched only as standalone tokens, so
// "sa" inside "usa" never counts.
func DefaultRegionTokens() []string {
	return []string{"za", "sa"}
}

// RegionFilter is a hard inclusion gate restricting postings to the target
// geography. A posting that fails it never reaches downstream stages.
type RegionFilter struct {
	keywords []string
	tokens   map[string]struct{}
}

func NewRegionFilter(keywords, tokens []string) *RegionFilter {
	if len(keywords) == 0 {
		keywords = DefaultRegionKeywords()
	}
	if len(tokens) == 0 {
		tokens = DefaultRegionTokens()
	}

	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}

	return &RegionFilter{keywords: lowered, tokens: set}
}

// Matches reports whether the page text references the target geography.
func (r *RegionFilter) Matches(text string) bool {
	text = strings.ToLower(text)

	for _, keyword := range r.keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	if len(r.tokens) == 0 {
		return false
	}

	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, ok := r.tokens[word]; ok {
			return true
		}
	}

	return false
}
