package filtering

import (
	"context"
	"strings"

	"github.com/baileyram/somewherescout/internal/jobs"
)

type queryFilter struct {
	query string
}

// NewQuery creates a filter that keeps postings whose search text contains
// the free-text query. An empty query keeps everything.
func NewQuery(query string) Filter {
	return &queryFilter{query: strings.ToLower(strings.TrimSpace(query))}
}

func (f *queryFilter) Name() string { return "query" }

func (f *queryFilter) Disable(string) {}

func (f *queryFilter) IsEnabled() bool { return f.query != "" }

func (f *queryFilter) Validate() error { return nil }

func (f *queryFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()

	kept := &jobs.Postings{}
	for _, posting := range p.Items {
		if strings.Contains(posting.SearchText, f.query) {
			kept.Items = append(kept.Items, posting)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}
