package scout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/baileyram/somewherescout/internal/ai"
	"github.com/baileyram/somewherescout/internal/filtering"
	"github.com/baileyram/somewherescout/internal/jobs"
	"github.com/baileyram/somewherescout/internal/profile"
	"github.com/baileyram/somewherescout/internal/scrape"
)

// Criteria are the caller-supplied filters for one scouting request.
type Criteria struct {
	MinSalary int
	Currency  string
	Query     string
}

// Service is the pipeline's sole entry point, consumed by the surrounding
// transport layer: aggregate the fixed source set, filter by criteria, rank
// against the current profile.
type Service struct {
	aggregator *scrape.Aggregator
	ranker     ai.Ranker
	profiles   *profile.Store
	sources    []string
	logger     *zap.Logger
}

func New(aggregator *scrape.Aggregator, ranker ai.Ranker, profiles *profile.Store, sources []string, logger *zap.Logger) *Service {
	return &Service{
		aggregator: aggregator,
		ranker:     ranker,
		profiles:   profiles,
		sources:    sources,
		logger:     logger,
	}
}

// FetchAndRank runs the full pipeline. Per-source failures are absorbed by
// the aggregator; the only error surfaced to the caller is a ranking failure.
// An empty filtered set returns an empty match list without consulting the
// oracle.
func (s *Service) FetchAndRank(ctx context.Context, criteria Criteria) (*jobs.Matches, error) {
	postings := s.aggregator.Collect(ctx, s.sources)

	steps := []filtering.Filter{
		filtering.NewMinSalary(criteria.MinSalary, criteria.Currency),
		filtering.NewQuery(criteria.Query),
	}

	filtered, err := filtering.New(steps, s.logger).RunFilters(ctx, postings)
	if err != nil {
		return nil, fmt.Errorf("filtering postings: %w", err)
	}

	if filtered.Len() == 0 {
		s.logger.Info("no postings left after filters")
		return &jobs.Matches{}, nil
	}

	matches, err := s.ranker.Rank(ctx, s.profiles.Current(), filtered, criteria.Currency)
	if err != nil {
		return nil, fmt.Errorf("ranking postings: %w", err)
	}

	s.logger.Info("ranked postings",
		zap.Int("postings", filtered.Len()),
		zap.Int("matches", matches.Len()),
	)

	return matches, nil
}

// CurrentProfile returns the active profile summary.
func (s *Service) CurrentProfile() string {
	return s.profiles.Current()
}

// SetProfile replaces the active profile summary. Called by the CV upload
// step, which lives outside this module.
func (s *Service) SetProfile(summary string) {
	s.profiles.Set(summary)
}
