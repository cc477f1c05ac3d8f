package scrape

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/baileyram/somewherescout/internal/jobs"
)

// Aggregator runs fetch, extract and the region check concurrently across all
// source URLs. Per-source failures are absorbed and logged; the caller never
// sees an error for an individual source. Result order follows completion
// order and carries no meaning downstream.
type Aggregator struct {
	fetcher   *Fetcher
	extractor *Extractor
	region    *RegionFilter
	logger    *zap.Logger
}

func NewAggregator(fetcher *Fetcher, extractor *Extractor, region *RegionFilter, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher:   fetcher,
		extractor: extractor,
		region:    region,
		logger:    logger,
	}
}

// Collect resolves every source and returns the successful postings. When all
// sources fail or are rejected it substitutes the deterministic fallback set,
// so the returned list is never empty.
func (a *Aggregator) Collect(ctx context.Context, sources []string) *jobs.Postings {
	results := make(chan *jobs.Posting, len(sources))

	var g errgroup.Group
	for _, source := range sources {
		g.Go(func() error {
			if posting := a.resolve(ctx, source); posting != nil {
				results <- posting
			}
			// Failures never propagate; each source resolves on its own.
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	postings := &jobs.Postings{}
	for posting := range results {
		postings.Items = append(postings.Items, posting)
	}

	a.logger.Info("aggregated postings",
		zap.Int("sources", len(sources)),
		zap.Int("collected", postings.Len()),
	)

	if postings.Len() == 0 {
		a.logger.Warn("no live postings collected, substituting fallback set")
		return jobs.Fallback()
	}

	return postings
}

func (a *Aggregator) resolve(ctx context.Context, source string) *jobs.Posting {
	result := a.fetcher.Fetch(ctx, source)
	if !result.OK() {
		a.logger.Warn("source unavailable",
			zap.String("url", source),
			zap.String("reason", result.Reason()),
		)
		return nil
	}

	posting, err := a.extractor.Extract(result.Body, source)
	if err != nil {
		a.logger.Warn("unparseable source",
			zap.String("url", source),
			zap.Error(err),
		)
		return nil
	}

	if !a.region.Matches(result.Body) {
		a.logger.Info("posting rejected by region filter", zap.String("url", source))
		return nil
	}

	return posting
}
