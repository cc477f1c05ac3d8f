package ai

import (
	"context"
	"errors"

	"github.com/baileyram/somewherescout/internal/jobs"
)

// ErrRankingFailed marks an unusable ranking-oracle response. It is the only
// pipeline failure surfaced to the caller: no partial match lists, no
// fabricated scores.
var ErrRankingFailed = errors.New("ranking failed")

// Ranker scores and explains posting-to-profile fit. Implementations are
// treated as non-deterministic and untrusted for shape and correctness.
type Ranker interface {
	Rank(ctx context.Context, profile string, postings *jobs.Postings, currency string) (*jobs.Matches, error)
}
