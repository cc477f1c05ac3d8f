package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/baileyram/somewherescout/internal/ai"
	"github.com/baileyram/somewherescout/internal/jobs"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testPostings() *jobs.Postings {
	return &jobs.Postings{Items: []*jobs.Posting{
		{
			Title:       "Frontend Developer",
			Company:     jobs.SourceCompany,
			Salary:      4500,
			Contract:    "12 Months",
			Description: "React specialist.",
			ApplyURL:    "https://somewhere.com/jobs/apply?slug=abc",
			SearchText:  "frontend developer react specialist.",
		},
	}}
}

const wrappedResponse = `{"matches": [{"title": "Frontend Developer", "company": "Somewhere.com", "salary": "$4,500", "contract": "12 Months", "match_score": 88, "reason": "Strong React overlap.", "apply_url": "https://somewhere.com/jobs/apply?slug=abc"}]}`

const bareListResponse = `[{"title": "Frontend Developer", "company": "Somewhere.com", "salary": "$4,500", "contract": "12 Months", "match_score": 88, "reason": "Strong React overlap.", "apply_url": "https://somewhere.com/jobs/apply?slug=abc"}]`

func TestRankerRank(t *testing.T) {
	stub := &stubGenerator{response: wrappedResponse}
	ranker := NewRanker(stub, 0, zap.NewNop())

	matches, err := ranker.Rank(context.Background(), "React developer profile", testPostings(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches.Len() != 1 {
		t.Fatalf("expected 1 match, got %d", matches.Len())
	}

	match := matches.Items[0]
	if match.MatchScore != 88 {
		t.Fatalf("expected score 88, got %d", match.MatchScore)
	}

	if match.ApplyURL != "https://somewhere.com/jobs/apply?slug=abc" {
		t.Fatalf("apply url altered: %q", match.ApplyURL)
	}

	if match.Reason == "" {
		t.Fatalf("expected reason to be populated")
	}

	if !strings.Contains(stub.lastPrompt, "React developer profile") {
		t.Fatalf("expected profile in prompt")
	}

	if !strings.Contains(stub.lastPrompt, "https://somewhere.com/jobs/apply?slug=abc") {
		t.Fatalf("expected apply url in prompt")
	}
}

func TestRankerToleratesResponseShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{"wrapped in matches key", wrappedResponse},
		{"bare list", bareListResponse},
		{"wrapped in unnamed key", `{"results": ` + bareListResponse + `}`},
		{"fenced code block", "```json\n" + wrappedResponse + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubGenerator{response: tt.response}
			ranker := NewRanker(stub, 0, zap.NewNop())

			matches, err := ranker.Rank(context.Background(), "profile", testPostings(), "USD")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if matches.Len() != 1 {
				t.Fatalf("expected 1 match, got %d", matches.Len())
			}

			if matches.Items[0].Title != "Frontend Developer" {
				t.Fatalf("unexpected title: %q", matches.Items[0].Title)
			}
		})
	}
}

func TestRankerFailsOnMalformedResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I could not process the request, sorry."},
		{"object without list", `{"status": "ok"}`},
		{"scalar", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubGenerator{response: tt.response}
			ranker := NewRanker(stub, 0, zap.NewNop())

			_, err := ranker.Rank(context.Background(), "profile", testPostings(), "USD")
			if err == nil {
				t.Fatalf("expected ranking failure")
			}

			if !errors.Is(err, ai.ErrRankingFailed) {
				t.Fatalf("expected ErrRankingFailed, got %v", err)
			}
		})
	}
}

func TestRankerPropagatesGeneratorFailure(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{err: errors.New("quota exceeded")}
	ranker := NewRanker(stub, 0, zap.NewNop())

	_, err := ranker.Rank(context.Background(), "profile", testPostings(), "USD")
	if !errors.Is(err, ai.ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed, got %v", err)
	}
}

func TestRankerClampsScores(t *testing.T) {
	t.Parallel()

	response := `[{"title": "A", "match_score": 150, "apply_url": "u1"}, {"title": "B", "match_score": -3, "apply_url": "u2"}]`
	stub := &stubGenerator{response: response}
	ranker := NewRanker(stub, 0, zap.NewNop())

	matches, err := ranker.Rank(context.Background(), "profile", testPostings(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches.Items[0].MatchScore != 100 {
		t.Fatalf("expected clamp to 100, got %d", matches.Items[0].MatchScore)
	}

	if matches.Items[1].MatchScore != 0 {
		t.Fatalf("expected clamp to 0, got %d", matches.Items[1].MatchScore)
	}
}

func TestRankerCoercesStringScores(t *testing.T) {
	t.Parallel()

	response := `[{"title": "A", "match_score": "85", "apply_url": "u1"}]`
	stub := &stubGenerator{response: response}
	ranker := NewRanker(stub, 0, zap.NewNop())

	matches, err := ranker.Rank(context.Background(), "profile", testPostings(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches.Items[0].MatchScore != 85 {
		t.Fatalf("expected score 85, got %d", matches.Items[0].MatchScore)
	}
}

func TestRankerSkipsOracleForEmptyInput(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "should never be called"}
	ranker := NewRanker(stub, 0, zap.NewNop())

	matches, err := ranker.Rank(context.Background(), "profile", &jobs.Postings{}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches.Len() != 0 {
		t.Fatalf("expected empty matches, got %d", matches.Len())
	}

	if stub.lastPrompt != "" {
		t.Fatalf("oracle must not be consulted for empty input")
	}
}
