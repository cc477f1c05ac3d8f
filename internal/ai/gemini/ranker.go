package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/baileyram/somewherescout/internal/ai"
	"github.com/baileyram/somewherescout/internal/jobs"
	"github.com/baileyram/somewherescout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Ranker asks Gemini to score the filtered postings against the user profile
// and parses its structured reply into match records.
type Ranker struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewRanker(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Ranker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Ranker{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Ranker) Rank(ctx context.Context, profile string, postings *jobs.Postings, currency string) (*jobs.Matches, error) {
	if postings == nil || postings.Len() == 0 {
		return &jobs.Matches{}, nil
	}

	jobsJSON, err := json.MarshalIndent(postings.Items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal postings payload: %w", err)
	}

	prompt := buildPrompt(profile, string(jobsJSON), currency)

	r.logger.Debug("gemini rank request",
		zap.Int("postings", postings.Len()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrRankingFailed, err)
	}

	r.logger.Debug("gemini rank response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	matches, err := parseMatches(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrRankingFailed, err)
	}

	return matches, nil
}

func buildPrompt(profile, jobsJSON, currency string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE}}\n\nJobs:\n{{JOBS_JSON}}\n\nTarget currency: {{CURRENCY}}\n\nJSON response:"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE}}", profile)
	prompt = strings.ReplaceAll(prompt, "{{JOBS_JSON}}", jobsJSON)
	prompt = strings.ReplaceAll(prompt, "{{CURRENCY}}", currency)
	return prompt
}

// parseMatches accepts either a bare JSON list or an object wrapping the list
// under a key ("matches" preferred, otherwise the first list-valued entry).
// Any other shape is a hard failure.
func parseMatches(raw string) (*jobs.Matches, error) {
	cleaned := extractJSON(raw)

	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	list, err := extractList(payload)
	if err != nil {
		return nil, err
	}

	var items []*jobs.Match
	cfg := &mapstructure.DecoderConfig{
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(list); err != nil {
		return nil, fmt.Errorf("decode match records: %w", err)
	}

	for _, match := range items {
		if match.MatchScore < 0 {
			match.MatchScore = 0
		}
		if match.MatchScore > 100 {
			match.MatchScore = 100
		}
	}

	return &jobs.Matches{Items: items}, nil
}

func extractList(payload any) ([]any, error) {
	switch v := payload.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, ok := v["matches"].([]any); ok {
			return list, nil
		}

		// Fall back to the first list-valued entry, in key order for
		// determinism.
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if list, ok := v[key].([]any); ok {
				return list, nil
			}
		}

		return nil, fmt.Errorf("response object carries no list value")
	default:
		return nil, fmt.Errorf("unexpected response shape %T", payload)
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
