package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const MaxKeywords = 10

type Sentiment struct {
	Rating     float64 `json:"rating"`
	Confidence float64 `json:"confidence"`
}

// Enricher derives sentiment, keywords and summaries from article text.
// Implementations backed by external services may fail at any call.
type Enricher interface {
	AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error)
	ExtractKeywords(ctx context.Context, text string) ([]string, error)
	Summarize(ctx context.Context, title, content string) (string, error)
}

var (
	_ Enricher = (*Heuristic)(nil)
	_ Enricher = (*Fallback)(nil)
	_ Enricher = (*Gemini)(nil)
)

// Fallback tries the primary enricher first and answers from the heuristic
// whenever it is absent or fails. Its methods never return an error.
type Fallback struct {
	primary   Enricher
	heuristic *Heuristic
}

func NewFallback(primary Enricher) *Fallback {
	return &Fallback{primary: primary, heuristic: NewHeuristic()}
}

func (f *Fallback) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	if f.primary != nil {
		s, err := f.primary.AnalyzeSentiment(ctx, text)
		if err == nil {
			s.Rating = news.ClampSentiment(s.Rating)
			s.Confidence = news.ClampSentiment(s.Confidence)
			return s, nil
		}
		slog.Warn("AI enrichment failed, using heuristic", "operation", "sentiment", "error", err)
	}
	return f.heuristic.AnalyzeSentiment(ctx, text)
}

func (f *Fallback) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	if f.primary != nil {
		keywords, err := f.primary.ExtractKeywords(ctx, text)
		if err == nil && len(keywords) > 0 {
			return normalizeKeywords(keywords), nil
		}
		if err != nil {
			slog.Warn("AI enrichment failed, using heuristic", "operation", "keywords", "error", err)
		}
	}
	return f.heuristic.ExtractKeywords(ctx, text)
}

func (f *Fallback) Summarize(ctx context.Context, title, content string) (string, error) {
	if f.primary != nil {
		summary, err := f.primary.Summarize(ctx, title, content)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary), nil
		}
		if err != nil {
			slog.Warn("AI enrichment failed, using heuristic", "operation", "summary", "error", err)
		}
	}
	return f.heuristic.Summarize(ctx, title, content)
}

// normalizeKeywords lowercases, trims and dedupes keywords, keeping at most
// MaxKeywords in their original order.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(news.Fold(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}
