package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const DefaultFreshnessWindow = 30 * 24 * time.Hour

type FilterStore interface {
	GetKeywordsByType(ctx context.Context, keywordType news.KeywordType) ([]news.Keyword, error)
	GetReplacementPatterns(ctx context.Context, userID string) ([]news.ReplacementPattern, error)
	GetUserPreferences(ctx context.Context, userID string) (*news.UserPreferences, error)
}

// filterConfig is everything one personalization pass needs, resolved up
// front for the caller.
type filterConfig struct {
	blocked     []string
	prioritized []string
	patterns    []*LiteralPattern
	threshold   float64
}

// Personalizer applies the per-request filter pipeline. Stages run in a
// fixed order: dedupe, freshness, blocked keywords, priority scoring, text
// replacement, sentiment threshold, sort.
type Personalizer struct {
	store     FilterStore
	dedup     *Deduplicator
	freshness time.Duration
	now       func() time.Time
}

func NewPersonalizer(store FilterStore, freshness time.Duration) *Personalizer {
	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}
	return &Personalizer{
		store:     store,
		dedup:     NewDeduplicator(),
		freshness: freshness,
		now:       time.Now,
	}
}

// Run filters articles for userID. An empty userID is an anonymous caller:
// global keywords apply, no replacements, default sentiment threshold.
func (p *Personalizer) Run(ctx context.Context, articles []news.Article, userID string) ([]news.FilteredArticle, error) {
	if len(articles) == 0 {
		return []news.FilteredArticle{}, nil
	}

	conf, err := p.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := p.now()
	deduped := p.dedup.run(articles, now)

	cutoff := now.Add(-p.freshness)
	fresh := make([]news.Article, 0, len(deduped))
	for _, a := range deduped {
		if !a.PublishedAt.Before(cutoff) {
			fresh = append(fresh, a)
		}
	}

	allowed := dropBlocked(fresh, conf.blocked)

	result := make([]news.FilteredArticle, 0, len(allowed))
	for _, a := range allowed {
		score := PriorityScore(a, conf.prioritized)

		if len(conf.patterns) > 0 {
			a.Title = ApplyAll(a.Title, conf.patterns)
			a.Summary = ApplyAll(a.Summary, conf.patterns)
		}

		if a.Sentiment < conf.threshold {
			continue
		}

		result = append(result, news.FilteredArticle{Article: a, PriorityScore: score})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].PriorityScore != result[j].PriorityScore {
			return result[i].PriorityScore > result[j].PriorityScore
		}
		return result[i].Sentiment > result[j].Sentiment
	})

	return result, nil
}

func (p *Personalizer) resolve(ctx context.Context, userID string) (filterConfig, error) {
	conf := filterConfig{threshold: news.DefaultSentimentThreshold}

	blocked, err := p.store.GetKeywordsByType(ctx, news.KeywordBlocked)
	if err != nil {
		return conf, fmt.Errorf("failed to load blocked keywords: %w", err)
	}
	prioritized, err := p.store.GetKeywordsByType(ctx, news.KeywordPrioritized)
	if err != nil {
		return conf, fmt.Errorf("failed to load prioritized keywords: %w", err)
	}
	conf.blocked = news.Terms(blocked)
	conf.prioritized = news.Terms(prioritized)

	if userID == "" {
		return conf, nil
	}

	patterns, err := p.store.GetReplacementPatterns(ctx, userID)
	if err != nil {
		return conf, fmt.Errorf("failed to load replacement patterns: %w", err)
	}
	conf.patterns = CompilePatterns(patterns)

	prefs, err := p.store.GetUserPreferences(ctx, userID)
	if err != nil {
		return conf, fmt.Errorf("failed to load user preferences: %w", err)
	}
	if prefs != nil {
		conf.threshold = prefs.SentimentThreshold
	}

	return conf, nil
}
