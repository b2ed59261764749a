package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	// DefaultCurationWindow bounds how old an article may be to compete for
	// curation. Earlier revisions used 30 days; tune through config.
	DefaultCurationWindow = 3 * 24 * time.Hour

	MaxCurationCandidates = 500
	TopFiveSize           = 5
	CuratedSize           = 15
)

// PositiveTerms is the vocabulary rewarded by the curation score.
var PositiveTerms = []string{
	"growth", "innovation", "success", "breakthrough", "launch", "funding",
	"profit", "advance", "development", "opportunity", "market", "technology",
	"ai", "startup",
}

var boostedCategories = map[string]struct{}{
	"technology": {},
	"business":   {},
}

type Selection struct {
	TopFive []int64 `json:"topFive"`
	Curated []int64 `json:"curated"`
}

type Selector struct {
	window time.Duration
	dedup  *Deduplicator
	now    func() time.Time
}

func NewSelector(window time.Duration) *Selector {
	if window <= 0 {
		window = DefaultCurationWindow
	}
	return &Selector{
		window: window,
		dedup:  NewDeduplicator(),
		now:    time.Now,
	}
}

// Run picks the top five and curated article ids. The two sets are disjoint.
func (s *Selector) Run(articles []news.Article, blocked []string) Selection {
	now := s.now()

	cutoff := now.Add(-s.window)
	recent := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if !a.PublishedAt.Before(cutoff) {
			recent = append(recent, a)
		}
	}

	eligible := s.dedup.run(dropBlocked(recent, blocked), now)

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].PublishedAt.After(eligible[j].PublishedAt)
	})
	if len(eligible) > MaxCurationCandidates {
		eligible = eligible[:MaxCurationCandidates]
	}

	type scored struct {
		id    int64
		score float64
	}
	ranked := make([]scored, 0, len(eligible))
	for _, a := range eligible {
		ranked = append(ranked, scored{id: a.ID, score: s.Score(a, now)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	selection := Selection{TopFive: []int64{}, Curated: []int64{}}
	for i, r := range ranked {
		switch {
		case i < TopFiveSize:
			selection.TopFive = append(selection.TopFive, r.id)
		case i < TopFiveSize+CuratedSize:
			selection.Curated = append(selection.Curated, r.id)
		}
	}

	slog.Debug("Curation selected",
		"input", len(articles),
		"recent", len(recent),
		"eligible", len(eligible),
		"top_five", len(selection.TopFive),
		"curated", len(selection.Curated))

	return selection
}

// Score rates an article for curation: sentiment, positive vocabulary,
// boosted categories and freshness.
func (s *Selector) Score(a news.Article, now time.Time) float64 {
	score := a.Sentiment

	for _, term := range PositiveTerms {
		if matchesText(a, term) {
			score += 0.1
		}
	}

	if _, ok := boostedCategories[strings.ToLower(strings.TrimSpace(a.Category))]; ok {
		score += 0.2
	}

	if now.Sub(a.PublishedAt) < 24*time.Hour {
		score += 0.1
	}

	return score
}

type CurationStore interface {
	GetArticles(ctx context.Context) ([]news.Article, error)
	GetKeywordsByType(ctx context.Context, keywordType news.KeywordType) ([]news.Keyword, error)
	SetCurationFlagsBulk(ctx context.Context, topFive, curated []int64) error
}

// Curator runs a selection over the whole stored article set and persists
// the resulting flags in one transaction.
type Curator struct {
	store    CurationStore
	selector *Selector
}

func NewCurator(store CurationStore, selector *Selector) *Curator {
	return &Curator{store: store, selector: selector}
}

func (c *Curator) Run(ctx context.Context) (Selection, error) {
	start := time.Now()

	articles, err := c.store.GetArticles(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to load articles: %w", err)
	}

	blocked, err := c.store.GetKeywordsByType(ctx, news.KeywordBlocked)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to load blocked keywords: %w", err)
	}

	selection := c.selector.Run(articles, news.Terms(blocked))

	if err := c.store.SetCurationFlagsBulk(ctx, selection.TopFive, selection.Curated); err != nil {
		return Selection{}, fmt.Errorf("failed to persist curation flags: %w", err)
	}

	slog.Info("Curation completed",
		"articles", len(articles),
		"top_five", len(selection.TopFive),
		"curated", len(selection.Curated),
		"duration", time.Since(start))

	return selection, nil
}
