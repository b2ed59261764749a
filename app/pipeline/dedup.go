package pipeline

import (
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	SimilarityThreshold = 0.8
	similarityMinWordLen = 3
)

type Deduplicator struct {
	now func() time.Time
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{now: time.Now}
}

// Run removes duplicates by URL, normalized title or summary similarity. When
// two articles collide on title or similarity, the one with the higher
// quality score is kept. Output order follows first acceptance.
func (d *Deduplicator) Run(articles []news.Article) []news.Article {
	return d.run(articles, d.now())
}

func (d *Deduplicator) run(articles []news.Article, now time.Time) []news.Article {
	if len(articles) == 0 {
		return []news.Article{}
	}

	accepted := make([]news.Article, 0, len(articles))
	seenURLs := make(map[string]struct{}, len(articles))
	seenByTitle := make(map[string]int, len(articles))

	// The evicted URL is released but its title keeps pointing at the slot,
	// so a later copy of that title still competes with the replacement.
	replace := func(idx int, candidate news.Article, candidateURL string) {
		delete(seenURLs, dedupURL(accepted[idx].URL))
		accepted[idx] = candidate
		seenURLs[candidateURL] = struct{}{}
		seenByTitle[dedupTitle(candidate.Title)] = idx
	}

	for _, candidate := range articles {
		url := dedupURL(candidate.URL)
		title := dedupTitle(candidate.Title)

		if _, ok := seenURLs[url]; ok {
			continue
		}

		if idx, ok := seenByTitle[title]; ok {
			if QualityScore(candidate, now) > QualityScore(accepted[idx], now) {
				replace(idx, candidate, url)
			}
			continue
		}

		if idx := d.similarIndex(candidate, accepted); idx >= 0 {
			if QualityScore(candidate, now) > QualityScore(accepted[idx], now) {
				replace(idx, candidate, url)
			}
			continue
		}

		accepted = append(accepted, candidate)
		seenURLs[url] = struct{}{}
		seenByTitle[title] = len(accepted) - 1
	}

	if removed := len(articles) - len(accepted); removed > 0 {
		slog.Debug("Duplicates removed", "input", len(articles), "removed", removed)
	}

	return accepted
}

func (d *Deduplicator) similarIndex(candidate news.Article, accepted []news.Article) int {
	words := news.WordSet(candidate.Summary, similarityMinWordLen)
	if len(words) == 0 {
		return -1
	}
	for i, a := range accepted {
		if jaccard(words, news.WordSet(a.Summary, similarityMinWordLen)) > SimilarityThreshold {
			return i
		}
	}
	return -1
}

// Similarity is the Jaccard index of the words longer than three runes in a
// and b. Empty word sets yield 0.
func Similarity(a, b string) float64 {
	return jaccard(news.WordSet(a, similarityMinWordLen), news.WordSet(b, similarityMinWordLen))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// QualityScore breaks ties between duplicates, rewarding positive, detailed and
// fresh articles.
func QualityScore(a news.Article, now time.Time) float64 {
	length := math.Min(50, float64(utf8.RuneCountInString(a.Summary))/20)
	ageDays := now.Sub(a.PublishedAt).Hours() / 24
	freshness := math.Max(0, 30-ageDays)
	return a.Sentiment*100 + length + freshness
}

func dedupTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func dedupURL(url string) string {
	return strings.ToLower(news.NormalizeURL(url))
}
