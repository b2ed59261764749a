package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDeduplicator() *Deduplicator {
	d := NewDeduplicator()
	d.now = fixedClock
	return d
}

func ids(articles []news.Article) []int64 {
	out := make([]int64, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestDeduplicator_Empty(t *testing.T) {
	result := newTestDeduplicator().Run(nil)
	require.NotNil(t, result)
	assert.Empty(t, result)
}

func TestDeduplicator_DropsSameURL(t *testing.T) {
	articles := []news.Article{
		{ID: 1, Title: "First", URL: "https://a.com/story?utm_source=x", Sentiment: 0.1},
		{ID: 2, Title: "Second", URL: "https://A.com/story/", Sentiment: 0.9},
	}

	result := newTestDeduplicator().Run(articles)

	assert.Equal(t, []int64{1}, ids(result))
}

func TestDeduplicator_KeepsHigherQualityOnTitleMatch(t *testing.T) {
	a := news.Article{
		ID:          1,
		Title:       "Solar Power Breaks Records",
		URL:         "https://a.com/solar",
		Summary:     strings.Repeat("x", 200),
		Sentiment:   0.9,
		PublishedAt: testNow,
	}
	b := news.Article{
		ID:          2,
		Title:       "  solar power breaks records ",
		URL:         "https://b.com/solar",
		Summary:     strings.Repeat("y", 50),
		Sentiment:   0.5,
		PublishedAt: testNow.AddDate(0, 0, -10),
	}

	assert.Equal(t, []int64{1}, ids(newTestDeduplicator().Run([]news.Article{a, b})))
	assert.Equal(t, []int64{1}, ids(newTestDeduplicator().Run([]news.Article{b, a})))
}

func TestDeduplicator_ReplacementReleasesOldURL(t *testing.T) {
	low := news.Article{ID: 1, Title: "Same", URL: "https://a.com/1", Sentiment: 0.1, PublishedAt: testNow}
	high := news.Article{ID: 2, Title: "same", URL: "https://a.com/2", Sentiment: 0.9, PublishedAt: testNow}
	reuse := news.Article{ID: 3, Title: "Different", URL: "https://a.com/1", Sentiment: 0.5, PublishedAt: testNow}

	result := newTestDeduplicator().Run([]news.Article{low, high, reuse})

	assert.Equal(t, []int64{2, 3}, ids(result))
}

func TestDeduplicator_EvictedTitleStaysSeen(t *testing.T) {
	summary := "alpha bravo charlie delta hotel india juliet lima quebec"
	first := news.Article{ID: 1, Title: "Town opens park", URL: "https://a.com/1", Summary: summary + " oscar", Sentiment: 0.2, PublishedAt: testNow}
	similar := news.Article{ID: 2, Title: "Park opening draws crowds", URL: "https://b.com/2", Summary: summary + " papa", Sentiment: 0.9, PublishedAt: testNow}
	sameTitle := news.Article{ID: 3, Title: "Town Opens Park", URL: "https://c.com/3", Summary: "Entirely unrelated wording here", Sentiment: 0.3, PublishedAt: testNow}

	require.Greater(t, Similarity(first.Summary, similar.Summary), SimilarityThreshold)

	result := newTestDeduplicator().Run([]news.Article{first, similar, sameTitle})

	assert.Equal(t, []int64{2}, ids(result))
}

func TestDeduplicator_SimilarityBoundary(t *testing.T) {
	base := "alpha bravo charlie delta hotel india juliet lima"

	t.Run("exactly 0.8 is kept", func(t *testing.T) {
		first := base + " oscar"
		second := base + " papa"
		assert.InDelta(t, 0.8, Similarity(first, second), 1e-9)

		articles := []news.Article{
			{ID: 1, Title: "One", URL: "https://a.com/1", Summary: first},
			{ID: 2, Title: "Two", URL: "https://a.com/2", Summary: second},
		}
		assert.Len(t, newTestDeduplicator().Run(articles), 2)
	})

	t.Run("above 0.8 is a duplicate", func(t *testing.T) {
		first := base + " quebec oscar"
		second := base + " quebec papa"
		assert.Greater(t, Similarity(first, second), 0.81)

		articles := []news.Article{
			{ID: 1, Title: "One", URL: "https://a.com/1", Summary: first, Sentiment: 0.2, PublishedAt: testNow},
			{ID: 2, Title: "Two", URL: "https://a.com/2", Summary: second, Sentiment: 0.8, PublishedAt: testNow},
		}
		assert.Equal(t, []int64{2}, ids(newTestDeduplicator().Run(articles)))
	})
}

func TestSimilarity_ShortWordsIgnored(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "something longer"))
	assert.Equal(t, 0.0, Similarity("a an the", "a an the"))
	assert.Equal(t, 1.0, Similarity("Markets Rally Today", "today markets rally!"))
}

func TestQualityScore(t *testing.T) {
	a := news.Article{
		Sentiment:   0.5,
		Summary:     strings.Repeat("z", 400),
		PublishedAt: testNow.AddDate(0, 0, -5),
	}
	assert.InDelta(t, 50+20+25, QualityScore(a, testNow), 1e-9)

	long := news.Article{Summary: strings.Repeat("z", 5000), PublishedAt: testNow.AddDate(0, 0, -90)}
	assert.InDelta(t, 50, QualityScore(long, testNow), 1e-9)
}
