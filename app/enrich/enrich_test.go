package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicKeywords(t *testing.T) {
	text := "The Startup's breakthrough: solar panels, cheaper solar panels and more jobs for the town!"

	keywords := BasicKeywords(text)

	assert.Equal(t, []string{"startups", "breakthrough", "solar", "panels", "cheaper", "jobs", "town"}, keywords)
}

func TestBasicKeywords_MaxTen(t *testing.T) {
	text := "alpha bravo charlie delta hotel india juliet lima oscar papa quebec romeo sierra"

	keywords := BasicKeywords(text)

	assert.Len(t, keywords, MaxKeywords)
	assert.Equal(t, "alpha", keywords[0])
	assert.Equal(t, "papa", keywords[9])
}

func TestBasicKeywords_StopWordsAndShortWords(t *testing.T) {
	assert.Empty(t, BasicKeywords("they said that this would have been the end"))
	assert.Empty(t, BasicKeywords(""))
}

func TestDefaultSentiment(t *testing.T) {
	assert.Equal(t, 0.7, DefaultSentiment())

	s, err := NewHeuristic().AnalyzeSentiment(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 0.7, s.Rating)
}

func TestHeuristicSummarize(t *testing.T) {
	h := NewHeuristic()

	short, err := h.Summarize(context.Background(), "Title", "  A short   body. ")
	require.NoError(t, err)
	assert.Equal(t, "A short body.", short)

	empty, _ := h.Summarize(context.Background(), "Title", "")
	assert.Equal(t, "Title", empty)

	long := strings.Repeat("This sentence keeps going on. ", 30)
	summary, _ := h.Summarize(context.Background(), "Title", long)
	assert.LessOrEqual(t, len([]rune(summary)), maxSummaryRunes)
	assert.True(t, strings.HasSuffix(summary, "."))
}

type stubEnricher struct {
	sentiment Sentiment
	keywords  []string
	summary   string
	err       error
}

func (s *stubEnricher) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	return s.sentiment, s.err
}

func (s *stubEnricher) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	return s.keywords, s.err
}

func (s *stubEnricher) Summarize(ctx context.Context, title, content string) (string, error) {
	return s.summary, s.err
}

func TestFallback_UsesPrimary(t *testing.T) {
	f := NewFallback(&stubEnricher{
		sentiment: Sentiment{Rating: 1.4, Confidence: 0.9},
		keywords:  []string{"Solar", "solar", " Grid "},
		summary:   " Short. ",
	})

	s, err := f.AnalyzeSentiment(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Rating)

	keywords, err := f.ExtractKeywords(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"solar", "grid"}, keywords)

	summary, err := f.Summarize(context.Background(), "t", "c")
	require.NoError(t, err)
	assert.Equal(t, "Short.", summary)
}

func TestFallback_DegradesOnError(t *testing.T) {
	f := NewFallback(&stubEnricher{err: errors.New("quota exceeded")})

	s, err := f.AnalyzeSentiment(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, DefaultSentiment(), s.Rating)

	keywords, err := f.ExtractKeywords(context.Background(), "Renewable energy investments")
	require.NoError(t, err)
	assert.Equal(t, []string{"renewable", "energy", "investments"}, keywords)

	summary, err := f.Summarize(context.Background(), "t", "Body text.")
	require.NoError(t, err)
	assert.Equal(t, "Body text.", summary)
}

func TestFallback_NilPrimary(t *testing.T) {
	f := NewFallback(nil)

	s, err := f.AnalyzeSentiment(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, DefaultSentiment(), s.Rating)
}

type stubGenerator struct {
	reply  string
	err    error
	prompt string
}

func (s *stubGenerator) generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestGemini_ParsesJSONReplies(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n{\"rating\": 0.85, \"confidence\": 0.6}\n```"}
	g := &Gemini{jsonGen: gen, textGen: gen}

	s, err := g.AnalyzeSentiment(context.Background(), "Great news")
	require.NoError(t, err)
	assert.Equal(t, 0.85, s.Rating)
	assert.Contains(t, gen.prompt, "Great news")

	gen.reply = `{"keywords": ["Clean Energy", "jobs", "jobs"]}`
	keywords, err := g.ExtractKeywords(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"clean energy", "jobs"}, keywords)
}

func TestGemini_Errors(t *testing.T) {
	g := &Gemini{jsonGen: &stubGenerator{reply: "not json"}, textGen: &stubGenerator{err: errors.New("boom")}}

	_, err := g.AnalyzeSentiment(context.Background(), "x")
	assert.Error(t, err)

	_, err = g.Summarize(context.Background(), "t", "c")
	assert.Error(t, err)
}

func TestClip(t *testing.T) {
	long := strings.Repeat("a", maxPromptRunes+10)
	assert.True(t, strings.HasSuffix(clip(long), "[TRUNCATED]"))
	assert.Equal(t, "a b", clip(" a \n b "))
}
