package podcast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

type fakeArticles struct {
	all []news.Article
}

func (f *fakeArticles) GetArticles(ctx context.Context) ([]news.Article, error) {
	return f.all, nil
}

func (f *fakeArticles) GetArticlesByFlag(ctx context.Context, state news.CurationState) ([]news.Article, error) {
	var out []news.Article
	for _, a := range f.all {
		if a.Curation == state {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticles) GetArticlesByIDs(ctx context.Context, ids []int64) ([]news.Article, error) {
	var out []news.Article
	for _, id := range ids {
		for _, a := range f.all {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

// passPersonalizer keeps articles at or above a sentiment floor, in order.
type passPersonalizer struct {
	floor float64
	calls int
}

func (p *passPersonalizer) Run(ctx context.Context, articles []news.Article, userID string) ([]news.FilteredArticle, error) {
	p.calls++
	out := []news.FilteredArticle{}
	for _, a := range articles {
		if a.Sentiment >= p.floor {
			out = append(out, news.FilteredArticle{Article: a})
		}
	}
	return out, nil
}

type memoryPodcasts struct {
	byID    map[string]news.Podcast
	updates []news.Podcast
}

func newMemoryPodcasts() *memoryPodcasts {
	return &memoryPodcasts{byID: make(map[string]news.Podcast)}
}

func (m *memoryPodcasts) CreatePodcast(ctx context.Context, p news.Podcast) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memoryPodcasts) UpdatePodcast(ctx context.Context, p news.Podcast) error {
	m.byID[p.ID] = p
	m.updates = append(m.updates, p)
	return nil
}

func (m *memoryPodcasts) GetPodcast(ctx context.Context, id string) (*news.Podcast, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type stubWriter struct {
	script string
	err    error
}

func (s *stubWriter) WriteScript(ctx context.Context, title string, articles []news.Article) (string, error) {
	return s.script, s.err
}

type stubSynthesizer struct {
	url string
	err error
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, script string) (string, error) {
	return s.url, s.err
}

func testArticles() []news.Article {
	var out []news.Article
	for i := 1; i <= 12; i++ {
		state := news.CurationNone
		switch {
		case i <= 2:
			state = news.CurationTopFive
		case i <= 10:
			state = news.CurationCurated
		}
		out = append(out, news.Article{
			ID:        int64(i),
			Title:     fmt.Sprintf("Story %d", i),
			Summary:   fmt.Sprintf("Summary %d.", i),
			Source:    []string{"Good News", "Daily Smile"}[i%2],
			Sentiment: 0.9,
			Curation:  state,
		})
	}
	return out
}

func newTestGenerator(articles *fakeArticles, personalizer Personalizer, store Store, writer ScriptWriter, synth Synthesizer) *Generator {
	g := NewGenerator(articles, personalizer, store, writer, synth)
	g.now = func() time.Time { return time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerate_TemplateWithoutAudio(t *testing.T) {
	store := newMemoryPodcasts()
	g := newTestGenerator(&fakeArticles{all: testArticles()}, &passPersonalizer{}, store, nil, nil)

	p, err := g.Generate(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "BrightBuzz Daily: Monday, March 10", p.Title)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, p.ArticleIDs)
	assert.Contains(t, p.Transcript, "First up, from Daily Smile: Story 1.")
	assert.Contains(t, p.Transcript, "And finally")
	assert.Empty(t, p.AudioURL)
	assert.False(t, p.IsProcessing)
	assert.Equal(t, EstimateDuration(p.Transcript), p.Duration)
	assert.Equal(t, "8 uplifting stories from Daily Smile, Good News.", p.Description)

	stored, _ := store.GetPodcast(context.Background(), p.ID)
	assert.Equal(t, p.Transcript, stored.Transcript)
}

func TestGenerate_WithWriterAndAudio(t *testing.T) {
	store := newMemoryPodcasts()
	g := newTestGenerator(&fakeArticles{all: testArticles()}, &passPersonalizer{}, store,
		&stubWriter{script: "Good morning listeners."}, &stubSynthesizer{url: "https://cdn.example/ep.mp3"})

	p, err := g.Generate(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "Good morning listeners.", p.Transcript)
	assert.Equal(t, "https://cdn.example/ep.mp3", p.AudioURL)
	assert.False(t, p.IsProcessing)
	require.Len(t, store.updates, 1)
	assert.False(t, store.updates[0].IsProcessing)
}

func TestGenerate_FallbacksOnFailures(t *testing.T) {
	store := newMemoryPodcasts()
	g := newTestGenerator(&fakeArticles{all: testArticles()}, &passPersonalizer{}, store,
		&stubWriter{err: errors.New("quota")}, &stubSynthesizer{err: errors.New("tts down")})

	p, err := g.Generate(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.Transcript, "Welcome to BrightBuzz Daily"))
	assert.Empty(t, p.AudioURL)
	assert.False(t, p.IsProcessing)
}

func TestGenerate_WidensPoolWhenCuratedFiltered(t *testing.T) {
	articles := testArticles()
	for i := range articles[:10] {
		articles[i].Sentiment = 0.2
	}
	personalizer := &passPersonalizer{floor: 0.5}
	g := newTestGenerator(&fakeArticles{all: articles}, personalizer, newMemoryPodcasts(), nil, nil)

	p, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, p.ArticleIDs)
	assert.Equal(t, 2, personalizer.calls)
}

func TestGenerate_NoArticles(t *testing.T) {
	g := newTestGenerator(&fakeArticles{}, &passPersonalizer{}, newMemoryPodcasts(), nil, nil)

	_, err := g.Generate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoArticles)
}

func TestRegenerate(t *testing.T) {
	store := newMemoryPodcasts()
	articles := &fakeArticles{all: testArticles()}
	writer := &stubWriter{script: "First draft."}
	g := newTestGenerator(articles, &passPersonalizer{}, store, writer, nil)

	p, err := g.Generate(context.Background(), "")
	require.NoError(t, err)

	writer.script = "Second draft with more words."
	again, err := g.Regenerate(context.Background(), p.ID, "")
	require.NoError(t, err)
	require.NotNil(t, again)

	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, p.ArticleIDs, again.ArticleIDs)
	assert.Equal(t, "Second draft with more words.", again.Transcript)

	missing, err := g.Regenerate(context.Background(), "nope", "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEstimateDuration(t *testing.T) {
	assert.Equal(t, 0, EstimateDuration(""))
	assert.Equal(t, 1, EstimateDuration("hi"))
	assert.Equal(t, 60, EstimateDuration(strings.Repeat("word ", 150)))
}

func TestHTTPSynthesizer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		w.Write([]byte(`{"audioUrl":"https://cdn.example/a.mp3"}`))
	}))
	defer server.Close()

	url, err := NewHTTPSynthesizer(server.Client(), server.URL, "key", "").Synthesize(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.mp3", url)

	_, err = NewHTTPSynthesizer(server.Client(), server.URL, "wrong", "").Synthesize(context.Background(), "Hello")
	assert.Error(t, err)
}
