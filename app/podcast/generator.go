package podcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	MaxEpisodeArticles = 8
	wordsPerMinute     = 150
)

var ErrNoArticles = errors.New("no articles available for a podcast")

type ArticleSource interface {
	GetArticles(ctx context.Context) ([]news.Article, error)
	GetArticlesByFlag(ctx context.Context, state news.CurationState) ([]news.Article, error)
	GetArticlesByIDs(ctx context.Context, ids []int64) ([]news.Article, error)
}

type Personalizer interface {
	Run(ctx context.Context, articles []news.Article, userID string) ([]news.FilteredArticle, error)
}

type Store interface {
	CreatePodcast(ctx context.Context, p news.Podcast) error
	UpdatePodcast(ctx context.Context, p news.Podcast) error
	GetPodcast(ctx context.Context, id string) (*news.Podcast, error)
}

// ScriptWriter turns the episode's articles into a spoken script.
type ScriptWriter interface {
	WriteScript(ctx context.Context, title string, articles []news.Article) (string, error)
}

// Synthesizer renders a script to audio and returns where it can be played.
type Synthesizer interface {
	Synthesize(ctx context.Context, script string) (string, error)
}

type Generator struct {
	articles     ArticleSource
	personalizer Personalizer
	store        Store
	writer       ScriptWriter
	synthesizer  Synthesizer
	now          func() time.Time
}

// NewGenerator builds a podcast generator. writer and synthesizer are
// optional: without a writer the templated script is used, without a
// synthesizer episodes have no audio.
func NewGenerator(articles ArticleSource, personalizer Personalizer, store Store, writer ScriptWriter, synthesizer Synthesizer) *Generator {
	return &Generator{
		articles:     articles,
		personalizer: personalizer,
		store:        store,
		writer:       writer,
		synthesizer:  synthesizer,
		now:          time.Now,
	}
}

// Generate creates a new episode from the user's personalized selection.
func (g *Generator) Generate(ctx context.Context, userID string) (*news.Podcast, error) {
	selected, err := g.pool(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrNoArticles
	}

	now := g.now().UTC()
	p := news.Podcast{
		ID:        uuid.NewString(),
		Title:     episodeTitle(now),
		CreatedAt: now,
	}
	g.compose(ctx, &p, selected)

	p.IsProcessing = g.synthesizer != nil
	if err := g.store.CreatePodcast(ctx, p); err != nil {
		return nil, err
	}

	if err := g.synthesize(ctx, &p); err != nil {
		return nil, err
	}

	slog.Info("Podcast generated", "id", p.ID, "articles", len(p.ArticleIDs), "duration", p.Duration, "audio", p.AudioURL != "")
	return &p, nil
}

// Regenerate rebuilds the script and audio of an existing episode from its
// articles, or from a fresh selection when none of them remain. It returns
// nil when the podcast does not exist.
func (g *Generator) Regenerate(ctx context.Context, id, userID string) (*news.Podcast, error) {
	p, err := g.store.GetPodcast(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}

	selected, err := g.articles.GetArticlesByIDs(ctx, p.ArticleIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		if selected, err = g.pool(ctx, userID); err != nil {
			return nil, err
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoArticles
	}

	g.compose(ctx, p, selected)
	p.AudioURL = ""
	p.IsProcessing = g.synthesizer != nil
	if err := g.store.UpdatePodcast(ctx, *p); err != nil {
		return nil, err
	}

	if err := g.synthesize(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("Podcast regenerated", "id", p.ID, "articles", len(p.ArticleIDs))
	return p, nil
}

// pool picks up to MaxEpisodeArticles from the personalized curated and top
// five articles, widening to every article when those are filtered away.
func (g *Generator) pool(ctx context.Context, userID string) ([]news.Article, error) {
	topFive, err := g.articles.GetArticlesByFlag(ctx, news.CurationTopFive)
	if err != nil {
		return nil, fmt.Errorf("failed to load top five: %w", err)
	}
	curated, err := g.articles.GetArticlesByFlag(ctx, news.CurationCurated)
	if err != nil {
		return nil, fmt.Errorf("failed to load curated articles: %w", err)
	}

	filtered, err := g.personalizer.Run(ctx, append(topFive, curated...), userID)
	if err != nil {
		return nil, err
	}

	if len(filtered) == 0 {
		all, err := g.articles.GetArticles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load articles: %w", err)
		}
		if filtered, err = g.personalizer.Run(ctx, all, userID); err != nil {
			return nil, err
		}
	}

	selected := make([]news.Article, 0, MaxEpisodeArticles)
	for _, f := range filtered {
		if len(selected) == MaxEpisodeArticles {
			break
		}
		selected = append(selected, f.Article)
	}
	return selected, nil
}

func (g *Generator) compose(ctx context.Context, p *news.Podcast, articles []news.Article) {
	p.ArticleIDs = make([]int64, 0, len(articles))
	for _, a := range articles {
		p.ArticleIDs = append(p.ArticleIDs, a.ID)
	}

	p.Transcript = ""
	if g.writer != nil {
		script, err := g.writer.WriteScript(ctx, p.Title, articles)
		if err != nil {
			slog.Warn("Script generation failed, using template", "error", err)
		} else {
			p.Transcript = script
		}
	}
	if strings.TrimSpace(p.Transcript) == "" {
		p.Transcript = TemplateScript(p.Title, articles)
	}

	p.Description = describe(articles)
	p.Duration = EstimateDuration(p.Transcript)
}

// synthesize renders audio when a synthesizer is configured. A failed
// synthesis leaves the episode without audio but still available.
func (g *Generator) synthesize(ctx context.Context, p *news.Podcast) error {
	if g.synthesizer == nil {
		return nil
	}

	audioURL, err := g.synthesizer.Synthesize(ctx, p.Transcript)
	if err != nil {
		slog.Warn("Audio synthesis failed, podcast has no audio", "id", p.ID, "error", err)
		audioURL = ""
	}

	p.AudioURL = audioURL
	p.IsProcessing = false
	return g.store.UpdatePodcast(ctx, *p)
}

// EstimateDuration returns the spoken length of script in seconds.
func EstimateDuration(script string) int {
	words := len(strings.Fields(script))
	if words == 0 {
		return 0
	}
	return max(1, words*60/wordsPerMinute)
}

// TemplateScript is the script used when no writer is available.
func TemplateScript(title string, articles []news.Article) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Welcome to %s. Here are %d stories to brighten your day.\n\n", title, len(articles))
	for i, a := range articles {
		switch i {
		case 0:
			sb.WriteString("First up")
		case len(articles) - 1:
			sb.WriteString("And finally")
		default:
			sb.WriteString("Next")
		}
		fmt.Fprintf(&sb, ", from %s: %s. %s\n\n", a.Source, strings.TrimSuffix(a.Title, "."), a.Summary)
	}
	sb.WriteString("That's all for today. Thanks for listening, and stay bright.")
	return sb.String()
}

func episodeTitle(t time.Time) string {
	return "BrightBuzz Daily: " + t.Format("Monday, January 2")
}

func describe(articles []news.Article) string {
	seen := make(map[string]struct{})
	var sources []string
	for _, a := range articles {
		if a.Source == "" {
			continue
		}
		if _, ok := seen[a.Source]; ok {
			continue
		}
		seen[a.Source] = struct{}{}
		sources = append(sources, a.Source)
	}

	if len(sources) == 0 {
		return fmt.Sprintf("%d uplifting stories.", len(articles))
	}
	return fmt.Sprintf("%d uplifting stories from %s.", len(articles), strings.Join(sources, ", "))
}
