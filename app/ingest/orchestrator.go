package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bright-buzz/brightbuzz-app/app/enrich"
	"github.com/bright-buzz/brightbuzz-app/app/feed"
	"github.com/bright-buzz/brightbuzz-app/app/news"
	"github.com/bright-buzz/brightbuzz-app/app/pipeline"
)

const (
	DefaultRefreshInterval = 15 * time.Minute
	DefaultMinNewArticles  = 10
	DefaultAIEnrichLimit   = 20

	summarizeAboveRunes = 600
)

type State int

const (
	StateIdle State = iota
	StateFetching
	StateProcessing
	StateCurating
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateProcessing:
		return "processing"
	case StateCurating:
		return "curating"
	default:
		return "idle"
	}
}

type FeedSource interface {
	FetchCandidates(ctx context.Context) (feed.FetchResult, error)
}

type SupplementSource interface {
	Search(ctx context.Context, query string) ([]news.Candidate, error)
}

type ArticleStore interface {
	CreateArticle(ctx context.Context, a news.Article) (*news.Article, bool, error)
}

type CurationRunner interface {
	Run(ctx context.Context) (pipeline.Selection, error)
}

// Indexer receives newly stored articles, for example to make them searchable.
type Indexer interface {
	Index(ctx context.Context, articles []news.Article) error
}

// Options tunes an Orchestrator. MinNewArticles is the new article count
// below which the supplement source is queried: zero never queries it and a
// negative value selects DefaultMinNewArticles.
type Options struct {
	RefreshInterval  time.Duration
	MinNewArticles   int
	AIEnrichLimit    int
	SupplementQuery  string
	SupplementSource SupplementSource
	Indexer          Indexer
}

// Summary reports what one FetchLatestNews call did.
type Summary struct {
	Skipped       bool
	Fetched       int
	FeedsFailed   int
	Malformed     int
	Duplicates    int
	Created       int
	Existing      int
	PersistFailed int
	Supplemented  int
	TopFive       int
	Curated       int
	Failed        bool
}

// Orchestrator runs the ingestion cycle: fetch, enrich, deduplicate,
// persist, supplement and curate. Overlapping runs are tolerated since
// inserts are idempotent; only the state fields are guarded.
type Orchestrator struct {
	source   FeedSource
	enricher enrich.Enricher
	store    ArticleStore
	curator  CurationRunner
	dedup    *pipeline.Deduplicator
	opts     Options
	now      func() time.Time

	mu            sync.Mutex
	state         State
	lastFetchTime time.Time
}

func NewOrchestrator(source FeedSource, enricher enrich.Enricher, store ArticleStore, curator CurationRunner, opts Options) *Orchestrator {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.MinNewArticles < 0 {
		opts.MinNewArticles = DefaultMinNewArticles
	}
	if opts.AIEnrichLimit < 0 {
		opts.AIEnrichLimit = 0
	}
	if opts.SupplementQuery == "" {
		opts.SupplementQuery = feed.DefaultNewsAPIQuery
	}
	if enricher == nil {
		enricher = enrich.NewHeuristic()
	}

	return &Orchestrator{
		source:   source,
		enricher: enricher,
		store:    store,
		curator:  curator,
		dedup:    pipeline.NewDeduplicator(),
		opts:     opts,
		now:      time.Now,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) LastFetchTime() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastFetchTime
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// FetchLatestNews runs one ingestion cycle. Unless forced, it returns
// immediately when the previous successful run is more recent than the
// refresh interval. Failures are logged and reported in the summary; the
// next call retries.
func (o *Orchestrator) FetchLatestNews(ctx context.Context, force bool) Summary {
	start := o.now()

	if !force {
		last := o.LastFetchTime()
		if !last.IsZero() && start.Sub(last) < o.opts.RefreshInterval {
			slog.Debug("Skipping fetch, refreshed recently", "last_fetch", last, "interval", o.opts.RefreshInterval)
			return Summary{Skipped: true}
		}
	}

	defer o.setState(StateIdle)

	var summary Summary

	o.setState(StateFetching)
	result, err := o.source.FetchCandidates(ctx)
	if err != nil {
		slog.Error("Failed to fetch news", "error", err)
		summary.Failed = true
		return summary
	}
	summary.Fetched = len(result.Candidates)
	summary.FeedsFailed = result.FeedsFailed

	o.setState(StateProcessing)
	created := o.ingest(ctx, result.Candidates, &summary)

	if summary.Created < o.opts.MinNewArticles && o.opts.SupplementSource != nil {
		extra, err := o.opts.SupplementSource.Search(ctx, o.opts.SupplementQuery)
		if err != nil {
			slog.Warn("Supplementary news source failed", "error", err)
		} else {
			before := summary.Created
			summary.Fetched += len(extra)
			created = append(created, o.ingest(ctx, extra, &summary)...)
			summary.Supplemented = summary.Created - before
		}
	}

	if o.opts.Indexer != nil && len(created) > 0 {
		if err := o.opts.Indexer.Index(ctx, created); err != nil {
			slog.Warn("Failed to index new articles", "error", err)
		}
	}

	o.setState(StateCurating)
	selection, err := o.curator.Run(ctx)
	if err != nil {
		slog.Error("Curation failed", "error", err)
		summary.Failed = true
		return summary
	}
	summary.TopFive = len(selection.TopFive)
	summary.Curated = len(selection.Curated)

	o.mu.Lock()
	o.lastFetchTime = o.now()
	o.mu.Unlock()

	slog.Info("News refresh completed",
		"duration", o.now().Sub(start),
		"fetched", summary.Fetched,
		"malformed", summary.Malformed,
		"duplicates", summary.Duplicates,
		"created", summary.Created,
		"existing", summary.Existing,
		"supplemented", summary.Supplemented,
		"feeds_failed", summary.FeedsFailed)

	return summary
}

// ingest converts, enriches, deduplicates and stores candidates, returning
// the newly created articles.
func (o *Orchestrator) ingest(ctx context.Context, candidates []news.Candidate, summary *Summary) []news.Article {
	articles := make([]news.Article, 0, len(candidates))
	for _, c := range candidates {
		if !c.Valid() {
			summary.Malformed++
			continue
		}
		articles = append(articles, o.toArticle(ctx, c, len(articles) < o.opts.AIEnrichLimit))
	}

	unique := o.dedup.Run(articles)
	summary.Duplicates += len(articles) - len(unique)

	var created []news.Article
	for _, a := range unique {
		stored, isNew, err := o.store.CreateArticle(ctx, a)
		if err != nil {
			slog.Error("Failed to store article", "url", a.URL, "error", err)
			summary.PersistFailed++
			continue
		}
		if isNew {
			summary.Created++
			created = append(created, *stored)
		} else {
			summary.Existing++
		}
	}
	return created
}

// toArticle builds an article from a candidate. The configured enricher is
// used for the first articles of a run, the heuristic for the rest.
func (o *Orchestrator) toArticle(ctx context.Context, c news.Candidate, useAI bool) news.Article {
	var enricher enrich.Enricher = enrich.NewHeuristic()
	if useAI {
		enricher = o.enricher
	}

	a := news.Article{
		Title:       c.Title,
		Summary:     c.Summary,
		Content:     c.Content,
		Source:      c.Source,
		URL:         news.NormalizeURL(c.Link),
		ImageURL:    c.ImageURL,
		Category:    c.Category,
		ReadTime:    news.ReadTime(c.Content),
		Sentiment:   enrich.DefaultSentiment(),
		PublishedAt: c.PublishedAt,
	}

	if s, err := enricher.AnalyzeSentiment(ctx, c.Title+". "+c.Summary); err == nil {
		a.Sentiment = news.ClampSentiment(s.Rating)
	}

	if keywords, err := enricher.ExtractKeywords(ctx, c.Title+" "+c.Content); err == nil && len(keywords) > 0 {
		a.Keywords = keywords
	} else {
		a.Keywords = enrich.BasicKeywords(c.Title + " " + c.Content)
	}

	if utf8.RuneCountInString(c.Summary) > summarizeAboveRunes {
		if summary, err := enricher.Summarize(ctx, c.Title, c.Content); err == nil && strings.TrimSpace(summary) != "" {
			a.Summary = strings.TrimSpace(summary)
		}
	}

	return a
}
