package api

import (
	"context"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/database"
	"github.com/bright-buzz/brightbuzz-app/app/feed"
	"github.com/bright-buzz/brightbuzz-app/app/ingest"
	"github.com/bright-buzz/brightbuzz-app/app/news"
	"github.com/bright-buzz/brightbuzz-app/app/pipeline"
	"github.com/bright-buzz/brightbuzz-app/app/podcast"
	"github.com/bright-buzz/brightbuzz-app/app/search"
	"github.com/bright-buzz/brightbuzz-app/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []news.Article) (string, error)
}

type Personalizer interface {
	Run(ctx context.Context, articles []news.Article, userID string) ([]news.FilteredArticle, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]int64, error)
}

type PodcastGenerator interface {
	Generate(ctx context.Context, userID string) (*news.Podcast, error)
	Regenerate(ctx context.Context, id, userID string) (*news.Podcast, error)
}

// NewsService is the ingestion cycle as seen by the API.
type NewsService interface {
	tasks.NewsFetcher
	State() ingest.State
	LastFetchTime() time.Time
}

var (
	_ GeneratorInterface = (*feed.Generator)(nil)
	_ Personalizer       = (*pipeline.Personalizer)(nil)
	_ Searcher           = (*search.Index)(nil)
	_ PodcastGenerator   = (*podcast.Generator)(nil)
	_ NewsService        = (*ingest.Orchestrator)(nil)
)

// Dependencies wires the handler to storage and services. Searcher and
// Podcasts may be nil, their routes then answer 503.
type Dependencies struct {
	Articles     database.ArticleStore
	Keywords     database.KeywordStore
	Patterns     database.PatternStore
	Preferences  database.PreferencesStore
	PodcastStore database.PodcastStore
	Saved        database.SavedStore
	Personalizer Personalizer
	Searcher     Searcher
	Podcasts     PodcastGenerator
	News         NewsService
	Curator      tasks.Curator
	Scheduler    tasks.TaskSchedulerInterface
	Generator    GeneratorInterface
	Version      string
}

type Handler struct {
	Dependencies
}

type keywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
	Type    string `json:"type" binding:"required"`
}

type patternRequest struct {
	FindText      string `json:"findText" binding:"required"`
	ReplaceText   string `json:"replaceText"`
	CaseSensitive bool   `json:"caseSensitive"`
}

type preferencesRequest struct {
	SentimentThreshold *float64 `json:"sentimentThreshold"`
	RealTimeFiltering  *bool    `json:"realTimeFiltering"`
}

type saveRequest struct {
	ArticleID int64 `json:"articleId" binding:"required"`
}
