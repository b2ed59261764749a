package tasks

import (
	"context"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/database"
	"github.com/bright-buzz/brightbuzz-app/app/feed"
	"github.com/bright-buzz/brightbuzz-app/app/ingest"
	"github.com/bright-buzz/brightbuzz-app/app/pipeline"
)

// TaskSchedulerInterface is what the application and the admin API use to
// drive background work.
//
//	scheduler := NewScheduler(deps, interval, workers)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewCurateTask(curator))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type NewsFetcher interface {
	FetchLatestNews(ctx context.Context, force bool) ingest.Summary
}

type Curator interface {
	Run(ctx context.Context) (pipeline.Selection, error)
}

type PageFetcher interface {
	FetchHTML(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

type ContentExtractor interface {
	Run(data []byte, pageURL string) (string, error)
}

type ExtractionStore interface {
	GetArticlesForExtraction(ctx context.Context, source string, limit int) ([]database.ArticleForExtraction, error)
	UpdateExtractionStatus(ctx context.Context, id int64, status, errorMsg string) error
	UpdateExtractedContent(ctx context.Context, id int64, content string, readTime int) error
}

type FeedConfigs interface {
	GetEnabledConfigs() []*feed.Config
}
