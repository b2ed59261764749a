package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/database"
	"github.com/bright-buzz/brightbuzz-app/app/feed"
	"github.com/bright-buzz/brightbuzz-app/app/news"
)

// ExtractContentTask replaces the feed-provided content of a source's
// articles with the readable text of their pages.
type ExtractContentTask struct {
	Task
	FeedConfig       *feed.Config
	fetcher          PageFetcher
	contentExtractor ContentExtractor
	articleRepo      ExtractionStore
}

func NewExtractContentTask(feedConfig *feed.Config, fetcher PageFetcher, contentExtractor ContentExtractor, articleRepo ExtractionStore) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, feedConfig.Name),
		FeedConfig:       feedConfig,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		articleRepo:      articleRepo,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for feed", "feed", t.Scope())
		return nil
	}

	articles, err := t.articleRepo.GetArticlesForExtraction(ctx, t.FeedConfig.Source, t.FeedConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need content extraction", "feed", t.Scope())
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extractArticle(ctx, article); err != nil {
			slog.Error("Failed to extract content for article", "article_id", article.ID, "url", article.URL, "error", err)
			errorCount++

			if err := t.articleRepo.UpdateExtractionStatus(ctx, article.ID, database.ExtractionFailed, err.Error()); err != nil {
				slog.Error("Failed to update content extraction status", "article_id", article.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.Scope(),
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractArticle(ctx context.Context, article database.ArticleForExtraction) error {
	if article.URL == "" {
		return fmt.Errorf("article has no url")
	}

	timeout := time.Duration(t.FeedConfig.Settings.Timeout) * time.Second
	data, err := t.fetcher.FetchHTML(ctx, article.URL, timeout)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	content, err := t.contentExtractor.Run(data, article.URL)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if err := t.articleRepo.UpdateExtractedContent(ctx, article.ID, content, news.ReadTime(content)); err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "article_id", article.ID, "url", article.URL, "content_length", len(content))
	return nil
}
