package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type FetchNewsTask struct {
	Task
	fetcher NewsFetcher
	force   bool
}

func NewFetchNewsTask(fetcher NewsFetcher, force bool) *FetchNewsTask {
	return &FetchNewsTask{
		Task:    NewTask(TaskTypeFetchNews, ""),
		fetcher: fetcher,
		force:   force,
	}
}

func (t *FetchNewsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary := t.fetcher.FetchLatestNews(ctx, t.force)
	if summary.Failed {
		return fmt.Errorf("news fetch cycle failed")
	}

	if summary.Skipped {
		slog.Debug("News fetch skipped, refreshed recently")
		return nil
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"fetched", summary.Fetched,
		"created", summary.Created,
		"duplicates", summary.Duplicates,
		"supplemented", summary.Supplemented,
		"top_five", summary.TopFive,
		"curated", summary.Curated)

	return nil
}
