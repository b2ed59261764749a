package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type CurateTask struct {
	Task
	curator Curator
}

func NewCurateTask(curator Curator) *CurateTask {
	return &CurateTask{
		Task:    NewTask(TaskTypeCurate, ""),
		curator: curator,
	}
}

func (t *CurateTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	selection, err := t.curator.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to curate articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"top_five", len(selection.TopFive),
		"curated", len(selection.Curated))

	return nil
}
