package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	taskQueueSize = 300
	maxRetryDelay = 30 * time.Second
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Dependencies are the collaborators the scheduler builds its tasks from.
type Dependencies struct {
	News             NewsFetcher
	Curator          Curator
	Configs          FeedConfigs
	Fetcher          PageFetcher
	ContentExtractor ContentExtractor
	Articles         ExtractionStore
}

type Scheduler struct {
	deps        Dependencies
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(deps Dependencies, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		deps:        deps,
		interval:    interval,
		workerCount: max(1, workerCount),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueStartupTasks recomputes curation before the first fetch so flags
// reflect the current window after a restart.
func (s *Scheduler) enqueueStartupTasks() {
	if s.deps.Curator != nil {
		if err := s.EnqueueTask(NewCurateTask(s.deps.Curator)); err != nil {
			slog.Warn("Failed to enqueue CurateTask", "error", err)
		}
	}
	s.enqueueTasks()
}

func (s *Scheduler) enqueueTasks() {
	if s.deps.News != nil {
		if err := s.EnqueueTask(NewFetchNewsTask(s.deps.News, false)); err != nil {
			slog.Warn("Failed to enqueue FetchNewsTask", "error", err)
		}
	}

	if s.deps.Configs == nil || s.deps.Articles == nil {
		return
	}

	for _, feedConfig := range s.deps.Configs.GetEnabledConfigs() {
		if !feedConfig.Settings.ExtractContent {
			continue
		}

		extractTask := NewExtractContentTask(feedConfig, s.deps.Fetcher, s.deps.ContentExtractor, s.deps.Articles)
		if err := s.EnqueueTask(extractTask); err != nil {
			slog.Warn("Failed to enqueue ExtractContentTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, task.Timeout())
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", append(task.LogAttrs(), "worker_id", workerID, "error", err)...)

	if !task.RecordFailure() {
		slog.Error("Task failed after maximum retries", append(task.LogAttrs(), "max_retries", DefaultMaxRetries, "last_error", err)...)
		return
	}

	retryDelay := RetryDelay(task.Attempts())
	slog.Warn("Task retry scheduled", append(task.LogAttrs(), "delay", retryDelay.String())...)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", task.LogAttrs()...)
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", append(task.LogAttrs(), "error", retryErr)...)
			}
		}
	}()
}

// RetryDelay doubles from one second per attempt, capped at 30 seconds.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(attempt-1))*time.Second, maxRetryDelay)
}
