package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeFetchNews      TaskType = "fetch_news"
	TaskTypeExtractContent TaskType = "extract_content"
	TaskTypeCurate         TaskType = "curate"
)

const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 5 * time.Minute

	// ScopeAll marks tasks that run over every configured feed.
	ScopeAll = "all"
)

// Curation only reads and flags stored articles, so it gets a tighter bound
// than the tasks that wait on remote sites.
var taskTimeouts = map[TaskType]time.Duration{
	TaskTypeFetchNews:      DefaultTimeout,
	TaskTypeExtractContent: DefaultTimeout,
	TaskTypeCurate:         time.Minute,
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	Scope() string
	Timeout() time.Duration
	Attempts() int
	RecordFailure() bool
	Start()
	GetDuration() time.Duration
	LogAttrs() []any
}

// Task carries the bookkeeping shared by every background task. Concrete
// tasks embed it and provide Execute.
type Task struct {
	ID        string
	Type      TaskType
	scope     string
	attempts  int
	StartedAt *time.Time
}

func NewTask(taskType TaskType, scope string) Task {
	if scope == "" {
		scope = ScopeAll
	}
	return Task{
		ID:    uuid.NewString(),
		Type:  taskType,
		scope: scope,
	}
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

// Scope is the feed a task works on, or ScopeAll.
func (t *Task) Scope() string {
	return t.scope
}

func (t *Task) Timeout() time.Duration {
	if d, ok := taskTimeouts[t.Type]; ok {
		return d
	}
	return DefaultTimeout
}

// Attempts is the number of failed runs so far.
func (t *Task) Attempts() int {
	return t.attempts
}

// RecordFailure counts a failed run and reports whether the task may run
// again.
func (t *Task) RecordFailure() bool {
	if t.attempts >= DefaultMaxRetries {
		return false
	}
	t.attempts++
	return true
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func (t *Task) LogAttrs() []any {
	return []any{"type", string(t.Type), "id", t.ID, "scope", t.scope, "attempts", t.attempts}
}
