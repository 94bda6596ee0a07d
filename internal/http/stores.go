package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookar/internal/chapters"
	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/scene"
)

// This file consolidates the collaborator interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls.

// ChapterService drives chapter switching and exposes the loaded trees.
type ChapterService interface {
	GetCurrentChapter() *entities.Chapter
	GetCachedChapter(id string) (*entities.Chapter, bool)
	SwitchChapter(ctx context.Context, id string) chapters.SwitchResult
	Chapters() []chapters.Summary
}

// ProgressStore provides persisted load progress.
type ProgressStore interface {
	GetProgress(chapterID string) (*entities.LoadProgress, error)
	ListProgress() ([]entities.LoadProgress, error)
}

// SceneSource provides the current scene manifest.
type SceneSource interface {
	Snapshot() scene.Snapshot
}

// TaskQueue enqueues background work and reports its status.
type TaskQueue interface {
	EnqueuePreload(chapterID, reason string) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// PreloadScheduler runs the periodic catalog warm-up.
type PreloadScheduler interface {
	RunNow() (string, error)
	IsRunning() bool
	LastTaskID() string
	GetNextRunTime() *time.Time
}
