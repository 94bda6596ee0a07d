package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookar/internal/entities"
)

// Preloader loads chapters into the cache without making them current.
type Preloader interface {
	Preload(ctx context.Context, id string) (*entities.Chapter, error)
	PreloadAll(ctx context.Context) (int, error)
}

// LoadTracker reports whether a chapter load is already under way.
type LoadTracker interface {
	IsLoading(chapterID string) (bool, error)
}

// PreloadChapterTask warms the chapter cache for a single chapter.
type PreloadChapterTask struct {
	ChapterID string `json:"chapter_id"`
}

// Config returns the queue configuration for chapter preload tasks.
func (t PreloadChapterTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "preload_chapter",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PreloadChapterProcessor creates a processor function for PreloadChapterTask.
// A chapter that ends in ERROR is not retried: its failure is already on the
// chapter tree and the error channel. When tracker reports the chapter as
// loading the task is skipped. tracker may be nil.
func PreloadChapterProcessor(preloader Preloader, tracker LoadTracker) backlite.QueueProcessor[PreloadChapterTask] {
	return func(ctx context.Context, task PreloadChapterTask) error {
		if preloader == nil {
			return fmt.Errorf("preloader not configured")
		}

		if tracker != nil {
			loading, err := tracker.IsLoading(task.ChapterID)
			if err != nil {
				log.Printf("[TASK] Could not check load state of %s: %v", task.ChapterID, err)
			} else if loading {
				log.Printf("[TASK] Skipping preload of %s: already loading", task.ChapterID)
				return nil
			}
		}

		chapter, err := preloader.Preload(ctx, task.ChapterID)
		if err != nil {
			return fmt.Errorf("preload chapter %s: %w", task.ChapterID, err)
		}

		log.Printf("[TASK] Preloaded chapter %s: %s", task.ChapterID, chapter.Status)
		return nil
	}
}

// NewPreloadChapterQueue creates a backlite queue for chapter preload tasks.
func NewPreloadChapterQueue(preloader Preloader, tracker LoadTracker) backlite.Queue {
	return backlite.NewQueue(PreloadChapterProcessor(preloader, tracker))
}

// PreloadAllChaptersTask warms the chapter cache for the whole catalog.
type PreloadAllChaptersTask struct {
	Reason string `json:"reason,omitempty"`
}

// Config returns the queue configuration for full preload tasks.
func (t PreloadAllChaptersTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "preload_all_chapters",
		MaxAttempts: 1,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
		},
	}
}

// PreloadAllChaptersProcessor creates a processor function for PreloadAllChaptersTask.
func PreloadAllChaptersProcessor(preloader Preloader) backlite.QueueProcessor[PreloadAllChaptersTask] {
	return func(ctx context.Context, task PreloadAllChaptersTask) error {
		if preloader == nil {
			return fmt.Errorf("preloader not configured")
		}

		start := time.Now()
		loaded, err := preloader.PreloadAll(ctx)
		if err != nil {
			return fmt.Errorf("preload all chapters: %w", err)
		}

		log.Printf("[TASK] Preloaded catalog (%s): %d chapters loaded in %s",
			reasonOrDefault(task.Reason), loaded, time.Since(start).Round(time.Millisecond))
		return nil
	}
}

// NewPreloadAllChaptersQueue creates a backlite queue for full preload tasks.
func NewPreloadAllChaptersQueue(preloader Preloader) backlite.Queue {
	return backlite.NewQueue(PreloadAllChaptersProcessor(preloader))
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "manual"
	}
	return reason
}
