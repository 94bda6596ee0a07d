package chapters

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/bookar/internal/entities"
)

// AssetLoader settles every asset of a batch, successful or not.
type AssetLoader interface {
	LoadAll(ctx context.Context, assets []*entities.Asset) []*entities.Asset
}

// ProgressReporter is told about a chapter load as it advances.
type ProgressReporter interface {
	StartLoad(chapterID, loadID string, totalTargets int) error
	UpdateProgress(chapterID string, processed, loaded, failed int, currentTarget string) error
	CompleteLoad(chapterID string, status entities.LoadStatus, errMsg string) error
}

// PublishFunc receives the partially loaded tree after each target.
type PublishFunc func(chapter *entities.Chapter)

type noopProgress struct{}

func (noopProgress) StartLoad(string, string, int) error                   { return nil }
func (noopProgress) UpdateProgress(string, int, int, int, string) error     { return nil }
func (noopProgress) CompleteLoad(string, entities.LoadStatus, string) error { return nil }

// Loader drives a chapter tree from loading to loaded or error.
type Loader struct {
	assets   AssetLoader
	progress ProgressReporter
}

// NewLoader creates a loader. progress may be nil.
func NewLoader(assets AssetLoader, progress ProgressReporter) *Loader {
	if progress == nil {
		progress = noopProgress{}
	}
	return &Loader{assets: assets, progress: progress}
}

// Load processes the chapter's targets in order, loading each target's assets
// concurrently. A failing target never stops the ones after it. The chapter
// ends in the error state iff any target failed, with the failing assets
// listed in its error details. publish, if not nil, is called with the
// updated tree after every target.
func (l *Loader) Load(ctx context.Context, chapter *entities.Chapter, publish PublishFunc) *entities.Chapter {
	start := time.Now()
	current := chapter
	if current.Status != entities.StatusLoading {
		current = MarkLoading(current)
	}

	l.record(l.progress.StartLoad(current.ID, current.LoadID, len(current.Targets)))
	log.Printf("[CHAPTER] Loading chapter %s (%d targets)", current.ID, len(current.Targets))

	var errs []entities.ErrorInfo
	loaded, failed := 0, 0
	for i, target := range current.Targets {
		next, targetErrs := l.loadTarget(ctx, target)
		current = current.WithTarget(i, next)
		errs = append(errs, targetErrs...)

		if next.Status == entities.StatusError {
			failed++
		} else {
			loaded++
		}

		if publish != nil {
			publish(current)
		}
		l.record(l.progress.UpdateProgress(current.ID, i+1, loaded, failed, next.ID))
	}

	if len(errs) > 0 {
		current = current.WithStatus(entities.StatusError, entities.ChapterFailure(current.ID, errs))
		l.record(l.progress.CompleteLoad(current.ID, current.Status, current.Error.Msg))
	} else {
		current = current.WithStatus(entities.StatusLoaded, nil)
		l.record(l.progress.CompleteLoad(current.ID, current.Status, ""))
	}

	log.Printf("[CHAPTER] Chapter %s finished as %s in %v (%d loaded, %d failed)",
		current.ID, current.Status, time.Since(start).Round(time.Millisecond), loaded, failed)
	return current
}

func (l *Loader) record(err error) {
	if err != nil {
		log.Printf("[CHAPTER] Warning: failed to record load progress: %v", err)
	}
}

// loadTarget resolves one target. It returns the failures to record in the
// chapter's error list.
func (l *Loader) loadTarget(ctx context.Context, target *entities.Target) (result *entities.Target, errs []entities.ErrorInfo) {
	defer func() {
		if r := recover(); r != nil {
			info := entities.ErrorInfo{
				Code:   entities.ErrorCodeUnknown,
				Msg:    fmt.Sprintf("unexpected error loading target: %v", r),
				Type:   entities.ErrorTypeCritical,
				Source: target.ID,
			}
			log.Printf("[CHAPTER] Target %s panicked: %v", target.ID, r)
			result = target.WithStatus(entities.StatusError, &info)
			errs = []entities.ErrorInfo{info}
		}
	}()

	if target.Entity == nil {
		return target.WithStatus(entities.StatusLoaded, nil), nil
	}

	entity := target.Entity.WithStatus(entities.StatusLoading, nil)
	if len(entity.Assets) == 0 {
		entity = entity.WithStatus(entities.StatusLoaded, nil)
		return target.WithEntity(entity).WithStatus(entities.StatusLoaded, nil), nil
	}

	pending := make([]*entities.Asset, len(entity.Assets))
	for i, a := range entity.Assets {
		pending[i] = a.WithStatus(entities.StatusLoading, nil)
	}
	entity = entity.WithAssets(l.assets.LoadAll(ctx, pending))

	failedAssets := entity.FailedAssets()
	if len(failedAssets) == 0 {
		entity = entity.WithStatus(entities.StatusLoaded, nil)
		return target.WithEntity(entity).WithStatus(entities.StatusLoaded, nil), nil
	}

	entityErr := entities.EntityFailure(entity.ID, failedAssets)
	entity = entity.WithStatus(entities.StatusError, entityErr)
	log.Printf("[CHAPTER] Target %s: %s", target.ID, entityErr.Msg)
	return target.WithEntity(entity).WithStatus(entities.StatusError, entities.TargetFailure(target.ID, entityErr)), entityErr.Details
}
