// Package progress persists per-chapter load progress.
//
// This package implements the ProgressReporter interface used by the chapter
// loader.
//
// # Interface Implementation
//
//	var _ chapters.ProgressReporter = (*Repository)(nil)
//
// # Usage
//
//	repo := progress.NewRepository(db)
//	err := repo.StartLoad("forest", loadID, 12)
package progress

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookar/internal/entities"
)

// StaleAfter is how long a load may go without updates before it is
// considered interrupted.
const StaleAfter = 10 * time.Minute

// Repository handles all load progress database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetProgress retrieves the progress of the most recent load of a chapter.
func (r *Repository) GetProgress(chapterID string) (*entities.LoadProgress, error) {
	var progress entities.LoadProgress
	err := r.db.Where("chapter_id = ?", chapterID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListProgress returns the progress of every chapter ever loaded, most recent
// first.
func (r *Repository) ListProgress() ([]entities.LoadProgress, error) {
	var all []entities.LoadProgress
	err := r.db.Order("updated_at DESC").Find(&all).Error
	return all, err
}

// StartLoad creates or resets the progress record of a chapter in a single
// upsert, so concurrent loads of one chapter never collide on chapter_id.
// Implements ProgressReporter.StartLoad.
func (r *Repository) StartLoad(chapterID, loadID string, totalTargets int) error {
	now := time.Now()
	progress := entities.LoadProgress{
		ChapterID:    chapterID,
		LoadID:       loadID,
		Status:       entities.StatusLoading,
		TotalTargets: totalTargets,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chapter_id"}},
		UpdateAll: true,
	}).Create(&progress).Error
}

// UpdateProgress records the targets processed so far.
// Implements ProgressReporter.UpdateProgress.
func (r *Repository) UpdateProgress(chapterID string, processed, loaded, failed int, currentTarget string) error {
	return r.db.Model(&entities.LoadProgress{}).
		Where("chapter_id = ?", chapterID).
		Updates(map[string]any{
			"processed":      processed,
			"loaded":         loaded,
			"failed":         failed,
			"current_target": currentTarget,
			"updated_at":     time.Now(),
		}).Error
}

// CompleteLoad marks a load as finished with the chapter's final status.
// Implements ProgressReporter.CompleteLoad.
func (r *Repository) CompleteLoad(chapterID string, status entities.LoadStatus, errMsg string) error {
	now := time.Now()
	updates := map[string]any{
		"status":         status,
		"current_target": "",
		"updated_at":     now,
		"completed_at":   now,
	}
	if errMsg != "" {
		updates["error"] = errMsg
	}
	return r.db.Model(&entities.LoadProgress{}).
		Where("chapter_id = ?", chapterID).
		Updates(updates).Error
}

// IsLoading checks if a chapter load is currently in progress.
// A load that has not been updated within StaleAfter is marked failed.
func (r *Repository) IsLoading(chapterID string) (bool, error) {
	var progress entities.LoadProgress
	err := r.db.Where("chapter_id = ? AND status = ?", chapterID, entities.StatusLoading).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-StaleAfter)) {
		_ = r.CompleteLoad(chapterID, entities.StatusError, "load was interrupted")
		return false, nil
	}

	return true, nil
}
