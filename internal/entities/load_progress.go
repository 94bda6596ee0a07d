package entities

import (
	"time"
)

// LoadProgress is the persisted progress of the most recent load of a chapter.
type LoadProgress struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ChapterID     string     `gorm:"size:128;uniqueIndex" json:"chapter_id"`
	LoadID        string     `gorm:"size:64" json:"load_id,omitempty"`
	Status        LoadStatus `gorm:"size:20" json:"status"`
	TotalTargets  int        `json:"total_targets"`
	Processed     int        `json:"processed"`
	Loaded        int        `json:"loaded"`
	Failed        int        `json:"failed"`
	CurrentTarget string     `gorm:"size:128" json:"current_target,omitempty"`
	Error         string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (LoadProgress) TableName() string {
	return "load_progress"
}
