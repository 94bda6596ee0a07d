// Package scene records what the tracking renderer is asked to draw.
//
// The Manifest stands in for the external AR engine: it keeps, per chapter,
// the ordered list of targets handed over after a successful load so that UI
// clients can mirror the scene.
package scene

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mrlokans/bookar/internal/entities"
)

var ErrInvalidTarget = errors.New("invalid scene target")

type AssetRef struct {
	ID   string             `json:"id"`
	Kind entities.AssetKind `json:"kind"`
	Src  string             `json:"src"`
}

type Entry struct {
	Index             int                 `json:"index"`
	TargetID          string              `json:"target_id"`
	MindARTargetIndex int                 `json:"mindar_target_index"`
	Title             string              `json:"title"`
	EntityType        entities.EntityType `json:"entity_type"`
	Assets            []AssetRef          `json:"assets"`
}

type Snapshot struct {
	ChapterID string    `json:"chapter_id"`
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Manifest struct {
	mu        sync.RWMutex
	chapterID string
	entries   []Entry
	updatedAt time.Time
}

func NewManifest() *Manifest {
	return &Manifest{}
}

func (m *Manifest) ClearScene(chapterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chapterID = chapterID
	m.entries = nil
	m.updatedAt = time.Now()
	return nil
}

func (m *Manifest) AddTarget(index int, t *entities.Target) error {
	if t == nil || t.Entity == nil {
		return fmt.Errorf("%w: target at %d has no entity", ErrInvalidTarget, index)
	}

	entry := Entry{
		Index:             index,
		TargetID:          t.ID,
		MindARTargetIndex: t.MindARTargetIndex,
		Title:             t.Title,
		EntityType:        t.Entity.Type,
		Assets:            make([]AssetRef, len(t.Entity.Assets)),
	}
	for i, a := range t.Entity.Assets {
		entry.Assets[i] = AssetRef{ID: a.ID, Kind: a.Kind, Src: a.Src}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.TargetID == t.ID {
			return fmt.Errorf("%w: target %s already in scene", ErrInvalidTarget, t.ID)
		}
	}
	m.entries = append(m.entries, entry)
	m.updatedAt = time.Now()
	return nil
}

// Snapshot returns a copy of the current scene.
func (m *Manifest) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		ChapterID: m.chapterID,
		Entries:   append([]Entry{}, m.entries...),
		UpdatedAt: m.updatedAt,
	}
}
