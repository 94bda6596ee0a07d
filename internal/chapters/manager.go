// Package chapters loads book chapters into the game store.
//
// A switch request walks a small state machine:
//
//	idle -> resolving -> (cache_hit | initializing -> loading) -> (committed | failed)
//
// A chapter that is already current and loaded is a no-op. A loaded chapter
// in the cache becomes current without issuing any load. Otherwise the
// chapter is initialized from the catalog, cached in the loading state and
// loaded target by target, with every intermediate tree published to the
// store. An unknown chapter id or an unexpected panic leaves a failed chapter
// in the store and a single notification on the error channel.
package chapters

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
)

var ErrChapterNotFound = errors.New("chapter not found")

// ChapterSource provides static chapter definitions.
type ChapterSource interface {
	Chapter(id string) (entities.ChapterData, error)
	All() []entities.ChapterData
}

type ManagerConfig struct {
	Game       *game.Game
	Catalog    ChapterSource
	Loader     *Loader
	Repository *Repository
	// Renderer receives loaded chapters. Optional.
	Renderer Renderer
	// StaleGuard keeps a superseded switch from overwriting the current
	// chapter when it completes. Its result is still cached.
	StaleGuard bool
}

// SwitchResult describes how a switch request ended.
type SwitchResult struct {
	ChapterID string            `json:"chapter_id"`
	State     string            `json:"state"`
	CacheHit  bool              `json:"cache_hit"`
	Stale     bool              `json:"stale,omitempty"`
	Path      []string          `json:"path"`
	Chapter   *entities.Chapter `json:"chapter"`
}

// Summary is a catalog entry annotated with its cache state.
type Summary struct {
	ID      string              `json:"id"`
	Order   int                 `json:"order"`
	Title   string              `json:"title"`
	Targets int                 `json:"targets"`
	Status  entities.LoadStatus `json:"status"`
	Current bool                `json:"current"`
}

type Manager struct {
	game        *game.Game
	catalog     ChapterSource
	initializer *Initializer
	loader      *Loader
	repo        *Repository
	errors      *ErrorHandler
	scene       *SceneUpdater
	staleGuard  bool

	generation atomic.Uint64
}

func NewManager(cfg ManagerConfig) *Manager {
	repo := cfg.Repository
	if repo == nil {
		repo = NewRepository(cfg.Game, 0)
	}
	handler := NewErrorHandler(repo, cfg.Game)

	m := &Manager{
		game:        cfg.Game,
		catalog:     cfg.Catalog,
		initializer: NewInitializer(),
		loader:      cfg.Loader,
		repo:        repo,
		errors:      handler,
		staleGuard:  cfg.StaleGuard,
	}
	if cfg.Renderer != nil {
		m.scene = NewSceneUpdater(cfg.Renderer, handler)
	}
	return m
}

// GetCurrentChapter returns the current chapter, or nil.
func (m *Manager) GetCurrentChapter() *entities.Chapter {
	return m.repo.Current()
}

// GetCachedChapter returns the cached tree for id.
func (m *Manager) GetCachedChapter(id string) (*entities.Chapter, bool) {
	return m.repo.Get(id)
}

// Chapters lists the catalog in order with each chapter's cached status.
func (m *Manager) Chapters() []Summary {
	state := m.game.State()
	all := m.catalog.All()

	out := make([]Summary, len(all))
	for i, data := range all {
		s := Summary{
			ID:      data.ID,
			Order:   data.Order,
			Title:   data.Title,
			Targets: len(data.Targets),
			Status:  entities.StatusInitial,
		}
		if cached, ok := state.CachedChapter(data.ID); ok {
			s.Status = cached.Status
		}
		if state.CurrentChapter != nil && state.CurrentChapter.ID == data.ID {
			s.Current = true
		}
		out[i] = s
	}
	return out
}

// SwitchChapter makes id the current chapter, loading it if needed. It always
// leaves a terminal (loaded or failed) chapter for id in the store, unless a
// newer switch superseded it while the stale guard is on.
func (m *Manager) SwitchChapter(ctx context.Context, id string) (result SwitchResult) {
	machine := newSwitchMachine(id)
	result.ChapterID = id

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[CHAPTER] Switch to %s panicked: %v", id, r)
			result.Chapter = m.errors.Handle(id, entities.ErrorInfo{
				Code:   entities.ErrorCodeUnknown,
				Msg:    fmt.Sprintf("unexpected error switching chapter: %v", r),
				Type:   entities.ErrorTypeCritical,
				Source: id,
			})
			machine.fire(eventFail)
		}
		result.State = machine.current()
		result.Path = machine.history()
	}()

	machine.fire(eventResolve)
	generation := m.generation.Add(1)

	if current := m.repo.Current(); current != nil && current.ID == id && current.Status == entities.StatusLoaded {
		result.CacheHit = true
		result.Chapter = current
		machine.fire(eventCommit)
		return result
	}

	if cached, ok := m.repo.Get(id); ok && cached.Status == entities.StatusLoaded {
		machine.fire(eventHit)
		m.repo.SetCurrent(cached)
		m.updateScene(cached)
		result.CacheHit = true
		result.Chapter = cached
		machine.fire(eventCommit)
		return result
	}

	data, err := m.catalog.Chapter(id)
	if err != nil {
		log.Printf("[CHAPTER] Chapter %s not found: %v", id, err)
		result.Chapter = m.errors.Handle(id, entities.ErrorInfo{
			Code:   entities.ErrorCodeChapterNotFound,
			Msg:    fmt.Sprintf("chapter %q not found", id),
			Type:   entities.ErrorTypeCritical,
			Source: id,
		})
		machine.fire(eventFail)
		return result
	}

	machine.fire(eventMiss)
	chapter := MarkLoading(m.initializer.Initialize(data))
	m.repo.Commit(chapter)

	machine.fire(eventLoad)
	final := m.loader.Load(ctx, chapter, func(partial *entities.Chapter) {
		m.publish(generation, partial)
	})
	result.Stale = !m.publish(generation, final)
	result.Chapter = final

	if final.Status != entities.StatusLoaded {
		if !result.Stale {
			m.errors.Report(*final.Error)
		}
		machine.fire(eventFail)
		return result
	}

	if !result.Stale {
		m.updateScene(final)
	}
	machine.fire(eventCommit)
	return result
}

// Preload loads id into the cache without making it current. A chapter that
// is already cached and loaded is returned as is.
func (m *Manager) Preload(ctx context.Context, id string) (*entities.Chapter, error) {
	if cached, ok := m.repo.Get(id); ok && cached.Status == entities.StatusLoaded {
		return cached, nil
	}

	data, err := m.catalog.Chapter(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrChapterNotFound, id, err)
	}

	chapter := MarkLoading(m.initializer.Initialize(data))
	final := m.loader.Load(ctx, chapter, nil)
	m.repo.Put(final)
	return final, nil
}

// PreloadAll preloads every catalog chapter in order and returns how many
// ended loaded.
func (m *Manager) PreloadAll(ctx context.Context) (int, error) {
	loaded := 0
	for _, data := range m.catalog.All() {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		chapter, err := m.Preload(ctx, data.ID)
		if err != nil {
			return loaded, err
		}
		if chapter.Status == entities.StatusLoaded {
			loaded++
		}
	}
	return loaded, nil
}

// publish writes partial as the current chapter and its cache entry. When the
// stale guard is on and a newer switch has started, only the cache entry is
// written and publish reports false.
func (m *Manager) publish(generation uint64, partial *entities.Chapter) bool {
	if m.staleGuard && m.generation.Load() != generation {
		m.repo.Put(partial)
		return false
	}
	m.repo.Commit(partial)
	return true
}

func (m *Manager) updateScene(c *entities.Chapter) {
	if m.scene == nil {
		return
	}
	// Failures are already on the error channel.
	_, _ = m.scene.UpdateScene(c)
}
