package chapters

import (
	"container/list"
	"log"
	"sync"

	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
)

// Repository is the chapter cache and current-chapter slot of the game store.
//
// With a positive capacity the least recently used chapter is evicted once the
// cache grows past it; the current chapter is never evicted. Capacity zero
// keeps every chapter for the life of the process.
type Repository struct {
	game     *game.Game
	capacity int

	mu       sync.Mutex
	recency  *list.List
	elements map[string]*list.Element
}

func NewRepository(g *game.Game, capacity int) *Repository {
	if capacity < 0 {
		capacity = 0
	}
	return &Repository{
		game:     g,
		capacity: capacity,
		recency:  list.New(),
		elements: make(map[string]*list.Element),
	}
}

// Get returns the cached tree for id.
func (r *Repository) Get(id string) (*entities.Chapter, bool) {
	c, ok := r.game.State().CachedChapter(id)
	if ok {
		r.mu.Lock()
		r.touch(id)
		r.mu.Unlock()
	}
	return c, ok
}

// Put stores c in the cache, replacing any tree with the same id.
func (r *Repository) Put(c *entities.Chapter) {
	r.game.Store.Update(func(draft *game.State) {
		draft.Chapters = r.insert(*draft, c)
	})
}

// Current returns the current chapter, or nil.
func (r *Repository) Current() *entities.Chapter {
	return r.game.State().CurrentChapter
}

// SetCurrent makes c the current chapter without touching the cache.
func (r *Repository) SetCurrent(c *entities.Chapter) {
	r.game.Store.Update(func(draft *game.State) {
		draft.CurrentChapter = c
	})
}

// Commit makes c the current chapter and caches it in a single update.
func (r *Repository) Commit(c *entities.Chapter) {
	r.game.Store.Update(func(draft *game.State) {
		draft.CurrentChapter = c
		draft.Chapters = r.insert(*draft, c)
	})
}

// Len returns the number of cached chapters.
func (r *Repository) Len() int {
	return len(r.game.State().Chapters)
}

// insert runs inside a store update and returns the new chapter map.
func (r *Repository) insert(state game.State, c *entities.Chapter) map[string]*entities.Chapter {
	chapters := state.WithChapter(c)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.touch(c.ID)
	if r.capacity == 0 || len(chapters) <= r.capacity {
		return chapters
	}

	keep := map[string]bool{c.ID: true}
	if state.CurrentChapter != nil {
		keep[state.CurrentChapter.ID] = true
	}
	for e := r.recency.Back(); e != nil && len(chapters) > r.capacity; {
		prev := e.Prev()
		id := e.Value.(string)
		if !keep[id] {
			delete(chapters, id)
			r.recency.Remove(e)
			delete(r.elements, id)
			log.Printf("[CHAPTER] Evicted chapter %s from cache", id)
		}
		e = prev
	}
	return chapters
}

func (r *Repository) touch(id string) {
	if e, ok := r.elements[id]; ok {
		r.recency.MoveToFront(e)
		return
	}
	r.elements[id] = r.recency.PushFront(id)
}
