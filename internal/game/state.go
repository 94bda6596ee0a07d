package game

import "github.com/mrlokans/bookar/internal/entities"

// State is the application state held by the game store. Values are treated
// as immutable: replace fields through the With* helpers instead of mutating
// the chapter map or the trees it points to.
type State struct {
	CurrentChapter *entities.Chapter
	Chapters       map[string]*entities.Chapter
}

// WithChapter returns a copy of the chapter cache holding c under its id.
func (s State) WithChapter(c *entities.Chapter) map[string]*entities.Chapter {
	next := make(map[string]*entities.Chapter, len(s.Chapters)+1)
	for id, cached := range s.Chapters {
		next[id] = cached
	}
	next[c.ID] = c
	return next
}

// CachedChapter looks up a chapter in the cache.
func (s State) CachedChapter(id string) (*entities.Chapter, bool) {
	c, ok := s.Chapters[id]
	return c, ok && c != nil
}
