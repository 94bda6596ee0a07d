package chapters

import (
	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
)

// ErrorHandler turns hard failures into a terminal chapter value.
type ErrorHandler struct {
	repo *Repository
	game *game.Game
}

func NewErrorHandler(repo *Repository, g *game.Game) *ErrorHandler {
	return &ErrorHandler{repo: repo, game: g}
}

// Handle writes a minimal failed chapter for chapterID as both the current
// chapter and its cache entry, then pushes info on the error channel once.
func (h *ErrorHandler) Handle(chapterID string, info entities.ErrorInfo) *entities.Chapter {
	if info.Source == "" {
		info.Source = chapterID
	}
	chapter := Failed(chapterID, info)
	h.repo.Commit(chapter)
	h.game.NotifyError(info)
	return chapter
}

// Report pushes info on the error channel without touching chapter state.
func (h *ErrorHandler) Report(info entities.ErrorInfo) {
	h.game.NotifyError(info)
}

// Failed builds a chapter in the error state with no targets.
func Failed(chapterID string, info entities.ErrorInfo) *entities.Chapter {
	return &entities.Chapter{
		ID:      chapterID,
		Targets: []*entities.Target{},
		Status:  entities.StatusError,
		Error:   &info,
	}
}
