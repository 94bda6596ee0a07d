package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookar/internal/entities"
)

// ChaptersController exposes chapter listing, switching and load progress.
type ChaptersController struct {
	chapters      ChapterService
	progress      ProgressStore
	switchTimeout time.Duration
}

func NewChaptersController(chapters ChapterService, progress ProgressStore, switchTimeout time.Duration) *ChaptersController {
	return &ChaptersController{
		chapters:      chapters,
		progress:      progress,
		switchTimeout: switchTimeout,
	}
}

// List handles GET /api/chapters
func (cc *ChaptersController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chapters": cc.chapters.Chapters()})
}

// Current handles GET /api/chapters/current
func (cc *ChaptersController) Current(c *gin.Context) {
	current := cc.chapters.GetCurrentChapter()
	if current == nil {
		respondNotFound(c, "current chapter")
		return
	}
	c.JSON(http.StatusOK, current)
}

// Get handles GET /api/chapters/:id and returns the cached tree.
func (cc *ChaptersController) Get(c *gin.Context) {
	chapter, ok := cc.chapters.GetCachedChapter(c.Param("id"))
	if !ok {
		respondNotFound(c, "chapter")
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// Switch handles POST /api/chapters/:id/switch
// Responds 200 when the chapter ends loaded, 404 for unknown chapters and
// 422 when the chapter failed to load.
func (cc *ChaptersController) Switch(c *gin.Context) {
	ctx := c.Request.Context()
	if cc.switchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cc.switchTimeout)
		defer cancel()
	}

	result := cc.chapters.SwitchChapter(ctx, c.Param("id"))
	c.JSON(switchStatusCode(result.Chapter), result)
}

func switchStatusCode(chapter *entities.Chapter) int {
	switch {
	case chapter == nil:
		return http.StatusInternalServerError
	case chapter.Status == entities.StatusLoaded:
		return http.StatusOK
	case chapter.Error != nil && chapter.Error.Code == entities.ErrorCodeChapterNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// Progress handles GET /api/chapters/:id/progress
func (cc *ChaptersController) Progress(c *gin.Context) {
	if cc.progress == nil {
		respondUnavailable(c, "progress tracking")
		return
	}

	progress, err := cc.progress.GetProgress(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "load progress")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get load progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}
