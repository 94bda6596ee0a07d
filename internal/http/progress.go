package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookar/internal/entities"
)

// SchedulerStatus describes the preload scheduler.
type SchedulerStatus struct {
	Enabled    bool       `json:"enabled"`
	Running    bool       `json:"running"`
	NextRun    *time.Time `json:"next_run,omitempty"`
	LastTaskID string     `json:"last_task_id,omitempty"`
}

type ProgressResponse struct {
	Loads     []entities.LoadProgress `json:"loads"`
	Scheduler SchedulerStatus         `json:"scheduler"`
}

// ProgressController reports persisted load progress across chapters.
type ProgressController struct {
	progress  ProgressStore
	scheduler PreloadScheduler
}

func NewProgressController(progress ProgressStore, scheduler PreloadScheduler) *ProgressController {
	return &ProgressController{progress: progress, scheduler: scheduler}
}

// List handles GET /api/progress
func (pc *ProgressController) List(c *gin.Context) {
	if pc.progress == nil {
		respondUnavailable(c, "load progress")
		return
	}

	loads, err := pc.progress.ListProgress()
	if err != nil {
		respondInternalError(c, err, "list load progress")
		return
	}
	if loads == nil {
		loads = []entities.LoadProgress{}
	}

	resp := ProgressResponse{Loads: loads}
	if pc.scheduler != nil {
		resp.Scheduler = SchedulerStatus{
			Enabled:    true,
			Running:    pc.scheduler.IsRunning(),
			NextRun:    pc.scheduler.GetNextRunTime(),
			LastTaskID: pc.scheduler.LastTaskID(),
		}
	}
	c.JSON(http.StatusOK, resp)
}
