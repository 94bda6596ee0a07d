package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue     TaskQueue
	scheduler PreloadScheduler
}

// NewTasksController creates a new TasksController. scheduler may be nil.
func NewTasksController(queue TaskQueue, scheduler PreloadScheduler) *TasksController {
	return &TasksController{queue: queue, scheduler: scheduler}
}

// PreloadRequest is the request body for a preload task. An empty
// ChapterID preloads the whole catalog.
type PreloadRequest struct {
	ChapterID string `json:"chapter_id" form:"chapter_id"`
}

// RunPreload handles POST /api/tasks/preload
func (tc *TasksController) RunPreload(c *gin.Context) {
	if tc.queue == nil {
		respondUnavailable(c, "task queue")
		return
	}

	var req PreloadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	// A catalog-wide preload goes through the scheduler when there is one so
	// that it shows up as the scheduler's last task.
	var taskID string
	var err error
	if req.ChapterID == "" && tc.scheduler != nil {
		taskID, err = tc.scheduler.RunNow()
	} else {
		taskID, err = tc.queue.EnqueuePreload(req.ChapterID, "api")
	}
	if err != nil {
		respondInternalError(c, err, "enqueue preload")
		return
	}

	taskType := "preload_all_chapters"
	if req.ChapterID != "" {
		taskType = "preload_chapter"
	}
	respondAccepted(c, "task enqueued", gin.H{
		"task_id":    taskID,
		"type":       taskType,
		"chapter_id": req.ChapterID,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.queue == nil {
		respondUnavailable(c, "task queue")
		return
	}

	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "get task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
