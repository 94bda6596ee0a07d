package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Chapters, cfg.Version)
	chaptersController := NewChaptersController(cfg.Chapters, cfg.Progress, cfg.SwitchTimeout)
	sceneController := NewSceneController(cfg.Scene)
	eventsController := NewEventsController(cfg.Game, cfg.KeepAlive)
	tasksController := NewTasksController(cfg.TaskQueue, cfg.Scheduler)
	progressController := NewProgressController(cfg.Progress, cfg.Scheduler)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/chapters", chaptersController.List)
		api.GET("/chapters/current", chaptersController.Current)
		api.GET("/chapters/:id", chaptersController.Get)
		api.POST("/chapters/:id/switch", chaptersController.Switch)
		api.GET("/chapters/:id/progress", chaptersController.Progress)

		api.GET("/progress", progressController.List)

		api.GET("/scene", sceneController.Snapshot)
		api.GET("/events", eventsController.Stream)

		api.POST("/tasks/preload", tasksController.RunPreload)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
