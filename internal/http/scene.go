package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SceneController struct {
	scene SceneSource
}

func NewSceneController(scene SceneSource) *SceneController {
	return &SceneController{scene: scene}
}

// Snapshot handles GET /api/scene
func (sc *SceneController) Snapshot(c *gin.Context) {
	if sc.scene == nil {
		respondUnavailable(c, "scene")
		return
	}
	c.JSON(http.StatusOK, sc.scene.Snapshot())
}
