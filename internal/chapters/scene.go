package chapters

import (
	"fmt"
	"log"

	"github.com/mrlokans/bookar/internal/entities"
)

// Renderer draws tracked targets. It is implemented outside the loading core.
type Renderer interface {
	ClearScene(chapterID string) error
	AddTarget(index int, target *entities.Target) error
}

// SceneUpdater hands loaded chapters to the renderer.
type SceneUpdater struct {
	renderer Renderer
	errors   *ErrorHandler
}

func NewSceneUpdater(renderer Renderer, errors *ErrorHandler) *SceneUpdater {
	return &SceneUpdater{renderer: renderer, errors: errors}
}

// UpdateScene clears the renderer and adds, in order, every loaded target of
// c that has an entity. Renderer failures are reported on the error channel.
func (u *SceneUpdater) UpdateScene(c *entities.Chapter) (added int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
		if err != nil {
			log.Printf("[CHAPTER] Failed to update scene for %s: %v", c.ID, err)
			u.errors.Report(entities.ErrorInfo{
				Code:   entities.ErrorCodeSceneUpdateFailed,
				Msg:    err.Error(),
				Type:   entities.ErrorTypeCritical,
				Source: c.ID,
			})
		}
	}()

	if err := u.renderer.ClearScene(c.ID); err != nil {
		return 0, fmt.Errorf("clear scene: %w", err)
	}

	for i, t := range c.Targets {
		if t.Status != entities.StatusLoaded || t.Entity == nil {
			continue
		}
		if err := u.renderer.AddTarget(i, t); err != nil {
			return added, fmt.Errorf("add target %s: %w", t.ID, err)
		}
		added++
	}
	return added, nil
}
