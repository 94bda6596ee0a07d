package http

import (
	"time"

	"github.com/mrlokans/bookar/internal/database"
	"github.com/mrlokans/bookar/internal/game"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Game     *game.Game
	Chapters ChapterService
	Database *database.Database

	// Optional collaborators; their routes answer 503 when nil
	Progress  ProgressStore
	Scene     SceneSource
	TaskQueue TaskQueue
	Scheduler PreloadScheduler

	// SwitchTimeout bounds a switch request. Zero leaves it to the asset
	// timeouts.
	SwitchTimeout time.Duration

	// KeepAlive is the interval between SSE comment frames. Default: 15s
	KeepAlive time.Duration

	// Application info
	Version string
}
