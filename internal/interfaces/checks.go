package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookar/internal/assets"
	"github.com/mrlokans/bookar/internal/audit"
	"github.com/mrlokans/bookar/internal/catalog"
	"github.com/mrlokans/bookar/internal/chapters"
	"github.com/mrlokans/bookar/internal/database/progress"
	"github.com/mrlokans/bookar/internal/http"
	"github.com/mrlokans/bookar/internal/scene"
	"github.com/mrlokans/bookar/internal/scheduler"
	"github.com/mrlokans/bookar/internal/tasks"
)

// =============================================================================
// Asset Loading
// =============================================================================

// Fetcher implementations
var _ assets.Fetcher = (*assets.FileFetcher)(nil)
var _ assets.Fetcher = (*assets.HTTPFetcher)(nil)
var _ assets.Fetcher = (*assets.MultiFetcher)(nil)

// AssetLoader implementations
var _ chapters.AssetLoader = (*assets.Registry)(nil)

// =============================================================================
// Chapter Lifecycle
// =============================================================================

// ChapterSource implementations
var _ chapters.ChapterSource = (*catalog.Catalog)(nil)

// Renderer implementations
var _ chapters.Renderer = (*scene.Manifest)(nil)

// ProgressReporter implementations
var _ chapters.ProgressReporter = (*progress.Repository)(nil)

// =============================================================================
// HTTP Stores
// =============================================================================

var _ http.ChapterService = (*chapters.Manager)(nil)
var _ http.ProgressStore = (*progress.Repository)(nil)
var _ http.SceneSource = (*scene.Manifest)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.PreloadScheduler = (*scheduler.PreloadScheduler)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.Preloader = (*chapters.Manager)(nil)
var _ tasks.AuditFileCleaner = (*audit.Auditor)(nil)
var _ tasks.LoadTracker = (*progress.Repository)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
