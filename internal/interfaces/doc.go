// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Asset Loading
//
//   - Fetcher: Raw bytes for an asset source (internal/assets/fetch.go)
//   - AssetLoader: Loads and decodes an entity's assets (internal/chapters/loader.go)
//
// ## Chapter Lifecycle
//
//   - ChapterSource: Static chapter definitions (internal/chapters/manager.go)
//   - Renderer: Receives loaded targets for the AR scene (internal/chapters/scene.go)
//   - ProgressReporter: Load progress persistence (internal/chapters/loader.go)
//
// ## HTTP Stores
//
//   - ChapterService, ProgressStore, SceneSource, TaskQueue (internal/http/stores.go)
//
// ## Background Work
//
//   - Preloader: Chapter preloading from queued tasks (internal/tasks/preload.go)
//   - AuditFileCleaner: Audit retention (internal/tasks/cleanup_audit.go)
//   - Enqueuer: Scheduled preload submission (internal/scheduler/preload.go)
//
// # Adding a New Asset Source
//
// To load assets from a new location (e.g., an S3 bucket):
//
//  1. Implement Fetcher in internal/assets/
//
//     type S3Fetcher struct {
//         client *s3.Client
//         bucket string
//     }
//
//     func (f *S3Fetcher) Fetch(ctx context.Context, src string) ([]byte, error)
//
//     var _ Fetcher = (*S3Fetcher)(nil)
//
//  2. Route its scheme in NewDefaultFetcher
//
// # Adding a New Renderer
//
// Any type with ClearScene and AddTarget can receive loaded chapters. Pass it
// as ManagerConfig.Renderer in entrypoint.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
