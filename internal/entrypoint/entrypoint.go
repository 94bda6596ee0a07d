package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookar/internal/assets"
	"github.com/mrlokans/bookar/internal/audit"
	"github.com/mrlokans/bookar/internal/catalog"
	"github.com/mrlokans/bookar/internal/chapters"
	"github.com/mrlokans/bookar/internal/config"
	"github.com/mrlokans/bookar/internal/database"
	"github.com/mrlokans/bookar/internal/database/progress"
	"github.com/mrlokans/bookar/internal/game"
	http_controllers "github.com/mrlokans/bookar/internal/http"
	"github.com/mrlokans/bookar/internal/scene"
	"github.com/mrlokans/bookar/internal/scheduler"
	"github.com/mrlokans/bookar/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing writes to a closing store
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// App holds the wired chapter-loading core.
type App struct {
	Game     *game.Game
	Catalog  *catalog.Catalog
	Registry *assets.Registry
	Manager  *chapters.Manager
	Scene    *scene.Manifest
}

// NewApp wires the store, asset registry and chapter manager from
// configuration. progressReporter may be nil.
func NewApp(cfg *config.Config, progressReporter chapters.ProgressReporter) (*App, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	fetcher, err := assets.NewDefaultFetcher(cfg.Assets.Root, cfg.Assets.CacheDir)
	if err != nil {
		return nil, err
	}

	g := game.New()
	registry := assets.NewRegistry(fetcher, assets.Options{
		Timeout:        cfg.Assets.Timeout,
		MaxConcurrency: cfg.Assets.MaxConcurrency,
	})
	manifest := scene.NewManifest()

	manager := chapters.NewManager(chapters.ManagerConfig{
		Game:       g,
		Catalog:    cat,
		Loader:     chapters.NewLoader(registry, progressReporter),
		Repository: chapters.NewRepository(g, cfg.Chapters.CacheCapacity),
		Renderer:   manifest,
		StaleGuard: cfg.Chapters.StaleGuard,
	})

	return &App{
		Game:     g,
		Catalog:  cat,
		Registry: registry,
		Manager:  manager,
		Scene:    manifest,
	}, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting BookAR v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	progressRepo := progress.NewRepository(db.DB)

	app, err := NewApp(cfg, progressRepo)
	if err != nil {
		log.Fatalf("Failed to initialize chapters: %v", err)
	}
	log.Printf("Loaded catalog %s (%d chapters, version %q)", cfg.Catalog.Path, app.Catalog.Len(), app.Catalog.Version())

	var auditor *audit.Auditor
	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditor = audit.NewAuditor(cfg.Audit.Dir)
		auditService = audit.NewService(auditor)
		auditService.Attach(app.Game)
		log.Printf("Error audit enabled at %s", cfg.Audit.Dir)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var preloadScheduler *scheduler.PreloadScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		queues := []backlite.Queue{
			tasks.NewPreloadChapterQueue(app.Manager, progressRepo),
			tasks.NewPreloadAllChaptersQueue(app.Manager),
		}
		if auditor != nil {
			queues = append(queues, tasks.NewCleanupAuditFilesQueue(auditor))
		}
		taskClient.Register(queues...)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if auditor != nil {
			if _, err := taskClient.Add(tasks.CleanupAuditFilesTask{RetentionDays: cfg.Audit.RetentionDays}).Save(); err != nil {
				log.Printf("WARNING: Failed to enqueue audit cleanup: %v", err)
			}
		}

		if cfg.Preload.OnStartup {
			if _, err := taskClient.EnqueuePreload("", "startup"); err != nil {
				log.Printf("WARNING: Failed to enqueue startup preload: %v", err)
			}
		}

		if cfg.Preload.Enabled {
			preloadScheduler = scheduler.NewPreloadScheduler(taskClient, cfg.Preload.Schedule)
			if err := preloadScheduler.Start(taskCtx); err != nil {
				log.Printf("WARNING: Preload scheduler not started: %v", err)
			}
		}
	} else if cfg.Preload.Enabled || cfg.Preload.OnStartup {
		log.Printf("WARNING: Chapter preloading requires the task queue. Set TASKS_ENABLED=true to enable it.")
	}

	routerCfg := http_controllers.RouterConfig{
		Game:          app.Game,
		Chapters:      app.Manager,
		Database:      db,
		Progress:      progressRepo,
		Scene:         app.Scene,
		SwitchTimeout: cfg.HTTP.SwitchTimeout,
		Version:       version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if preloadScheduler != nil {
		routerCfg.Scheduler = preloadScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if preloadScheduler != nil {
			preloadScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if auditService != nil {
			auditService.Wait()
		}
	}

	Serve(router, cfg, onShutdown)
}
