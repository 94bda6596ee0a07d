package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Catalog
		Assets
		Chapters
		Database
		Audit
		Tasks
		Preload
	}

	HTTP struct {
		Port int32
		Host string
		// SwitchTimeout bounds a chapter switch request; 0 disables the bound
		SwitchTimeout time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Catalog struct {
		Path string
	}
	Assets struct {
		Root           string        // Directory local sources are resolved against
		Timeout        time.Duration // Per-asset load timeout (default: 30s)
		MaxConcurrency int           // Concurrent asset loads per target; 0 = unbounded
		CacheDir       string        // On-disk cache for remote assets; empty disables it
	}
	Chapters struct {
		CacheCapacity int  // Loaded chapters kept in memory; 0 = unbounded
		StaleGuard    bool // Keep superseded loads from overwriting the current chapter
	}
	Database struct {
		Path string
	}
	Audit struct {
		Enabled       bool
		Dir           string
		RetentionDays int // Days to keep audit files (default: 30)
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Preload struct {
		Enabled   bool
		Schedule  string // Cron format: "0 3 * * *" = daily at 03:00
		OnStartup bool   // Enqueue a full preload when the server starts
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("switch_timeout", "0s")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("catalog_path", DefaultCatalogPath)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Asset loading defaults
	v.SetDefault("assets_root", DefaultAssetsRoot)
	v.SetDefault("asset_timeout", "30s")
	v.SetDefault("asset_max_concurrency", 0)
	v.SetDefault("asset_cache_dir", "")

	// Chapter cache defaults
	v.SetDefault("chapter_cache_capacity", 0)
	v.SetDefault("stale_load_guard", false)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Cache warm-up defaults
	v.SetDefault("preload_enabled", false)
	v.SetDefault("preload_schedule", "0 3 * * *")
	v.SetDefault("preload_on_startup", false)

	return &Config{
		HTTP: HTTP{
			Port:          v.GetInt32("PORT"),
			Host:          v.GetString("HOST"),
			SwitchTimeout: v.GetDuration("SWITCH_TIMEOUT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Catalog: Catalog{
			Path: v.GetString("CATALOG_PATH"),
		},
		Assets: Assets{
			Root:           v.GetString("ASSETS_ROOT"),
			Timeout:        v.GetDuration("ASSET_TIMEOUT"),
			MaxConcurrency: v.GetInt("ASSET_MAX_CONCURRENCY"),
			CacheDir:       v.GetString("ASSET_CACHE_DIR"),
		},
		Chapters: Chapters{
			CacheCapacity: v.GetInt("CHAPTER_CACHE_CAPACITY"),
			StaleGuard:    v.GetBool("STALE_LOAD_GUARD"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Preload: Preload{
			Enabled:   v.GetBool("PRELOAD_ENABLED"),
			Schedule:  v.GetString("PRELOAD_SCHEDULE"),
			OnStartup: v.GetBool("PRELOAD_ON_STARTUP"),
		},
	}
}
