// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── progress/        # Per-chapter load progress
//
// The chapter tree itself lives in memory; only load bookkeeping is
// persisted so that the HTTP API can report on loads that ran in the
// background (preload tasks) or before a restart.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookar.db")
//	progressRepo := progress.NewRepository(db.DB)
//	p, err := progressRepo.GetProgress("forest")
//
// # Interface Implementations
//
//   - progress.Repository: implements chapters.ProgressReporter
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register its models in NewDatabase's AutoMigrate call
//  5. Add compile-time interface check in internal/interfaces
package database
