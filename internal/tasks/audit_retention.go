package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a cleanup task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditFileCleaner is the audit directory as seen by the retention task.
type AuditFileCleaner interface {
	DeleteOlderThan(retention time.Duration) (int, error)
	List() ([]string, error)
}

// CleanupAuditFilesTask trims error audit records to the retention window.
type CleanupAuditFilesTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditFilesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_files",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t CleanupAuditFilesTask) retention() (int, time.Duration) {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

// RetentionReport summarizes one cleanup run.
type RetentionReport struct {
	Deleted   int
	Remaining int
}

// CleanAuditFiles deletes records older than the task's retention and counts
// what is left. A failure to count after a successful delete is not an error.
func CleanAuditFiles(ctx context.Context, cleaner AuditFileCleaner, task CleanupAuditFilesTask) (RetentionReport, error) {
	var report RetentionReport
	if cleaner == nil {
		return report, fmt.Errorf("audit file cleaner not configured")
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	days, retention := task.retention()
	deleted, err := cleaner.DeleteOlderThan(retention)
	report.Deleted = deleted
	if err != nil {
		return report, fmt.Errorf("cleanup audit files older than %d days: %w", days, err)
	}

	remaining, err := cleaner.List()
	if err != nil {
		log.Printf("[TASK] Audit cleanup: could not count remaining files: %v", err)
		report.Remaining = -1
		return report, nil
	}
	report.Remaining = len(remaining)
	return report, nil
}

func CleanupAuditFilesProcessor(cleaner AuditFileCleaner) backlite.QueueProcessor[CleanupAuditFilesTask] {
	return func(ctx context.Context, task CleanupAuditFilesTask) error {
		report, err := CleanAuditFiles(ctx, cleaner, task)
		if err != nil {
			return err
		}
		days, _ := task.retention()
		log.Printf("[TASK] Audit cleanup: %d files older than %d days deleted, %d kept", report.Deleted, days, report.Remaining)
		return nil
	}
}

func NewCleanupAuditFilesQueue(cleaner AuditFileCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditFilesProcessor(cleaner))
}
