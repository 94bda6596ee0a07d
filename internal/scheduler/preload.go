// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Enqueuer hands preload work to the task queue.
type Enqueuer interface {
	EnqueuePreload(chapterID, reason string) (string, error)
}

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cron.ParseStandard(schedule)
	return err
}

// PreloadScheduler periodically enqueues a warm-up of the whole chapter
// catalog so that switching chapters hits the cache.
type PreloadScheduler struct {
	enqueuer Enqueuer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	lastTaskID string
	cancelFunc context.CancelFunc
}

// NewPreloadScheduler creates a new scheduler instance
func NewPreloadScheduler(enqueuer Enqueuer, schedule string) *PreloadScheduler {
	return &PreloadScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
	}
}

// Start begins the scheduler. It stops on its own when ctx is done.
func (s *PreloadScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueue("schedule")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule preload job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Preload scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *PreloadScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Preload scheduler: stopped")
}

// RunNow enqueues a preload immediately and returns the task ID.
func (s *PreloadScheduler) RunNow() (string, error) {
	return s.enqueue("manual")
}

// IsRunning returns whether the scheduler is active
func (s *PreloadScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastTaskID returns the ID of the most recently enqueued preload task.
func (s *PreloadScheduler) LastTaskID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTaskID
}

// GetNextRunTime returns when the next preload will be enqueued
func (s *PreloadScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *PreloadScheduler) enqueue(reason string) (string, error) {
	id, err := s.enqueuer.EnqueuePreload("", reason)
	if err != nil {
		log.Printf("Preload scheduler: failed to enqueue preload: %v", err)
		return "", err
	}

	s.mu.Lock()
	s.lastTaskID = id
	s.mu.Unlock()

	log.Printf("Preload scheduler: enqueued preload task %s (%s)", id, reason)
	return id, nil
}
