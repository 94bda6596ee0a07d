package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookar/internal/entities"
)

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookar-tasks.db"), TasksDBPath(filepath.Join("data", "bookar.db")))
	assert.Equal(t, "state-tasks", TasksDBPath("state"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := NewClient(dbPath, Config{Workers: 1, ReleaseAfter: time.Minute, CleanupInterval: time.Hour})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

type fakePreloader struct {
	mu     sync.Mutex
	single []string
	all    int
	err    error
	done   chan struct{}
}

func newFakePreloader() *fakePreloader {
	return &fakePreloader{done: make(chan struct{}, 4)}
}

func (p *fakePreloader) Preload(_ context.Context, id string) (*entities.Chapter, error) {
	p.mu.Lock()
	p.single = append(p.single, id)
	p.mu.Unlock()
	p.done <- struct{}{}
	if p.err != nil {
		return nil, p.err
	}
	return &entities.Chapter{ID: id, Status: entities.StatusLoaded}, nil
}

func (p *fakePreloader) PreloadAll(_ context.Context) (int, error) {
	p.mu.Lock()
	p.all++
	p.mu.Unlock()
	p.done <- struct{}{}
	return 3, p.err
}

func waitDone(t *testing.T, p *fakePreloader) {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestEnqueuePreload(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := NewClient(dbPath, Config{Workers: 1, ReleaseAfter: time.Minute, CleanupInterval: time.Hour})
	require.NoError(t, err)
	defer client.Close()

	preloader := newFakePreloader()
	client.Register(NewPreloadChapterQueue(preloader, nil), NewPreloadAllChaptersQueue(preloader))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueuePreload("forest", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	waitDone(t, preloader)

	_, err = client.EnqueuePreload("", "test")
	require.NoError(t, err)
	waitDone(t, preloader)

	preloader.mu.Lock()
	defer preloader.mu.Unlock()
	assert.Equal(t, []string{"forest"}, preloader.single)
	assert.Equal(t, 1, preloader.all)
}

func TestPreloadChapterProcessor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		preloader := newFakePreloader()
		err := PreloadChapterProcessor(preloader, nil)(context.Background(), PreloadChapterTask{ChapterID: "forest"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"forest"}, preloader.single)
	})

	t.Run("error is wrapped", func(t *testing.T) {
		preloader := newFakePreloader()
		preloader.err = errors.New("catalog miss")
		err := PreloadChapterProcessor(preloader, nil)(context.Background(), PreloadChapterTask{ChapterID: "nope"})
		require.Error(t, err)
		assert.ErrorIs(t, err, preloader.err)
		assert.Contains(t, err.Error(), "preload chapter nope")
	})

	t.Run("nil preloader", func(t *testing.T) {
		err := PreloadChapterProcessor(nil, nil)(context.Background(), PreloadChapterTask{ChapterID: "forest"})
		assert.Error(t, err)
	})
}

func TestPreloadAllChaptersProcessor(t *testing.T) {
	preloader := newFakePreloader()
	assert.NoError(t, PreloadAllChaptersProcessor(preloader)(context.Background(), PreloadAllChaptersTask{}))
	assert.Equal(t, 1, preloader.all)

	preloader = newFakePreloader()
	preloader.err = context.Canceled
	err := PreloadAllChaptersProcessor(preloader)(context.Background(), PreloadAllChaptersTask{Reason: "cron"})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeCleaner struct {
	retention time.Duration
	files     []string
	listErr   error
}

func (c *fakeCleaner) DeleteOlderThan(retention time.Duration) (int, error) {
	c.retention = retention
	return 2, nil
}

func (c *fakeCleaner) List() ([]string, error) {
	return c.files, c.listErr
}

func TestCleanAuditFiles(t *testing.T) {
	cleaner := &fakeCleaner{files: []string{"a.json", "b.json", "c.json"}}

	report, err := CleanAuditFiles(context.Background(), cleaner, CleanupAuditFilesTask{})
	require.NoError(t, err)
	assert.Equal(t, DefaultAuditRetentionDays*24*time.Hour, cleaner.retention)
	assert.Equal(t, RetentionReport{Deleted: 2, Remaining: 3}, report)

	_, err = CleanAuditFiles(context.Background(), cleaner, CleanupAuditFilesTask{RetentionDays: 7})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)

	cleaner.listErr = errors.New("permission denied")
	report, err = CleanAuditFiles(context.Background(), cleaner, CleanupAuditFilesTask{})
	require.NoError(t, err, "counting is best effort")
	assert.Equal(t, -1, report.Remaining)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CleanAuditFiles(ctx, cleaner, CleanupAuditFilesTask{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = CleanAuditFiles(context.Background(), nil, CleanupAuditFilesTask{})
	assert.Error(t, err)
}

func TestCleanupAuditFilesProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	require.NoError(t, CleanupAuditFilesProcessor(cleaner)(context.Background(), CleanupAuditFilesTask{RetentionDays: 3}))
	assert.Equal(t, 3*24*time.Hour, cleaner.retention)

	assert.Error(t, CleanupAuditFilesProcessor(nil)(context.Background(), CleanupAuditFilesTask{}))
}

type fakeTracker struct {
	loading map[string]bool
	err     error
}

func (f *fakeTracker) IsLoading(chapterID string) (bool, error) {
	return f.loading[chapterID], f.err
}

func TestPreloadChapterProcessor_SkipsChapterAlreadyLoading(t *testing.T) {
	preloader := newFakePreloader()
	tracker := &fakeTracker{loading: map[string]bool{"forest": true}}
	process := PreloadChapterProcessor(preloader, tracker)

	require.NoError(t, process(context.Background(), PreloadChapterTask{ChapterID: "forest"}))
	require.NoError(t, process(context.Background(), PreloadChapterTask{ChapterID: "river"}))
	assert.Equal(t, []string{"river"}, preloader.single)

	tracker.err = errors.New("database is locked")
	require.NoError(t, process(context.Background(), PreloadChapterTask{ChapterID: "forest"}))
	assert.Equal(t, []string{"river", "forest"}, preloader.single, "an unknown load state does not block the preload")
}

func TestTaskConfigs(t *testing.T) {
	tests := []struct {
		task        backlite.Task
		name        string
		maxAttempts int
	}{
		{PreloadChapterTask{ChapterID: "forest"}, "preload_chapter", 3},
		{PreloadAllChaptersTask{}, "preload_all_chapters", 1},
		{CleanupAuditFilesTask{}, "cleanup_audit_files", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.task.Config()
			assert.Equal(t, tt.name, cfg.Name)
			assert.Equal(t, tt.maxAttempts, cfg.MaxAttempts)
			assert.NotZero(t, cfg.Timeout)
			assert.NotNil(t, cfg.Retention)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}
