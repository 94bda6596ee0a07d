package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookar/internal/assets"
	"github.com/mrlokans/bookar/internal/catalog"
	"github.com/mrlokans/bookar/internal/chapters"
	"github.com/mrlokans/bookar/internal/database"
	"github.com/mrlokans/bookar/internal/database/progress"
	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
	"github.com/mrlokans/bookar/internal/scene"
)

const testCatalog = `
version: "1"
chapters:
  - id: forest
    order: 1
    title: Forest
    targets:
      - id: owl
        title: Owl
        entity:
          type: basic
          assets:
            - id: owl-text
              kind: generic
              src: forest/owl.txt
  - id: river
    order: 2
    title: River
    targets:
      - id: fish
        title: Fish
        entity:
          type: basic
          assets:
            - id: fish-text
              kind: generic
              src: river/missing.txt
`

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []string
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) EnqueuePreload(chapterID, reason string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, chapterID)
	return "task-" + chapterID, nil
}

func (q *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return backlite.TaskStatusNotFound, q.err
	}
	status, ok := q.statuses[taskID]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

type testServer struct {
	router  *gin.Engine
	game    *game.Game
	manager *chapters.Manager
	db      *database.Database
	scene   *scene.Manifest
	queue   *fakeQueue
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	assetsDir := filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(assetsDir, "forest"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "forest", "owl.txt"), []byte("hoot"), 0644))

	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	db, err := database.NewDatabase(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	g := game.New()
	manifest := scene.NewManifest()
	progressRepo := progress.NewRepository(db.DB)
	registry := assets.NewRegistry(assets.NewFileFetcher(assetsDir), assets.Options{})
	manager := chapters.NewManager(chapters.ManagerConfig{
		Game:     g,
		Catalog:  cat,
		Loader:   chapters.NewLoader(registry, progressRepo),
		Renderer: manifest,
	})

	queue := &fakeQueue{statuses: map[string]backlite.TaskStatus{}}
	router := NewRouter(RouterConfig{
		Game:      g,
		Chapters:  manager,
		Database:  db,
		Progress:  progressRepo,
		Scene:     manifest,
		TaskQueue: queue,
		Version:   "test",
	})

	return &testServer{router: router, game: g, manager: manager, db: db, scene: manifest, queue: queue}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func chapterStatus(t *testing.T, w *httptest.ResponseRecorder) entities.LoadStatus {
	t.Helper()
	var body struct {
		Chapter entities.Chapter `json:"chapter"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Chapter.Status
}
