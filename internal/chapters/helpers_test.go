package chapters

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookar/internal/assets"
	"github.com/mrlokans/bookar/internal/catalog"
	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
)

// gatedFetcher serves payloads; sources with a gate block until the gate is
// closed or the context ends.
type gatedFetcher struct {
	mu       sync.Mutex
	payloads map[string][]byte
	gates    map[string]chan struct{}
	started  chan string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		payloads: map[string][]byte{},
		gates:    map[string]chan struct{}{},
		started:  make(chan string, 16),
	}
}

func (f *gatedFetcher) serve(src string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[src] = []byte("payload:" + src)
}

func (f *gatedFetcher) gate(src string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[src] = ch
	f.payloads[src] = []byte("payload:" + src)
	return ch
}

func (f *gatedFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	f.mu.Lock()
	gate, gated := f.gates[src]
	data, ok := f.payloads[src]
	f.mu.Unlock()

	if gated {
		select {
		case f.started <- src:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.New("asset not found: " + src)
	}
	return data, nil
}

type recordingRenderer struct {
	mu       sync.Mutex
	cleared  []string
	added    []string
	clearErr error
	addPanic bool
}

func (r *recordingRenderer) ClearScene(chapterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, chapterID)
	r.added = nil
	return r.clearErr
}

func (r *recordingRenderer) AddTarget(_ int, t *entities.Target) error {
	if r.addPanic {
		panic("renderer exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, t.ID)
	return nil
}

type recordedProgress struct {
	event     string
	chapterID string
	processed int
	status    entities.LoadStatus
}

type recordingProgress struct {
	mu     sync.Mutex
	events []recordedProgress
}

func (p *recordingProgress) StartLoad(chapterID, loadID string, total int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedProgress{event: "start", chapterID: chapterID})
	return nil
}

func (p *recordingProgress) UpdateProgress(chapterID string, processed, loaded, failed int, current string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedProgress{event: "update", chapterID: chapterID, processed: processed})
	return nil
}

func (p *recordingProgress) CompleteLoad(chapterID string, status entities.LoadStatus, errMsg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedProgress{event: "complete", chapterID: chapterID, status: status})
	return nil
}

type fixture struct {
	game     *game.Game
	fetcher  *gatedFetcher
	registry *assets.Registry
	manager  *Manager
	repo     *Repository
	renderer *recordingRenderer
	progress *recordingProgress
	errors   []entities.ErrorInfo
	errorsMu sync.Mutex
}

type fixtureOptions struct {
	staleGuard    bool
	cacheCapacity int
	timeout       time.Duration
}

func newFixture(t *testing.T, chapters []entities.ChapterData, opts fixtureOptions) *fixture {
	t.Helper()

	cat, err := catalog.New(chapters)
	require.NoError(t, err)

	if opts.timeout == 0 {
		opts.timeout = time.Second
	}

	f := &fixture{
		game:     game.New(),
		fetcher:  newGatedFetcher(),
		renderer: &recordingRenderer{},
		progress: &recordingProgress{},
	}
	f.registry = assets.NewRegistry(f.fetcher, assets.Options{Timeout: opts.timeout})
	f.repo = NewRepository(f.game, opts.cacheCapacity)
	f.manager = NewManager(ManagerConfig{
		Game:       f.game,
		Catalog:    cat,
		Loader:     NewLoader(f.registry, f.progress),
		Repository: f.repo,
		Renderer:   f.renderer,
		StaleGuard: opts.staleGuard,
	})
	f.game.OnError(func(info entities.ErrorInfo) {
		f.errorsMu.Lock()
		defer f.errorsMu.Unlock()
		f.errors = append(f.errors, info)
	})
	return f
}

func (f *fixture) notifications() []entities.ErrorInfo {
	f.errorsMu.Lock()
	defer f.errorsMu.Unlock()
	return append([]entities.ErrorInfo(nil), f.errors...)
}

func chapterData(id string, targets ...entities.TargetData) entities.ChapterData {
	return entities.ChapterData{ID: id, Title: "Chapter " + id, Targets: targets}
}

func targetData(id string, assetList ...entities.AssetData) entities.TargetData {
	return entities.TargetData{
		ID:     id,
		Title:  "Target " + id,
		Entity: &entities.EntityData{Type: entities.EntityTypeBasic, Assets: assetList},
	}
}

func assetData(id, src string) entities.AssetData {
	return entities.AssetData{ID: id, Kind: "generic", Src: src}
}
