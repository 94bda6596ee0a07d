package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestNewDiskCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "assets")

	cache, err := NewDiskCache(cacheDir)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	if filepath.Dir(cache.Path("https://example.com/a.png")) != cacheDir {
		t.Errorf("expected cache files under %s, got %s", cacheDir, cache.Path("https://example.com/a.png"))
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("cache directory was not created")
	}
}

func TestDiskCache_PutGetInvalidate(t *testing.T) {
	cache, _ := NewDiskCache(t.TempDir())
	src := "https://cdn.example.com/models/owl.glb?v=3"

	if _, ok := cache.Get(src); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := cache.Put(src, []byte("owl")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, ok := cache.Get(src)
	if !ok || string(data) != "owl" {
		t.Errorf("expected cached data, got %q (hit=%v)", data, ok)
	}
	if filepath.Ext(cache.Path(src)) != ".glb" {
		t.Errorf("expected .glb extension, got %s", cache.Path(src))
	}

	if err := cache.Invalidate(src); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok := cache.Get(src); ok {
		t.Error("expected miss after invalidate")
	}
	if err := cache.Invalidate(src); err != nil {
		t.Errorf("invalidating a missing entry should not fail: %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "images"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "images", "page.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	f := NewFileFetcher(root)

	for _, src := range []string{"images/page.png", "/images/page.png", "file://images/page.png"} {
		data, err := f.Fetch(context.Background(), src)
		if err != nil {
			t.Errorf("Fetch(%q) failed: %v", src, err)
			continue
		}
		if string(data) != "png" {
			t.Errorf("Fetch(%q) returned %q", src, data)
		}
	}

	if _, err := f.Fetch(context.Background(), "../secret.txt"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("expected ErrPathEscape, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), "images/missing.png"); err == nil {
		t.Error("expected error for missing file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, "images/page.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPFetcher_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	cache, _ := NewDiskCache(t.TempDir())
	f := NewHTTPFetcher(server.Client(), cache)

	for i := 0; i < 2; i++ {
		data, err := f.Fetch(context.Background(), server.URL+"/asset.bin")
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("unexpected payload %q", data)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("expected one request thanks to the cache, got %d", hits.Load())
	}
}

func TestHTTPFetcher_RefetchesEmptyCacheEntry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	src := server.URL + "/asset.bin"
	cache, _ := NewDiskCache(t.TempDir())
	if err := os.WriteFile(cache.Path(src), nil, 0644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	f := NewHTTPFetcher(server.Client(), cache)
	data, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected payload %q", data)
	}
	if hits.Load() != 1 {
		t.Errorf("expected the empty entry to be refetched, got %d requests", hits.Load())
	}

	cached, ok := cache.Get(src)
	if !ok || string(cached) != "payload" {
		t.Errorf("expected the refetched payload to be cached, got %q (hit=%v)", cached, ok)
	}
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), nil)

	_, err := f.Fetch(context.Background(), server.URL+"/missing.png")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", statusErr.StatusCode)
	}
}

type recordingFetcher struct {
	name string
	got  []string
}

func (r *recordingFetcher) Fetch(_ context.Context, src string) ([]byte, error) {
	r.got = append(r.got, src)
	return []byte(r.name), nil
}

func TestMultiFetcher_RoutesByScheme(t *testing.T) {
	local := &recordingFetcher{name: "local"}
	remote := &recordingFetcher{name: "remote"}
	m := &MultiFetcher{Local: local, Remote: remote}

	tests := map[string]string{
		"models/owl.glb":            "local",
		"file:///models/owl.glb":    "local",
		"https://cdn.example.com/a": "remote",
		"http://cdn.example.com/b":  "remote",
	}
	for src, want := range tests {
		data, err := m.Fetch(context.Background(), src)
		if err != nil {
			t.Errorf("Fetch(%q) failed: %v", src, err)
			continue
		}
		if string(data) != want {
			t.Errorf("Fetch(%q) routed to %s, want %s", src, data, want)
		}
	}

	if _, err := m.Fetch(context.Background(), "ftp://example.com/x"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource, got %v", err)
	}

	localOnly := &MultiFetcher{Local: local}
	if _, err := localOnly.Fetch(context.Background(), "https://cdn.example.com/a"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource without remote fetcher, got %v", err)
	}
}

func TestNewDefaultFetcher(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "note.txt"), []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote"))
	}))
	defer server.Close()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	f, err := NewDefaultFetcher(root, cacheDir)
	if err != nil {
		t.Fatalf("NewDefaultFetcher failed: %v", err)
	}

	data, err := f.Fetch(context.Background(), "note.txt")
	if err != nil || string(data) != "local" {
		t.Errorf("local fetch = %q, %v", data, err)
	}

	data, err = f.Fetch(context.Background(), server.URL+"/a.bin")
	if err != nil || string(data) != "remote" {
		t.Errorf("remote fetch = %q, %v", data, err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 cached file, got %d", len(entries))
	}
}
