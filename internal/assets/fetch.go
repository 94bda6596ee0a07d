package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MaxAssetSize bounds how much of a single asset is read into memory.
const MaxAssetSize = 256 << 20

var (
	ErrUnsupportedSource = errors.New("unsupported asset source")
	ErrPathEscape        = errors.New("asset path escapes the asset root")
	ErrAssetTooLarge     = errors.New("asset exceeds maximum size")
)

// Fetcher retrieves the raw bytes behind an asset locator.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// StatusError is returned when a remote asset responds with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d fetching %s", e.StatusCode, e.URL)
}

// FileFetcher reads assets relative to a root directory.
type FileFetcher struct {
	root string
}

func NewFileFetcher(root string) *FileFetcher {
	return &FileFetcher{root: root}
}

func (f *FileFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := strings.TrimPrefix(src, "file://")
	rel = strings.TrimPrefix(filepath.FromSlash(rel), string(filepath.Separator))
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s", ErrPathEscape, src)
	}

	file, err := os.Open(filepath.Join(f.root, rel))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readLimited(file)
}

// HTTPFetcher downloads remote assets, optionally through a DiskCache.
type HTTPFetcher struct {
	client    *http.Client
	cache     *DiskCache
	userAgent string
}

// NewHTTPFetcher creates a fetcher using client. A nil cache disables caching.
func NewHTTPFetcher(client *http.Client, cache *DiskCache) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, cache: cache, userAgent: "BookAR/1.0"}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(src); ok {
			if len(data) > 0 {
				return data, nil
			}
			// An empty cached copy is a leftover of a failed write; refetch.
			if err := f.cache.Invalidate(src); err != nil {
				log.Printf("[ASSETS] Warning: failed to drop empty cache entry for %s: %v", src, err)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: src, StatusCode: resp.StatusCode}
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(src, data); err != nil {
			log.Printf("[ASSETS] Warning: failed to cache %s: %v", src, err)
		}
	}
	return data, nil
}

// MultiFetcher routes locators by scheme: http(s) to the remote fetcher,
// bare paths and file:// to the local one.
type MultiFetcher struct {
	Local  Fetcher
	Remote Fetcher
}

func (m *MultiFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
	}

	switch u.Scheme {
	case "http", "https":
		if m.Remote != nil {
			return m.Remote.Fetch(ctx, src)
		}
	case "", "file":
		if m.Local != nil {
			return m.Local.Fetch(ctx, src)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
}

// NewDefaultFetcher resolves bare paths against root and downloads http(s)
// sources, caching them under cacheDir when it is not empty.
func NewDefaultFetcher(root, cacheDir string) (*MultiFetcher, error) {
	var cache *DiskCache
	if cacheDir != "" {
		c, err := NewDiskCache(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create asset cache: %w", err)
		}
		cache = c
	}
	return &MultiFetcher{
		Local:  NewFileFetcher(root),
		Remote: NewHTTPFetcher(&http.Client{}, cache),
	}, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxAssetSize {
		return nil, ErrAssetTooLarge
	}
	return data, nil
}
