package assets

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// DiskCache keeps fetched remote assets on local disk, keyed by locator.
type DiskCache struct {
	cacheDir string
}

// NewDiskCache creates a cache rooted at cacheDir.
func NewDiskCache(cacheDir string) (*DiskCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{cacheDir: cacheDir}, nil
}

// Path returns the file that holds (or would hold) the asset at src.
func (c *DiskCache) Path(src string) string {
	hash := sha256.Sum256([]byte(src))
	return filepath.Join(c.cacheDir, fmt.Sprintf("asset_%x%s", hash[:12], path.Ext(stripQuery(src))))
}

// Get returns the cached bytes for src, if present.
func (c *DiskCache) Get(src string) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(src))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores data for src. The write goes to a temp file first and is renamed
// into place so readers never observe a partial file.
func (c *DiskCache) Put(src string, data []byte) error {
	tmpFile, err := os.CreateTemp(c.cacheDir, "asset_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, c.Path(src))
}

// Invalidate removes the cached copy of src.
func (c *DiskCache) Invalidate(src string) error {
	if err := os.Remove(c.Path(src)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func stripQuery(src string) string {
	for i := 0; i < len(src); i++ {
		if src[i] == '?' || src[i] == '#' {
			return src[:i]
		}
	}
	return src
}
