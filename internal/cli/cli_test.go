package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookar/internal/chapters"
	"github.com/mrlokans/bookar/internal/entities"
)

const testCatalog = `
version: "0.1.0"
chapters:
  - id: forest
    order: 1
    title: Into the forest
    targets:
      - id: owl
        entity:
          assets:
            - id: owl-notes
              src: forest/owl.txt
            - id: owl-link
              kind: link
              src: https://example.com/owl
  - id: river
    order: 2
    title: The river
    targets:
      - id: fish
        entity:
          assets:
            - id: fish-notes
              src: river/missing.txt
`

func writeFixture(t *testing.T) (catalogPath, assetsRoot string) {
	t.Helper()
	dir := t.TempDir()

	catalogPath = filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0644))

	assetsRoot = filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(assetsRoot, "forest"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(assetsRoot, "forest", "owl.txt"), []byte("hoot"), 0644))
	return catalogPath, assetsRoot
}

func TestLoadCommand_ParseFlags(t *testing.T) {
	cmd := NewLoadCommand()
	err := cmd.ParseFlags([]string{"-catalog", "c.yaml", "-assets", "pub", "-chapter", "forest", "-timeout", "5s", "-json"})
	require.NoError(t, err)

	assert.Equal(t, "c.yaml", cmd.CatalogPath)
	assert.Equal(t, "pub", cmd.AssetsRoot)
	assert.Equal(t, "forest", cmd.ChapterID)
	assert.Equal(t, 5*time.Second, cmd.Timeout)
	assert.True(t, cmd.JSON)
}

func TestLoadCommand_ParseFlags_RequiresChapter(t *testing.T) {
	cmd := NewLoadCommand()
	err := cmd.ParseFlags([]string{"-catalog", "c.yaml"})
	assert.Error(t, err)
}

func TestLoadCommand_Run(t *testing.T) {
	catalogPath, assetsRoot := writeFixture(t)

	var out bytes.Buffer
	cmd := &LoadCommand{
		CatalogPath: catalogPath,
		AssetsRoot:  assetsRoot,
		ChapterID:   "forest",
		Timeout:     time.Second,
		Out:         &out,
	}

	require.NoError(t, cmd.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, `Chapter forest "Into the forest": loaded`)
	assert.Contains(t, text, "target owl: loaded")
	assert.Contains(t, text, "owl-notes: loaded")
	assert.Contains(t, text, "(1 assets fetched)")
}

func TestLoadCommand_Run_JSON(t *testing.T) {
	catalogPath, assetsRoot := writeFixture(t)

	var out bytes.Buffer
	cmd := &LoadCommand{
		CatalogPath: catalogPath,
		AssetsRoot:  assetsRoot,
		ChapterID:   "forest",
		JSON:        true,
		Out:         &out,
	}
	require.NoError(t, cmd.Run(context.Background()))

	var result chapters.SwitchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "forest", result.ChapterID)
	require.NotNil(t, result.Chapter)
	assert.Equal(t, entities.StatusLoaded, result.Chapter.Status)
}

func TestLoadCommand_Run_FailedAsset(t *testing.T) {
	catalogPath, assetsRoot := writeFixture(t)

	var out bytes.Buffer
	cmd := &LoadCommand{
		CatalogPath: catalogPath,
		AssetsRoot:  assetsRoot,
		ChapterID:   "river",
		Out:         &out,
	}

	err := cmd.Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, out.String(), "target fish: error")
	assert.Contains(t, out.String(), "fish-notes: error")
}

func TestLoadCommand_Run_UnknownChapter(t *testing.T) {
	catalogPath, assetsRoot := writeFixture(t)

	cmd := &LoadCommand{
		CatalogPath: catalogPath,
		AssetsRoot:  assetsRoot,
		ChapterID:   "desert",
		Out:         &bytes.Buffer{},
	}
	assert.Error(t, cmd.Run(context.Background()))
}

func TestLoadCommand_Run_MissingCatalog(t *testing.T) {
	cmd := &LoadCommand{
		CatalogPath: filepath.Join(t.TempDir(), "missing.yaml"),
		ChapterID:   "forest",
		Out:         &bytes.Buffer{},
	}
	assert.Error(t, cmd.Run(context.Background()))
}

func TestValidateCommand(t *testing.T) {
	catalogPath, _ := writeFixture(t)

	var out bytes.Buffer
	cmd := NewValidateCommand()
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-catalog", catalogPath}))
	require.NoError(t, cmd.Run())

	text := out.String()
	assert.Contains(t, text, "is valid")
	assert.Contains(t, text, "version:  0.1.0")
	assert.Contains(t, text, "chapters: 2")
	assert.Contains(t, text, "targets:  2")
	assert.Contains(t, text, "assets:   3")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chapters: [\n"), 0644))

	cmd := &ValidateCommand{CatalogPath: path, Out: &bytes.Buffer{}}
	assert.Error(t, cmd.Run())
}
