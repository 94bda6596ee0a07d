package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookar/internal/entities"
)

const sampleYAML = `
version: "1.2.0"
chapters:
  - id: river
    order: 2
    title: The river
    image_target_src: targets/river.mind
    targets:
      - mindar_target_index: 0
        title: Heron
        entity:
          assets:
            - kind: image
              src: images/heron.png
  - id: forest
    order: 1
    title: Into the forest
    first_page: 3
    last_page: 9
    image_target_src: targets/forest.mind
    targets:
      - id: owl
        mindar_target_index: 0
        book_id: book-1
        tags: [bird, night]
        related_targets: [fox]
        entity:
          type: model
          assets:
            - id: owl-model
              kind: gltf
              src: models/owl.glb
            - kind: hologram
              src: extra/owl.bin
      - id: fox
        mindar_target_index: 1
`

func TestParse_YAML(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", c.Version())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"forest", "river"}, c.IDs(), "chapters are ordered by order field")

	forest, err := c.Chapter("forest")
	require.NoError(t, err)
	assert.Equal(t, 3, forest.FirstPage)
	require.Len(t, forest.Targets, 2)

	owl := forest.Targets[0]
	assert.Equal(t, []string{"bird", "night"}, owl.Tags)
	assert.Equal(t, []string{"fox"}, owl.RelatedTargets)
	require.NotNil(t, owl.Entity)
	assert.Equal(t, entities.EntityTypeModel, owl.Entity.Type)
	assert.Equal(t, "model", owl.Entity.Assets[0].Kind, "gltf is normalized to model")
	assert.Equal(t, "owl-a1", owl.Entity.Assets[1].ID)
	assert.Equal(t, "generic", owl.Entity.Assets[1].Kind)
	assert.Nil(t, forest.Targets[1].Entity)

	river, err := c.Chapter("river")
	require.NoError(t, err)
	assert.Equal(t, "river-t0", river.Targets[0].ID)
	assert.Equal(t, "river-t0-a0", river.Targets[0].Entity.Assets[0].ID)
	assert.Equal(t, entities.EntityTypeBasic, river.Targets[0].Entity.Type)
}

func TestParse_JSON(t *testing.T) {
	data := `{"chapters":[{"id":"c1","targets":[{"id":"t0","entity":{"assets":[{"id":"a0","kind":"video","src":"v.mp4"}]}}]}]}`

	c, err := Parse([]byte(data))
	require.NoError(t, err)

	ch, err := c.Chapter("c1")
	require.NoError(t, err)
	assert.Equal(t, "video", ch.Targets[0].Entity.Assets[0].Kind)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		chapters []entities.ChapterData
	}{
		{"missing chapter id", []entities.ChapterData{{Title: "untitled"}}},
		{"duplicate chapter id", []entities.ChapterData{{ID: "c1"}, {ID: "c1"}}},
		{"duplicate target id", []entities.ChapterData{{ID: "c1", Targets: []entities.TargetData{{ID: "t"}, {ID: "t"}}}}},
		{"asset id clashes with target", []entities.ChapterData{{ID: "c1", Targets: []entities.TargetData{
			{ID: "t", Entity: &entities.EntityData{Assets: []entities.AssetData{{ID: "t"}}}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chapters)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "got %v", err)
		})
	}
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	input := []entities.ChapterData{{
		ID: "c1",
		Targets: []entities.TargetData{{
			Entity: &entities.EntityData{Assets: []entities.AssetData{{Kind: "glb"}}},
		}},
	}}

	_, err := New(input)
	require.NoError(t, err)

	assert.Empty(t, input[0].Targets[0].ID)
	assert.Equal(t, "glb", input[0].Targets[0].Entity.Assets[0].Kind)
}

func TestChapter_NotFound(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)

	_, err = c.Chapter("missing")
	assert.True(t, errors.Is(err, ErrChapterNotFound))
	assert.Empty(t, c.All())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("chapters: [unclosed"), 0644))
	_, err = Load(bad)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}
