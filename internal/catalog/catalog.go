// Package catalog reads the static chapter configuration.
//
// The catalog file is YAML (JSON is accepted as well, being a YAML subset):
//
//	version: "1.0.0"
//	chapters:
//	  - id: forest
//	    order: 1
//	    title: Into the forest
//	    image_target_src: targets/forest.mind
//	    targets:
//	      - id: owl
//	        mindar_target_index: 0
//	        entity:
//	          type: model
//	          assets:
//	            - id: owl-model
//	              kind: gltf
//	              src: models/owl.glb
//
// Missing target and asset ids are filled in deterministically and asset
// kinds are normalized, so the rest of the application never sees raw
// authoring values.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookar/internal/entities"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

type file struct {
	Version  string                 `yaml:"version"`
	Chapters []entities.ChapterData `yaml:"chapters"`
}

// Catalog is an immutable, ordered set of chapter definitions.
type Catalog struct {
	version  string
	chapters []entities.ChapterData
	index    map[string]int
}

// Load reads and parses the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c, err := New(f.Chapters)
	if err != nil {
		return nil, err
	}
	c.version = f.Version
	return c, nil
}

// New validates and normalizes chapters. Chapters are ordered by their Order
// field, ties keeping their authored position.
func New(chapters []entities.ChapterData) (*Catalog, error) {
	normalized := make([]entities.ChapterData, len(chapters))
	for i, ch := range chapters {
		normalized[i] = normalizeChapter(ch)
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Order < normalized[j].Order
	})

	c := &Catalog{
		chapters: normalized,
		index:    make(map[string]int, len(normalized)),
	}
	for i, ch := range normalized {
		if ch.ID == "" {
			return nil, fmt.Errorf("%w: chapter at position %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[ch.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate chapter id %q", ErrInvalidCatalog, ch.ID)
		}
		if err := validateChapter(ch); err != nil {
			return nil, err
		}
		c.index[ch.ID] = i
	}
	return c, nil
}

// Version returns the optional configuration version string.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of chapters.
func (c *Catalog) Len() int {
	return len(c.chapters)
}

// Chapter returns the definition of the chapter with the given id.
func (c *Catalog) Chapter(id string) (entities.ChapterData, error) {
	i, ok := c.index[id]
	if !ok {
		return entities.ChapterData{}, fmt.Errorf("%w: %s", ErrChapterNotFound, id)
	}
	return c.chapters[i], nil
}

// All returns every chapter definition in catalog order.
func (c *Catalog) All() []entities.ChapterData {
	return append([]entities.ChapterData(nil), c.chapters...)
}

// IDs returns the chapter ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.chapters))
	for i, ch := range c.chapters {
		ids[i] = ch.ID
	}
	return ids
}

func normalizeChapter(ch entities.ChapterData) entities.ChapterData {
	targets := make([]entities.TargetData, len(ch.Targets))
	for i, t := range ch.Targets {
		if t.ID == "" {
			t.ID = fmt.Sprintf("%s-t%d", ch.ID, i)
		}
		if t.Entity != nil {
			entity := *t.Entity
			if entity.Type == "" {
				entity.Type = entities.EntityTypeBasic
			}
			assets := make([]entities.AssetData, len(entity.Assets))
			for j, a := range entity.Assets {
				if a.ID == "" {
					a.ID = fmt.Sprintf("%s-a%d", t.ID, j)
				}
				a.Kind = string(entities.ParseAssetKind(a.Kind))
				assets[j] = a
			}
			entity.Assets = assets
			t.Entity = &entity
		}
		targets[i] = t
	}
	ch.Targets = targets
	return ch
}

func validateChapter(ch entities.ChapterData) error {
	seen := make(map[string]string)
	claim := func(id, what string) error {
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: chapter %q: %s id %q already used by a %s", ErrInvalidCatalog, ch.ID, what, id, prev)
		}
		seen[id] = what
		return nil
	}

	for _, t := range ch.Targets {
		if err := claim(t.ID, "target"); err != nil {
			return err
		}
		if t.Entity == nil {
			continue
		}
		for _, a := range t.Entity.Assets {
			if err := claim(a.ID, "asset"); err != nil {
				return err
			}
		}
	}
	return nil
}
