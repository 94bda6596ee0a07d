// Command generate_demo writes a small demo book: a chapter catalog plus the
// image, model and audio assets it references. With -db it also loads every
// chapter once so the progress table has data.
// Usage: go run cmd/generate_demo/main.go [-out ./demo] [-db ./demo/demo.db]
package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookar/internal/config"
	"github.com/mrlokans/bookar/internal/database"
	"github.com/mrlokans/bookar/internal/database/progress"
	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/entrypoint"
)

const defaultDemoDir = "./demo"

type demoCatalog struct {
	Version  string                 `yaml:"version"`
	Chapters []entities.ChapterData `yaml:"chapters"`
}

func main() {
	outDir := flag.String("out", defaultDemoDir, "directory to write the demo catalog and assets to")
	dbPath := flag.String("db", "", "optional database to record demo load progress in")
	flag.Parse()

	assetsRoot := filepath.Join(*outDir, "assets")
	log.Printf("Generating demo book in %s...", *outDir)

	files := map[string][]byte{
		"images/owl.png":   demoPNG(color.RGBA{R: 120, G: 90, B: 40, A: 255}),
		"images/heron.png": demoPNG(color.RGBA{R: 60, G: 110, B: 160, A: 255}),
		"models/owl.gltf":  demoGLTF("owl"),
		"audio/river.wav":  demoWAV(440, 250*time.Millisecond),
	}
	for name, data := range files {
		path := filepath.Join(assetsRoot, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			log.Fatalf("Failed to create asset directory: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		log.Printf("Wrote asset %s (%d bytes)", name, len(data))
	}

	catalogPath := filepath.Join(*outDir, "catalog.yaml")
	data, err := yaml.Marshal(demoCatalog{Version: "1.0.0", Chapters: demoChapters()})
	if err != nil {
		log.Fatalf("Failed to encode catalog: %v", err)
	}
	if err := os.WriteFile(catalogPath, data, 0644); err != nil {
		log.Fatalf("Failed to write catalog: %v", err)
	}
	log.Printf("Wrote catalog %s", catalogPath)

	if *dbPath != "" {
		seedProgress(*dbPath, catalogPath, assetsRoot)
	}

	log.Printf("Demo book generated successfully")
	log.Printf("Run with: CATALOG_PATH=%s ASSETS_ROOT=%s ./bookar", catalogPath, assetsRoot)
}

func demoChapters() []entities.ChapterData {
	return []entities.ChapterData{
		{
			ID:             "forest",
			Order:          1,
			Title:          "Into the forest",
			FirstPage:      1,
			LastPage:       12,
			ImageTargetSrc: "targets/forest.mind",
			Targets: []entities.TargetData{
				{
					ID:                "owl",
					MindARTargetIndex: 0,
					BookID:            "demo-book",
					Title:             "The owl",
					Description:       "A tawny owl watches from the old oak.",
					Tags:              []string{"bird", "night"},
					RelatedTargets:    []string{"owl-card"},
					Entity: &entities.EntityData{
						Type: entities.EntityTypeModel,
						Assets: []entities.AssetData{
							{ID: "owl-model", Kind: "gltf", Src: "models/owl.gltf"},
							{ID: "owl-texture", Kind: "image", Src: "images/owl.png"},
						},
					},
				},
				{
					ID:                "owl-card",
					MindARTargetIndex: 1,
					BookID:            "demo-book",
					Title:             "Owl field notes",
					Entity: &entities.EntityData{
						Type: entities.EntityTypeLink,
						Assets: []entities.AssetData{
							{ID: "owl-wiki", Kind: "link", Src: "https://en.wikipedia.org/wiki/Tawny_owl"},
						},
					},
				},
			},
		},
		{
			ID:             "river",
			Order:          2,
			Title:          "Down by the river",
			FirstPage:      13,
			LastPage:       24,
			ImageTargetSrc: "targets/river.mind",
			Targets: []entities.TargetData{
				{
					ID:                "heron",
					MindARTargetIndex: 0,
					BookID:            "demo-book",
					Title:             "The heron",
					Entity: &entities.EntityData{
						Type: entities.EntityTypeBasic,
						Assets: []entities.AssetData{
							{ID: "heron-image", Kind: "image", Src: "images/heron.png"},
							{ID: "river-sound", Kind: "audio", Src: "audio/river.wav"},
						},
					},
				},
			},
		},
	}
}

func seedProgress(dbPath, catalogPath, assetsRoot string) {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	cfg.Catalog.Path = catalogPath
	cfg.Assets.Root = assetsRoot

	app, err := entrypoint.NewApp(cfg, progress.NewRepository(db.DB))
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	loaded, err := app.Manager.PreloadAll(context.Background())
	if err != nil {
		log.Printf("Some demo chapters failed to load: %v", err)
	}
	log.Printf("Loaded %d/%d demo chapters into %s", loaded, app.Catalog.Len(), dbPath)
}

func demoPNG(fill color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := fill
			if (x/4+y/4)%2 == 0 {
				c.A = 180
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// demoGLTF returns a minimal glTF 2.0 document with a single empty node.
func demoGLTF(name string) []byte {
	doc := map[string]any{
		"asset":  map[string]string{"version": "2.0", "generator": "bookar demo"},
		"scene":  0,
		"scenes": []map[string]any{{"nodes": []int{0}}},
		"nodes":  []map[string]any{{"name": name}},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode glTF: %v", err)
	}
	return data
}

// demoWAV renders a mono 16-bit PCM sine tone.
func demoWAV(freq float64, length time.Duration) []byte {
	const sampleRate = 8000
	samples := int(length.Seconds() * sampleRate)
	dataSize := samples * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		binary.Write(&buf, binary.LittleEndian, int16(v*math.MaxInt16/2))
	}
	return buf.Bytes()
}
