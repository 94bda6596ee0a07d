package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/bookar/internal/assets"
	"github.com/mrlokans/bookar/internal/catalog"
	"github.com/mrlokans/bookar/internal/chapters"
	"github.com/mrlokans/bookar/internal/config"
	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
	"github.com/mrlokans/bookar/internal/scene"
)

// LoadCommand loads one chapter outside the server and prints the resolved
// tree.
type LoadCommand struct {
	CatalogPath    string
	AssetsRoot     string
	CacheDir       string
	ChapterID      string
	Timeout        time.Duration
	MaxConcurrency int
	JSON           bool

	Out io.Writer
}

func NewLoadCommand() *LoadCommand {
	return &LoadCommand{Out: os.Stdout}
}

func (cmd *LoadCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)

	fs.StringVar(&cmd.CatalogPath, "catalog", config.DefaultCatalogPath, "Path to the chapter catalog")
	fs.StringVar(&cmd.AssetsRoot, "assets", config.DefaultAssetsRoot, "Directory local asset sources are resolved against")
	fs.StringVar(&cmd.CacheDir, "cache", "", "Directory for caching remote assets (disabled if empty)")
	fs.StringVar(&cmd.ChapterID, "chapter", "", "Chapter ID to load (required)")
	fs.DurationVar(&cmd.Timeout, "timeout", assets.DefaultTimeout, "Per-asset load timeout")
	fs.IntVar(&cmd.MaxConcurrency, "concurrency", 0, "Concurrent asset loads per target (0 = unbounded)")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the chapter tree as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s load [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load a chapter and report the status of every target and asset.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s load -catalog ./catalog.yaml -chapter forest\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s load -chapter forest -assets ./public -timeout 5s -json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ChapterID == "" {
		fs.Usage()
		return fmt.Errorf("chapter is required")
	}

	return nil
}

// Run loads the chapter. It returns an error when the chapter does not end
// loaded, after printing the tree either way.
func (cmd *LoadCommand) Run(ctx context.Context) error {
	cat, err := catalog.Load(cmd.CatalogPath)
	if err != nil {
		return err
	}

	fetcher, err := assets.NewDefaultFetcher(cmd.AssetsRoot, cmd.CacheDir)
	if err != nil {
		return err
	}

	g := game.New()
	g.OnError(func(info entities.ErrorInfo) {
		fmt.Fprintf(os.Stderr, "error: %s\n", info.Error())
	})

	registry := assets.NewRegistry(fetcher, assets.Options{
		Timeout:        cmd.Timeout,
		MaxConcurrency: cmd.MaxConcurrency,
	})
	manager := chapters.NewManager(chapters.ManagerConfig{
		Game:     g,
		Catalog:  cat,
		Loader:   chapters.NewLoader(registry, nil),
		Renderer: scene.NewManifest(),
	})

	start := time.Now()
	result := manager.SwitchChapter(ctx, cmd.ChapterID)
	elapsed := time.Since(start)

	if cmd.JSON {
		enc := json.NewEncoder(cmd.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printChapter(cmd.Out, result.Chapter)
		fmt.Fprintf(cmd.Out, "\nFinished in %v (%d assets fetched)\n", elapsed.Round(time.Millisecond), registry.Attempts())
	}

	if result.Chapter == nil || result.Chapter.Status != entities.StatusLoaded {
		return fmt.Errorf("chapter %s did not load", cmd.ChapterID)
	}
	return nil
}

func printChapter(w io.Writer, c *entities.Chapter) {
	if c == nil {
		fmt.Fprintln(w, "No chapter")
		return
	}

	fmt.Fprintf(w, "Chapter %s %q: %s\n", c.ID, c.Title, c.Status)
	if c.Error != nil {
		fmt.Fprintf(w, "  error: %s\n", c.Error.Error())
	}
	for i, t := range c.Targets {
		fmt.Fprintf(w, "  %d. target %s: %s\n", i+1, t.ID, t.Status)
		if t.Entity == nil {
			continue
		}
		for _, a := range t.Entity.Assets {
			line := fmt.Sprintf("       %-8s %s: %s", a.Kind, a.ID, a.Status)
			if a.Error != nil {
				line += " (" + a.Error.Msg + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
}
