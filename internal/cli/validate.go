package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookar/internal/catalog"
	"github.com/mrlokans/bookar/internal/config"
)

// ValidateCommand checks a catalog file without loading any asset.
type ValidateCommand struct {
	CatalogPath string

	Out io.Writer
}

func NewValidateCommand() *ValidateCommand {
	return &ValidateCommand{Out: os.Stdout}
}

func (cmd *ValidateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)

	fs.StringVar(&cmd.CatalogPath, "catalog", config.DefaultCatalogPath, "Path to the chapter catalog")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s validate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Check a chapter catalog for structural errors.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ValidateCommand) Run() error {
	cat, err := catalog.Load(cmd.CatalogPath)
	if err != nil {
		return err
	}

	targets, assetCount := 0, 0
	for _, ch := range cat.All() {
		targets += len(ch.Targets)
		for _, t := range ch.Targets {
			if t.Entity != nil {
				assetCount += len(t.Entity.Assets)
			}
		}
	}

	fmt.Fprintf(cmd.Out, "Catalog %s is valid\n", cmd.CatalogPath)
	if v := cat.Version(); v != "" {
		fmt.Fprintf(cmd.Out, "  version:  %s\n", v)
	}
	fmt.Fprintf(cmd.Out, "  chapters: %d\n", cat.Len())
	fmt.Fprintf(cmd.Out, "  targets:  %d\n", targets)
	fmt.Fprintf(cmd.Out, "  assets:   %d\n", assetCount)
	return nil
}
