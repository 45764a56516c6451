package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/export"
	"github.com/julianstephens/tracker/internal/storage"
)

type ExportCmd struct {
	Output string `short:"o" help:"File to write. Defaults to stdout." type:"path"`
	Format string `short:"f" help:"json or yaml. Inferred from the output file name when omitted."`
}

func (c *ExportCmd) format() (export.Format, error) {
	if c.Format != "" {
		return export.ParseFormat(c.Format)
	}
	if c.Output != "" {
		return export.FormatFromPath(c.Output), nil
	}
	return export.FormatJSON, nil
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := c.format()
	if err != nil {
		return err
	}
	doc, err := export.Build(ctx.Context(), ctx.Store, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build export: %w", err)
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Encode(w, doc, format); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if c.Output != "" {
		fmt.Fprintf(os.Stderr, "✓ Exported %d categories and %d records to %s\n", len(doc.Categories), len(doc.Records), c.Output)
	}
	return nil
}

type ImportCmd struct {
	File   string `arg:"" help:"Export file to import." type:"existingfile"`
	Format string `short:"f" help:"json or yaml. Inferred from the file name when omitted."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	format := export.FormatFromPath(c.File)
	if c.Format != "" {
		var err error
		if format, err = export.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()
	doc, err := export.Decode(f, format)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	var sum export.Summary
	err = svc.Import(ctx.Context(), func(ctx context.Context, p storage.Provider) error {
		var err error
		sum, err = export.Apply(ctx, p, doc, svc.Today())
		return err
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	ctx.InvalidateSettings()

	fmt.Printf("✓ Imported %d new categories, %d trackers and %d records\n", sum.Categories, sum.Trackers, sum.Records)
	if sum.SkippedRecords > 0 {
		fmt.Printf("  Skipped %d records for unknown trackers or future days\n", sum.SkippedRecords)
	}
	return nil
}
