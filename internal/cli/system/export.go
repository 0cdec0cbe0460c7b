package system

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/export"
	"github.com/julianstephens/tracker/internal/utils"
)

type ExportCmd struct {
	Format string `short:"f" help:"Output format: yaml, json or cbor. Defaults to the --out extension, then yaml."`
	Out    string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := c.format()
	if err != nil {
		return err
	}

	snap, err := export.Take(context.Background(), ctx.Store, ctx.Clock.Now())
	if err != nil {
		return err
	}

	var w io.Writer = ctx.Out
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Out, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Encode(w, snap, format); err != nil {
		return err
	}
	if c.Out != "" {
		ctx.Printf("Exported %d trackers and %d completions to %s\n", len(snap.Trackers), len(snap.Records), c.Out)
	}
	return nil
}

func (c *ExportCmd) format() (export.Format, error) {
	switch {
	case c.Format != "":
		return export.ParseFormat(c.Format)
	case c.Out != "":
		if f, err := export.FormatFromPath(c.Out); err == nil {
			return f, nil
		}
	}
	return export.FormatYAML, nil
}

type ImportCmd struct {
	File         string `arg:"" help:"Snapshot file to import." type:"existingfile"`
	Format       string `short:"f" help:"Input format. Defaults to the file extension."`
	WithSettings bool   `help:"Also replace settings with the ones in the snapshot."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	format, err := export.FormatFromPath(c.File)
	if c.Format != "" {
		format, err = export.ParseFormat(c.Format)
	}
	if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := export.Decode(f, format)
	if err != nil {
		return err
	}

	today, err := ctx.ParseDay("")
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	sum, err := export.Restore(context.Background(), ctx.Store, snap, export.RestoreOptions{
		Today:        utils.DayKey(today),
		WithSettings: c.WithSettings,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if c.WithSettings {
		ctx.ResetService()
	}
	ctx.Printf("Imported %d categories, %d trackers and %d completions (%d already present)\n",
		sum.Categories, sum.Trackers, sum.Records, sum.Skipped)
	return nil
}
