package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/export"
	"github.com/julianstephens/tracker/internal/utils"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing SQLite database before initializing."`
	Source string `help:"Database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.IsSQLite() {
		if err := ctx.RequireNoSession(); err != nil {
			return err
		}
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.ResetService()
	ctx.Printf("Initialized tracker storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source == "" {
		return nil
	}
	ctx.Printf("Copying data from: %s\n", c.Source)
	if err := c.copyFrom(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" && sameFile(c.Source, dbPath) {
		return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	source, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	bg := context.Background()
	snap, err := export.Take(bg, source, ctx.Clock.Now())
	if err != nil {
		return err
	}
	today, err := ctx.ParseDay("")
	if err != nil {
		return err
	}
	sum, err := export.Restore(bg, ctx.Store, snap, export.RestoreOptions{
		Today:        utils.DayKey(today),
		WithSettings: true,
	})
	if err != nil {
		return err
	}
	ctx.Printf("  Copied %d categories, %d trackers and %d completions\n", sum.Categories, sum.Trackers, sum.Records)
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(config.ExpandHome(a))
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
