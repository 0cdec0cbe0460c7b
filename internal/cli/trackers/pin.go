package trackers

import (
	"context"

	"github.com/julianstephens/tracker/internal/cli"
)

type PinCmd struct {
	Tracker string `arg:"" help:"Tracker ID, ID prefix or title."`
}

func (c *PinCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	t, err := svc.FindTracker(bg, c.Tracker)
	if err != nil {
		return err
	}
	updated, err := svc.TogglePin(bg, t.ID)
	if err != nil {
		return err
	}

	if updated.IsPinned {
		ctx.Printf("📌 Pinned %s\n", updated.Title)
		return nil
	}
	category, err := svc.FindCategory(bg, updated.CategoryID)
	if err != nil {
		ctx.Printf("Unpinned %s\n", updated.Title)
		return nil
	}
	ctx.Printf("Unpinned %s, back in %s\n", updated.Title, category.Title)
	return nil
}
