package trackers

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
)

type DeleteCmd struct {
	Tracker string `arg:"" help:"Tracker ID, ID prefix or title."`
	Yes     bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	t, err := svc.FindTracker(bg, c.Tracker)
	if err != nil {
		return err
	}
	count, err := svc.CompletionCount(bg, t.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %s %s and its %d completion(s)?", t.Emoji, t.Title, count))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := svc.DeleteTracker(bg, t.ID); err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	ctx.Printf("Deleted %s\n", t.Title)
	return nil
}
