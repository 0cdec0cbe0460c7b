package trackers

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
)

type DoneCmd struct {
	Tracker string `arg:"" help:"Tracker ID, ID prefix or title."`
	Date    string `help:"Day to toggle (YYYY-MM-DD, 'today' or 'yesterday')." default:"today"`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	t, err := svc.FindTracker(bg, c.Tracker)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	done, err := svc.ToggleCompletion(bg, t.ID, day)
	if err != nil {
		return fmt.Errorf("failed to toggle completion: %w", err)
	}
	if done {
		ctx.Printf("✓ %s %s done on %s\n", t.Emoji, t.Title, day.Format(constants.DateFormat))
	} else {
		ctx.Printf("○ %s %s no longer done on %s\n", t.Emoji, t.Title, day.Format(constants.DateFormat))
	}
	return nil
}
