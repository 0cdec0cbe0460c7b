package trackers

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tracker"
)

type EditCmd struct {
	Tracker  string  `arg:"" help:"Tracker ID, ID prefix or title."`
	Title    *string `help:"New title."`
	Emoji    *string `short:"e" help:"New emoji."`
	Color    *string `short:"c" help:"New color."`
	Days     *string `short:"d" help:"New weekdays, or 'daily'."`
	OneOff   bool    `help:"Turn the tracker into a one-off event."`
	Category *string `short:"C" help:"New category. Pinned trackers stay pinned and return here when unpinned."`
}

func (c *EditCmd) Validate() error {
	if c.OneOff && c.Days != nil {
		return errors.New("--one-off and --days cannot be combined")
	}
	return nil
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	t, err := svc.FindTracker(bg, c.Tracker)
	if err != nil {
		return err
	}

	edit := tracker.TrackerEdit{Title: c.Title, Emoji: c.Emoji, Color: c.Color}
	switch {
	case c.OneOff:
		var none models.WeekdayMask
		edit.Schedule = &none
	case c.Days != nil:
		mask, err := models.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		edit.Schedule = &mask
	}
	if c.Category != nil {
		category, err := svc.FindCategory(bg, *c.Category)
		if err != nil {
			return err
		}
		edit.CategoryID = &category.ID
	}

	if edit == (tracker.TrackerEdit{}) {
		ctx.Println("No changes specified.")
		return nil
	}

	updated, err := svc.EditTracker(bg, t.ID, edit)
	if err != nil {
		return fmt.Errorf("failed to edit tracker: %w", err)
	}
	ctx.Printf("Updated %s\n", cli.FormatTracker(updated, false))
	return nil
}
