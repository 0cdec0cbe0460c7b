package trackers

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tracker"
)

type AddCmd struct {
	Title    string `arg:"" help:"Tracker title."`
	Emoji    string `short:"e" help:"Emoji from the palette (defaults to the first)."`
	Color    string `short:"c" help:"Hex color from the palette (defaults to the first)."`
	Days     string `short:"d" help:"Comma-separated weekdays or 'daily'. Leave empty for a one-off event."`
	Category string `short:"C" help:"Category title or ID." required:""`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	schedule, err := models.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}
	category, err := svc.FindCategory(bg, c.Category)
	if err != nil {
		return err
	}

	emoji, color := c.Emoji, c.Color
	if emoji == "" {
		emoji = constants.Emojis[0]
	}
	if color == "" {
		color = constants.Colors[0]
	}

	t, err := svc.AddTracker(bg, tracker.NewTrackerInput{
		Title:      c.Title,
		Emoji:      emoji,
		Color:      color,
		Schedule:   schedule,
		CategoryID: category.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to add tracker: %w", err)
	}

	ctx.Printf("Added %s %s to %s (%s) [%s]\n", t.Emoji, t.Title, category.Title, t.Schedule, cli.ShortID(t.ID))
	return nil
}
