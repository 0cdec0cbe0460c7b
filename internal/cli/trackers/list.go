package trackers

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/filter"
	"github.com/julianstephens/tracker/internal/tracker"
)

type ListCmd struct {
	Date   string `help:"Day to show (YYYY-MM-DD, 'today' or 'yesterday')." default:"today"`
	Search string `short:"s" help:"Search titles on every day, ignoring case and accents."`
	Filter string `short:"f" help:"Filter mode: all, today, completed or not-completed. Defaults to the saved setting."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()

	mode, err := c.mode(bg, svc)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	if mode == filter.ModeToday {
		day = svc.Today()
	}

	q := tracker.Query{Text: c.Search, Mode: mode}
	if c.Search == "" {
		q.Date = &day
	}
	groups, err := svc.Visible(bg, q)
	if err != nil {
		return err
	}

	completed, err := svc.CompletedOn(bg, day)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		ctx.Println(emptyMessage(c.Search, day))
		return nil
	}
	if c.Search == "" {
		ctx.Printf("%s (%s)\n\n", day.Format("Monday, January 2 2006"), mode)
	}
	ctx.PrintGroups(groups, completed)
	return nil
}

func (c *ListCmd) mode(ctx context.Context, svc *tracker.Service) (filter.Mode, error) {
	if c.Filter != "" {
		m, ok := constants.ParseFilterMode(c.Filter)
		if !ok {
			return "", fmt.Errorf("unknown filter mode %q", c.Filter)
		}
		return m, nil
	}
	settings, err := svc.Settings(ctx)
	if err != nil {
		return "", err
	}
	return settings.DefaultFilter, nil
}

func emptyMessage(search string, day time.Time) string {
	if search != "" {
		return fmt.Sprintf("No trackers match %q.", search)
	}
	return fmt.Sprintf("Nothing to track on %s.", day.Format(constants.DateFormat))
}
