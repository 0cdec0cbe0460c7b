package trackers

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/tracker/internal/cli"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	stats, err := svc.Statistics(context.Background())
	if err != nil {
		return err
	}

	ctx.Printf("Total completions: %d\n", stats.TotalCompletions)
	ctx.Printf("Perfect days:      %d\n", stats.PerfectDays)
	if len(stats.Trackers) == 0 {
		return nil
	}

	ctx.Println()
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRACKER\tDONE\tBEST STREAK")
	for _, t := range stats.Trackers {
		fmt.Fprintf(w, "%s\t%d\t%d\n", t.Title, t.Completions, t.BestStreak)
	}
	return w.Flush()
}
