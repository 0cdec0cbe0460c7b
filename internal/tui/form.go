package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tracker"
)

// trackerDraft holds the values bound to the add form. The form keeps
// pointers into it, so it lives on the heap for the life of the form.
type trackerDraft struct {
	Title      string
	Emoji      string
	Color      string
	Days       []time.Weekday
	CategoryID string
}

func (d *trackerDraft) input() tracker.NewTrackerInput {
	return tracker.NewTrackerInput{
		Title:      strings.TrimSpace(d.Title),
		Emoji:      d.Emoji,
		Color:      d.Color,
		Schedule:   models.ToMask(d.Days),
		CategoryID: d.CategoryID,
	}
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func newTrackerForm(d *trackerDraft, categories []models.Category) *huh.Form {
	emojis := make([]huh.Option[string], len(constants.Emojis))
	for i, e := range constants.Emojis {
		emojis[i] = huh.NewOption(e, e)
	}

	colors := make([]huh.Option[string], len(constants.Colors))
	for i, c := range constants.Colors {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●")
		colors[i] = huh.NewOption(swatch+" "+c, c)
	}

	days := make([]huh.Option[time.Weekday], len(weekdayOrder))
	for i, wd := range weekdayOrder {
		days[i] = huh.NewOption(wd.String(), wd)
	}

	cats := make([]huh.Option[string], len(categories))
	for i, c := range categories {
		cats[i] = huh.NewOption(c.Title, c.ID)
	}

	if d.Emoji == "" {
		d.Emoji = constants.Emojis[0]
	}
	if d.Color == "" {
		d.Color = constants.Colors[0]
	}
	if d.CategoryID == "" && len(categories) > 0 {
		d.CategoryID = categories[0].ID
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&d.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errEmptyTitle
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(cats...).
				Value(&d.CategoryID),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Emoji").
				Options(emojis...).
				Value(&d.Emoji),
			huh.NewSelect[string]().
				Title("Color").
				Options(colors...).
				Value(&d.Color),
		),
		huh.NewGroup(
			huh.NewMultiSelect[time.Weekday]().
				Title("Schedule").
				Description("Leave empty for a one-off event").
				Options(days...).
				Value(&d.Days),
		),
	).WithShowHelp(true)
}
