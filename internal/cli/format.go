package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/filter"
	"github.com/julianstephens/tracker/internal/models"
)

var headingStyle = lipgloss.NewStyle().Bold(true)

// FormatTracker renders one line of tracker output.
func FormatTracker(t models.Tracker, done bool) string {
	mark := "[ ]"
	if done {
		mark = "[x]"
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("●")
	return fmt.Sprintf("%s %s %s %s  (%s)  %s", mark, dot, t.Emoji, t.Title, t.Schedule.String(), ShortID(t.ID))
}

// ShortID trims an ID for display. FindTracker accepts the prefix.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintGroups writes grouped trackers under category headings.
func (c *Context) PrintGroups(groups []filter.Group, completed map[string]bool) {
	for i, g := range groups {
		if i > 0 {
			c.Println()
		}
		c.Println(headingStyle.Render(strings.ToUpper(g.Category.Title)))
		for _, t := range g.Trackers {
			c.Println("  " + FormatTracker(t, completed[t.ID]))
		}
	}
}
