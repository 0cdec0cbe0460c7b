package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/ledger"
	"github.com/julianstephens/tracker/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateAddTracker:
		content = m.form.View()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	case constants.StateStats:
		content = m.stats.View()
	default:
		content = m.viewTrackers()
	}

	parts := []string{m.viewTabs(), docStyle.Render(content)}
	if line := m.viewStatus(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	trackers, stats := activeTabStyle, inactiveTabStyle
	if m.state == constants.StateStats {
		trackers, stats = inactiveTabStyle, activeTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		trackers.Render("Trackers"),
		stats.Render("Stats"),
	)
}

func (m Model) viewTrackers() string {
	var b strings.Builder

	if m.query != "" || m.state == constants.StateSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("all dates · %s", m.mode)))
	} else {
		fmt.Fprintf(&b, "%s %s", m.day.Format("Monday, January 2 2006"), dimStyle.Render("· "+string(m.mode)))
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Nothing to show. Press 'a' to add a tracker."))
		return b.String()
	}

	n := 0
	for _, g := range m.groups {
		b.WriteString(headingStyle.Render(strings.ToUpper(g.Category.Title)))
		b.WriteString("\n")
		for _, t := range g.Trackers {
			b.WriteString(m.renderTracker(t, n == m.cursor))
			b.WriteString("\n")
			n++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTracker(t models.Tracker, selected bool) string {
	done := m.completed[t.ID]
	mark := "○"
	if done {
		mark = "●"
	}
	mark = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(mark)

	title := t.Title
	if done {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s %s %s", mark, t.Emoji, title, dimStyle.Render(t.Schedule.String()))

	if selected {
		return cursorStyle.Render("› ") + line
	}
	return "  " + line
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-6, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %s %s and all its history?", m.pendingDelete.Emoji, m.pendingDelete.Title)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render("  " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render("  " + m.status)
	}
	return ""
}

func renderStats(s ledger.Statistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total completions  %d\n", s.TotalCompletions)
	fmt.Fprintf(&b, "Perfect days       %d\n", s.PerfectDays)
	if len(s.Trackers) == 0 {
		return b.String()
	}

	width := len("TRACKER")
	for _, t := range s.Trackers {
		width = max(width, lipgloss.Width(t.Title))
	}
	b.WriteString("\n")
	b.WriteString(headingStyle.Render(fmt.Sprintf("%-*s  %5s  %6s", width, "TRACKER", "DONE", "STREAK")))
	b.WriteString("\n")
	for _, t := range s.Trackers {
		pad := width - lipgloss.Width(t.Title)
		fmt.Fprintf(&b, "%s%s  %5d  %6d\n", t.Title, strings.Repeat(" ", pad), t.Completions, t.BestStreak)
	}
	return b.String()
}
