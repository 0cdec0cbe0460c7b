package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.stats.Width = msg.Width - 4
		m.stats.Height = max(msg.Height-8, 1)
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width - 4)
		}
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setGroups(msg.groups, msg.completed)
		return m, nil

	case actionMsg:
		m.status = msg.status
		m.err = msg.err
		return m, m.load()

	case eventMsg:
		logger.Debug("Tracker event", "kind", msg.Kind, "tracker", msg.TrackerID)
		return m, tea.Batch(m.load(), m.waitForEvent())

	case statsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = constants.StateTrackers
			return m, nil
		}
		m.stats.SetContent(renderStats(msg.stats))
		m.stats.GotoTop()
		return m, nil
	}

	switch m.state {
	case constants.StateAddTracker:
		return m.updateForm(msg)
	case constants.StateSearch:
		return m.updateSearch(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateStats:
		return m.updateStats(msg)
	}
	return m.updateTrackers(msg)
}

func (m Model) updateTrackers(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Quit):
		m.quitting = true
		m.close()
		return m, tea.Quit

	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(km, m.keys.PrevDay):
		m.day = m.day.AddDate(0, 0, -1)
		m.status = ""
		return m, m.load()
	case key.Matches(km, m.keys.NextDay):
		m.day = m.day.AddDate(0, 0, 1)
		m.status = ""
		return m, m.load()
	case key.Matches(km, m.keys.Today):
		m.day = m.svc.Today()
		m.status = ""
		return m, m.load()

	case key.Matches(km, m.keys.Filter):
		m.mode = nextMode(m.mode)
		m.cursor = 0
		return m, m.load()

	case key.Matches(km, m.keys.Search):
		m.state = constants.StateSearch
		m.search.SetValue(m.query)
		return m, m.search.Focus()

	case key.Matches(km, m.keys.Back):
		if m.query != "" {
			m.query = ""
			m.search.SetValue("")
			return m, m.load()
		}

	case key.Matches(km, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.toggle(t)
		}
	case key.Matches(km, m.keys.Pin):
		if t, ok := m.selected(); ok {
			return m, m.togglePin(t)
		}
	case key.Matches(km, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.pendingDelete = t
			m.state = constants.StateConfirmDelete
		}

	case key.Matches(km, m.keys.Add):
		categories, err := m.svc.Categories(m.ctx)
		if err != nil {
			m.err = err
			return m, nil
		}
		if len(categories) == 0 {
			m.err = fmt.Errorf("add a category first with `%s category add`", constants.AppName)
			return m, nil
		}
		m.draft = &trackerDraft{}
		m.form = newTrackerForm(m.draft, categories)
		if m.width > 0 {
			m.form = m.form.WithWidth(m.width - 4)
		}
		m.state = constants.StateAddTracker
		m.err = nil
		return m, m.form.Init()

	case key.Matches(km, m.keys.Stats):
		m.state = constants.StateStats
		return m, m.loadStats()

	case key.Matches(km, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			m.query = ""
			m.search.SetValue("")
			m.search.Blur()
			m.state = constants.StateTrackers
			return m, m.load()
		case tea.KeyEnter:
			m.search.Blur()
			m.state = constants.StateTrackers
			return m, nil
		case tea.KeyCtrlC:
			m.quitting = true
			m.close()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == m.query {
		return m, cmd
	}
	m.query = m.search.Value()
	m.cursor = 0
	return m, tea.Batch(cmd, m.load())
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "y", "Y":
		t := m.pendingDelete
		m.pendingDelete = models.Tracker{}
		m.state = constants.StateTrackers
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			if err := svc.DeleteTracker(ctx, t.ID); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: fmt.Sprintf("Deleted %s", t.Title)}
		}
	case "n", "N", "esc", "q":
		m.pendingDelete = models.Tracker{}
		m.state = constants.StateTrackers
	}
	return m, nil
}

func (m Model) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Back), key.Matches(km, m.keys.Stats):
			m.state = constants.StateTrackers
			return m, nil
		case key.Matches(km, m.keys.Quit):
			m.quitting = true
			m.close()
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.stats, cmd = m.stats.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		in := m.draft.input()
		m.form = nil
		m.draft = nil
		m.state = constants.StateTrackers
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			t, err := svc.AddTracker(ctx, in)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: fmt.Sprintf("Added %s %s", t.Emoji, t.Title)}
		}
	case huh.StateAborted:
		m.form = nil
		m.draft = nil
		m.state = constants.StateTrackers
		return m, nil
	}
	return m, cmd
}

func (m Model) toggle(t models.Tracker) tea.Cmd {
	svc, ctx, day := m.svc, m.ctx, m.day
	return func() tea.Msg {
		done, err := svc.ToggleCompletion(ctx, t.ID, day)
		if err != nil {
			return actionMsg{err: err}
		}
		if done {
			return actionMsg{status: fmt.Sprintf("✓ %s done on %s", t.Title, utils.DayKey(day))}
		}
		return actionMsg{status: fmt.Sprintf("○ %s no longer done on %s", t.Title, utils.DayKey(day))}
	}
}

func (m Model) togglePin(t models.Tracker) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		updated, err := svc.TogglePin(ctx, t.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		if updated.IsPinned {
			return actionMsg{status: fmt.Sprintf("📌 Pinned %s", t.Title)}
		}
		return actionMsg{status: fmt.Sprintf("Unpinned %s", t.Title)}
	}
}

func nextMode(current constants.FilterMode) constants.FilterMode {
	for i, mode := range constants.FilterModes {
		if mode == current {
			return constants.FilterModes[(i+1)%len(constants.FilterModes)]
		}
	}
	return constants.FilterModes[0]
}
