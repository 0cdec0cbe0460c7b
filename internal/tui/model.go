package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/filter"
	"github.com/julianstephens/tracker/internal/ledger"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tracker"
)

var errEmptyTitle = errors.New("title is required")

// row points at one tracker inside the grouped result.
type row struct {
	group int
	index int
}

type Model struct {
	ctx    context.Context
	svc    *tracker.Service
	state  constants.SessionState
	keys   KeyMap
	help   help.Model
	search textinput.Model
	stats  viewport.Model
	form   *huh.Form
	draft  *trackerDraft

	day       time.Time
	mode      filter.Mode
	query     string
	groups    []filter.Group
	completed map[string]bool
	rows      []row
	cursor    int

	events      <-chan tracker.Event
	unsubscribe func()

	pendingDelete models.Tracker
	status        string
	err           error
	width         int
	height        int
	quitting      bool
}

type refreshMsg struct {
	groups    []filter.Group
	completed map[string]bool
	err       error
}

type actionMsg struct {
	status string
	err    error
}

type statsMsg struct {
	stats ledger.Statistics
	err   error
}

type eventMsg tracker.Event

// NewModel builds the interactive view over svc. The model subscribes to
// service events and reloads whenever one arrives.
func NewModel(ctx context.Context, svc *tracker.Service) Model {
	mode := filter.ModeAll
	if settings, err := svc.Settings(ctx); err == nil && settings.DefaultFilter != "" {
		mode = settings.DefaultFilter
	}

	search := textinput.New()
	search.Placeholder = "search trackers"
	search.Prompt = "/ "

	events, unsubscribe := svc.Subscribe()

	return Model{
		ctx:         ctx,
		svc:         svc,
		state:       constants.StateTrackers,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		search:      search,
		stats:       viewport.New(0, 0),
		day:         svc.Today(),
		mode:        mode,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateSearch:
		return []key.Binding{m.keys.Back}
	case constants.StateStats:
		return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Back, m.keys.Quit}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForEvent())
}

// load queries the visible trackers for the current day, mode and search.
// A non-empty search drops the date predicate.
func (m Model) load() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	q := tracker.Query{Mode: m.mode, Text: m.query}
	day := m.day
	if m.query == "" {
		q.Date = &day
	}
	return func() tea.Msg {
		groups, err := svc.Visible(ctx, q)
		if err != nil {
			return refreshMsg{err: err}
		}
		completed, err := svc.CompletedOn(ctx, day)
		return refreshMsg{groups: groups, completed: completed, err: err}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func (m Model) loadStats() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		stats, err := svc.Statistics(ctx)
		return statsMsg{stats: stats, err: err}
	}
}

// setGroups replaces the visible result and keeps the cursor in range.
func (m *Model) setGroups(groups []filter.Group, completed map[string]bool) {
	m.groups = groups
	m.completed = completed
	m.rows = make([]row, 0, filter.Count(groups))
	for gi, g := range groups {
		for ti := range g.Trackers {
			m.rows = append(m.rows, row{group: gi, index: ti})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the tracker under the cursor.
func (m Model) selected() (models.Tracker, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return models.Tracker{}, false
	}
	r := m.rows[m.cursor]
	if r.group >= len(m.groups) {
		return models.Tracker{}, false
	}
	t, err := m.groups[r.group].At(r.index)
	if err != nil {
		logger.Debug("Stale cursor", "error", err)
		return models.Tracker{}, false
	}
	return t, true
}

func (m *Model) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}
