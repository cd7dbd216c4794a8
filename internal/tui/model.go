// Package tui renders a student's weekly timetable in the terminal and lets
// them move between weeks.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/timetable"
)

const defaultFetchTimeout = 10 * time.Second

// Fetcher loads assembled timetable data for the week containing anchor.
type Fetcher interface {
	Week(ctx context.Context, anchor time.Time) (domain.WeekTimetable, error)
	Occurrence(ctx context.Context, anchor time.Time, occurrenceID string) (domain.ClassOccurrence, error)
}

// weekLoadedMsg carries the week it was requested for so late responses for
// a week the user already navigated away from can be discarded.
type weekLoadedMsg struct {
	weekStart time.Time
	timetable domain.WeekTimetable
	err       error
}

type occurrenceLoadedMsg struct {
	weekStart    time.Time
	occurrenceID string
	occurrence   domain.ClassOccurrence
	err          error
}

type Option func(*Model)

// WithClock overrides the clock used to find the current week.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func WithFetchTimeout(timeout time.Duration) Option {
	return func(m *Model) {
		if timeout > 0 {
			m.fetchTimeout = timeout
		}
	}
}

type Model struct {
	fetcher      Fetcher
	clock        func() time.Time
	fetchTimeout time.Duration

	weekStart time.Time
	timetable *domain.WeekTimetable
	loading   bool
	err       error

	// selected indexes into occurrences(); detailID is the occurrence whose
	// detail panel is open, if any.
	selected      int
	detailID      string
	detail        *domain.ClassOccurrence
	detailLoading bool
	detailErr     error

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
}

func New(fetcher Fetcher, opts ...Option) *Model {
	m := &Model{
		fetcher:      fetcher,
		clock:        time.Now,
		fetchTimeout: defaultFetchTimeout,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		help:         help.New(),
		keys:         defaultKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.weekStart = timetable.WeekStart(m.clock())
	return m
}

// WeekStart is the Monday of the week on screen.
func (m *Model) WeekStart() time.Time {
	return m.weekStart
}

func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case weekLoadedMsg:
		if !msg.weekStart.Equal(m.weekStart) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		week := msg.timetable
		m.timetable = &week
		m.err = nil
		if n := len(m.occurrences()); m.selected >= n {
			m.selected = max(0, n-1)
		}
		return m, nil

	case occurrenceLoadedMsg:
		if !msg.weekStart.Equal(m.weekStart) || msg.occurrenceID != m.detailID {
			return m, nil
		}
		m.detailLoading = false
		if msg.err != nil {
			m.detailErr = msg.err
			return m, nil
		}
		occurrence := msg.occurrence
		m.detail = &occurrence
		m.detailErr = nil
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.detailLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			return m, m.showWeek(m.weekStart.AddDate(0, 0, -7))
		case key.Matches(msg, m.keys.Next):
			return m, m.showWeek(m.weekStart.AddDate(0, 0, 7))
		case key.Matches(msg, m.keys.Today):
			return m, m.showWeek(timetable.WeekStart(m.clock()))
		case key.Matches(msg, m.keys.Reload):
			return m, m.load()
		case key.Matches(msg, m.keys.Up):
			m.moveSelection(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveSelection(1)
		case key.Matches(msg, m.keys.Open):
			return m, m.openDetail()
		case key.Matches(msg, m.keys.Close):
			m.closeDetail()
		}
	}
	return m, nil
}

// occurrences lists the week's occurrences in reading order: row by row,
// Monday to Sunday within a row.
func (m *Model) occurrences() []domain.ClassOccurrence {
	if m.timetable == nil {
		return nil
	}
	var all []domain.ClassOccurrence
	for _, row := range m.timetable.Rows {
		for _, day := range domain.Weekdays {
			all = append(all, row.Cells[day]...)
		}
	}
	return all
}

func (m *Model) selectedOccurrence() (domain.ClassOccurrence, bool) {
	all := m.occurrences()
	if m.selected < 0 || m.selected >= len(all) {
		return domain.ClassOccurrence{}, false
	}
	return all[m.selected], true
}

func (m *Model) moveSelection(delta int) {
	n := len(m.occurrences())
	if n == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), n-1)
	m.closeDetail()
}

func (m *Model) openDetail() tea.Cmd {
	occurrence, ok := m.selectedOccurrence()
	if !ok {
		return nil
	}
	m.detailID = occurrence.OccurrenceID
	m.detail = nil
	m.detailErr = nil
	m.detailLoading = true

	weekStart := m.weekStart
	occurrenceID := occurrence.OccurrenceID
	fetcher := m.fetcher
	timeout := m.fetchTimeout
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		found, err := fetcher.Occurrence(ctx, weekStart, occurrenceID)
		return occurrenceLoadedMsg{weekStart: weekStart, occurrenceID: occurrenceID, occurrence: found, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *Model) closeDetail() {
	m.detailID = ""
	m.detail = nil
	m.detailErr = nil
	m.detailLoading = false
}

func (m *Model) showWeek(weekStart time.Time) tea.Cmd {
	if !weekStart.Equal(m.weekStart) {
		m.weekStart = weekStart
		m.timetable = nil
		m.err = nil
		m.selected = 0
		m.closeDetail()
	}
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	weekStart := m.weekStart
	fetcher := m.fetcher
	timeout := m.fetchTimeout
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		week, err := fetcher.Week(ctx, weekStart)
		return weekLoadedMsg{weekStart: weekStart, timetable: week, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}
