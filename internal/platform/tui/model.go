package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardConfig tunes polling.
type DashboardConfig struct {
	Server   string        // Shown in the title
	Interval time.Duration // Time between polls
	Timeout  time.Duration // Per-poll request budget
	Recent   int           // Tournaments to list
}

// DefaultDashboardConfig returns a config with sensible defaults.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Interval: 2 * time.Second,
		Timeout:  3 * time.Second,
		Recent:   15,
	}
}

// Model is the Bubble Tea model for the live dashboard.
type Model struct {
	fetcher  Fetcher
	config   DashboardConfig
	spinner  spinner.Model
	table    table.Model
	help     help.Model
	keys     DashboardKeyMap
	snap     Snapshot
	err      error
	loaded   bool // At least one snapshot arrived
	loading  bool // A fetch is in flight
	gen      int
	width    int
	height   int
	quitting bool
}

// NewModel creates a dashboard that polls f.
func NewModel(f Fetcher, cfg DashboardConfig) Model {
	def := DefaultDashboardConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Recent <= 0 {
		cfg.Recent = def.Recent
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		fetcher: f,
		config:  cfg,
		spinner: sp,
		help:    help.New(),
		keys:    DefaultDashboardKeyMap(),
		width:   80,
		height:  24,
		loading: true,
	}
	m.table = m.createTable()
	return m
}

func (m *Model) createTable() table.Model {
	t := table.New(
		table.WithColumns(matchColumns(m.width)),
		table.WithFocused(true),
		table.WithHeight(max(m.height-14, 3)), // Title, stats, status and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *Model) updateTableRows() {
	rows := make([]table.Row, len(m.snap.Recent))
	for i, t := range m.snap.Recent {
		rows[i] = matchRow(t)
	}
	m.table.SetRows(rows)
}

// Init starts the spinner and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	return fetchCmd(m.fetcher, m.config.Recent, m.config.Timeout)
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.fetch()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil

	case pollMsg:
		if msg.gen != m.gen || m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.fetch()

	case snapshotMsg:
		m.loading = false
		m.gen++
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.snap = msg.snap
			m.err = nil
			m.loaded = true
			m.updateTableRows()
		}
		return m, pollCmd(m.config.Interval, m.gen)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "MINIGAME ARENA"
	if m.config.Server != "" {
		title += " - " + m.config.Server
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.loaded {
		h := m.snap.Health
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statBox("Players", h.ConnectedPlayers),
			statBox("Queue", h.QueueSize),
			statBox("Matches", h.ActiveMatches),
			statBox("Games", h.ActiveGames),
			statBox("Completed", h.MatchesCompleted),
			statBox("Played", h.GamesPlayed),
		))
		b.WriteString("\n")

		switch {
		case m.snap.NoHistory:
			b.WriteString(mutedStyle.Render("Match history is disabled on this server."))
		case len(m.snap.Recent) == 0:
			b.WriteString(mutedStyle.Render("No tournaments recorded yet."))
		default:
			b.WriteString(boxStyle.Render(m.table.View()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) statusLine() string {
	var parts []string
	if m.loading {
		parts = append(parts, m.spinner.View()+" refreshing")
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render("error: "+m.err.Error()))
	}
	if m.loaded {
		h := m.snap.Health
		parts = append(parts,
			labelStyle.Render("status ")+valueStyle.Render(h.Status),
			labelStyle.Render("uptime ")+valueStyle.Render(formatUptime(h.UptimeSeconds)),
			labelStyle.Render("games ")+valueStyle.Render(strings.Join(h.GameTypes, ", ")),
			mutedStyle.Render("updated "+m.snap.FetchedAt.Format("15:04:05")),
		)
	}
	return strings.Join(parts, "  ")
}

// Snapshot returns the last good snapshot.
func (m Model) Snapshot() Snapshot {
	return m.snap
}

// Err returns the last fetch error, nil after a successful fetch.
func (m Model) Err() error {
	return m.err
}

// Run starts the dashboard and blocks until the user quits.
func Run(f Fetcher, cfg DashboardConfig) error {
	p := tea.NewProgram(NewModel(f, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
