// Package tui provides the Bubble Tea dashboard for a running arena server.
// It polls the HTTP API and renders live counters and recent tournaments.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// pollMsg asks the dashboard to refresh. Stale generations are ignored so
// a manual refresh never doubles the poll chain.
type pollMsg struct {
	gen int
}

// snapshotMsg carries the result of one fetch.
type snapshotMsg struct {
	snap Snapshot
	err  error
}

// pollCmd returns a command that fires a pollMsg after interval.
func pollCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollMsg{gen: gen}
	})
}

// fetchCmd loads one snapshot, bounded by timeout.
func fetchCmd(f Fetcher, recent int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := f.Fetch(ctx, recent)
		return snapshotMsg{snap: snap, err: err}
	}
}
