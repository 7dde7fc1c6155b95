package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/minigame-arena/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// centerText pads text so it is centered in width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// statBox renders one labelled counter.
func statBox(label string, value int) string {
	return boxStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(fmt.Sprintf("%d", value)))
}

// matchColumns returns the recent-match table columns for width.
func matchColumns(width int) []table.Column {
	columns := []table.Column{
		{Title: "Ended", Width: 12},
		{Title: "Players", Width: 28},
		{Title: "Score", Width: 7},
		{Title: "Winner", Width: 14},
		{Title: "Reason", Width: 11},
		{Title: "Games", Width: 5},
	}
	fixed := 0
	for _, c := range columns {
		fixed += c.Width
	}
	// Give the players column any spare room
	if spare := width - fixed - 2*len(columns) - 4; spare > 0 {
		columns[1].Width += min(spare, 24)
	}
	return columns
}

// matchRow formats one tournament for the table.
func matchRow(t storage.Tournament) table.Row {
	winner := t.WinnerName()
	switch {
	case t.EndReason == "error":
		winner = "-"
	case winner == "":
		winner = "draw"
	}
	return table.Row{
		t.EndedAt.Local().Format("Jan 02 15:04"),
		t.Player1Name + " vs " + t.Player2Name,
		fmt.Sprintf("%d-%d", t.Score1, t.Score2),
		winner,
		t.EndReason,
		fmt.Sprintf("%d", t.GamesPlayed),
	}
}

// formatUptime renders seconds as a compact duration.
func formatUptime(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
