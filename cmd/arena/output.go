package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle  = cellStyle.Foreground(lipgloss.Color("252"))
	evenRowStyle = cellStyle.Foreground(lipgloss.Color("245"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// stdoutIsTTY reports whether stdout is an interactive terminal.
func stdoutIsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// printTable writes rows under headers. Styled for terminals, tab separated
// otherwise so the output pipes cleanly.
func printTable(w io.Writer, styled bool, headers []string, rows [][]string) {
	if !styled {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, r := range rows {
			fmt.Fprintln(w, strings.Join(r, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

// printHeading writes a section title.
func printHeading(w io.Writer, styled bool, title string) {
	if styled {
		fmt.Fprintln(w, headingStyle.Render(title))
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w)
}

// printHint writes a muted footer line.
func printHint(w io.Writer, styled bool, hint string) {
	fmt.Fprintln(w)
	if styled {
		fmt.Fprintln(w, hintStyle.Render(hint))
	} else {
		fmt.Fprintln(w, hint)
	}
}
