package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigame-arena/internal/platform/tui"
)

var (
	flagTopURL      string
	flagTopInterval time.Duration
	flagTopRecent   int
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Live dashboard of a running server",
	Long: `Polls a running arena server and shows connected players, queue
length, active matches and the latest tournaments.

Without --url the dashboard connects to localhost on the configured port.

Examples:
  arena top
  arena top --url http://arena.example:3000 --interval 5s`,
	RunE: runTop,
}

func init() {
	topCmd.Flags().StringVar(&flagTopURL, "url", "", "Server base URL")
	topCmd.Flags().DurationVar(&flagTopInterval, "interval", 2*time.Second, "Poll interval")
	topCmd.Flags().IntVar(&flagTopRecent, "recent", 15, "Tournaments to list")
}

func runTop(_ *cobra.Command, _ []string) error {
	if !stdoutIsTTY() {
		return errors.New("arena top needs an interactive terminal")
	}

	url := flagTopURL
	if url == "" {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		url = fmt.Sprintf("http://localhost:%d", loaded.Server.Port)
	}

	cfg := tui.DefaultDashboardConfig()
	cfg.Server = url
	cfg.Interval = flagTopInterval
	cfg.Recent = flagTopRecent

	return tui.Run(tui.NewClient(url, cfg.Timeout), cfg)
}
