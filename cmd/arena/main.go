// arena is a real-time matchmaking and tournament server for two-player
// mini-games played over WebSocket.
//
// Usage:
//
//	arena serve              - Start the HTTP/WebSocket server
//	arena games              - List the mini-games and their tuning
//	arena history            - Show stored tournament results
//	arena top                - Live dashboard of a running server
//
// Global flags:
//
//	--config <path>  - Config file (default: ~/.arena/arena.yaml, ./configs/arena.yaml, embedded)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigame-arena/internal/config"
)

var (
	// Global flags
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Minigame Arena - head-to-head mini-game tournaments",
	Long: `Minigame Arena pairs players over WebSocket and runs a best-of
tournament of quick mini-games: reaction time, tic-tac-toe,
rock-paper-scissors and whack-a-mole.

Available commands:
  serve    - Start the server
  games    - Show all mini-games
  history  - View stored tournament results
  top      - Live dashboard of a running server

Examples:
  arena serve
  arena serve --port 8080
  arena games
  arena history --limit 5
  arena top --url http://localhost:3000`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(topCmd)
}

func loadConfig() (config.Loaded, error) {
	return config.Load(flagConfig)
}

// newLogger builds the process logger at level. Unknown levels fall back to info.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "arena",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
