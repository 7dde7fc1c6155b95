package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigame-arena/internal/storage"
)

var (
	flagHistoryLimit  int
	flagHistoryPlayer string
	flagHistoryStats  bool
	flagHistoryDB     string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored tournament results",
	Long: `Display the most recent tournaments from the database, the
tournaments of one player, or per-game totals.

Examples:
  arena history
  arena history --limit 5
  arena history --player 2b1c8f0e-...
  arena history --stats
  arena history --db ./arena.db`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of tournaments to show")
	historyCmd.Flags().StringVar(&flagHistoryPlayer, "player", "", "Only tournaments with this player id")
	historyCmd.Flags().BoolVar(&flagHistoryStats, "stats", false, "Show per-game totals instead")
	historyCmd.Flags().StringVar(&flagHistoryDB, "db", "", "Database path (overrides config)")
}

func runHistory(_ *cobra.Command, _ []string) error {
	path := flagHistoryDB
	if path == "" {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		path = loaded.Storage.Path
	}

	store, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open tournament database: %w", err)
	}
	defer store.Close()

	styled := stdoutIsTTY()

	if flagHistoryStats {
		stats, err := store.GameTypeStats()
		if err != nil {
			return fmt.Errorf("cannot load game stats: %w", err)
		}
		writeGameStats(os.Stdout, styled, stats)
		return nil
	}

	var tournaments []storage.Tournament
	if flagHistoryPlayer != "" {
		tournaments, err = store.PlayerHistory(flagHistoryPlayer, flagHistoryLimit)
	} else {
		tournaments, err = store.RecentTournaments(flagHistoryLimit)
	}
	if err != nil {
		return fmt.Errorf("cannot load tournaments: %w", err)
	}
	writeTournaments(os.Stdout, styled, tournaments)
	return nil
}

func writeTournaments(w io.Writer, styled bool, tournaments []storage.Tournament) {
	printHeading(w, styled, "Recent tournaments")

	if len(tournaments) == 0 {
		fmt.Fprintln(w, "No tournaments recorded yet.")
		printHint(w, styled, "Run 'arena serve' and play a match to record one.")
		return
	}

	rows := make([][]string, len(tournaments))
	for i, t := range tournaments {
		winner := t.WinnerName()
		if winner == "" {
			winner = "draw"
		}
		if t.EndReason == "error" {
			winner = "-"
		}
		rows[i] = []string{
			t.EndedAt.Local().Format("2006-01-02 15:04"),
			t.Player1Name,
			t.Player2Name,
			fmt.Sprintf("%d-%d", t.Score1, t.Score2),
			winner,
			t.EndReason,
			fmt.Sprintf("%d", t.GamesPlayed),
			t.Duration().Round(time.Second).String(),
		}
	}
	printTable(w, styled, []string{"Ended", "Player 1", "Player 2", "Score", "Winner", "Reason", "Games", "Length"}, rows)
}

func writeGameStats(w io.Writer, styled bool, stats map[string]*storage.GameTypeStats) {
	printHeading(w, styled, "Games played")

	if len(stats) == 0 {
		fmt.Fprintln(w, "No games recorded yet.")
		return
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, len(ids))
	for i, id := range ids {
		s := stats[id]
		rows[i] = []string{
			id,
			fmt.Sprintf("%d", s.Played),
			fmt.Sprintf("%d", s.Draws),
			fmt.Sprintf("%d", s.SuddenDeath),
			s.LastPlayed.Local().Format("2006-01-02 15:04"),
		}
	}
	printTable(w, styled, []string{"Game", "Played", "Draws", "Sudden death", "Last played"}, rows)
}
