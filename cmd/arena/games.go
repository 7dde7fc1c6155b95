package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigame-arena/internal/games"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List all mini-games",
	Long: `Shows every mini-game in the tournament rotation with its player
count and time limit, as tuned by the active configuration.`,
	RunE: runGames,
}

func runGames(_ *cobra.Command, _ []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := games.NewCatalog(loaded.Config)
	if err != nil {
		return err
	}

	writeGames(os.Stdout, stdoutIsTTY(), catalog.List(), loaded.Match.GamesPerMatch, loaded.Match.LeadGame)
	return nil
}

func writeGames(w io.Writer, styled bool, configs []registry.GameConfig, perMatch int, lead string) {
	if len(configs) == 0 {
		fmt.Fprintln(w, "No games available.")
		return
	}

	printHeading(w, styled, "Available games")

	rows := make([][]string, len(configs))
	for i, g := range configs {
		rows[i] = []string{
			g.ID,
			g.Name,
			fmt.Sprintf("%d-%d", g.MinPlayers, g.MaxPlayers),
			g.Duration.String(),
			g.Category,
			g.Description,
		}
	}
	printTable(w, styled, []string{"ID", "Name", "Players", "Limit", "Category", "Description"}, rows)

	hint := fmt.Sprintf("Each tournament plays %d games in random order.", perMatch)
	if lead != "" {
		hint = fmt.Sprintf("Each tournament plays %d games; %s always goes first.", perMatch, lead)
	}
	printHint(w, styled, hint)
}
