// Package games wires every mini-game engine into a registry catalog.
package games

import (
	"fmt"

	"github.com/vovakirdan/minigame-arena/internal/config"
	"github.com/vovakirdan/minigame-arena/internal/games/reaction"
	"github.com/vovakirdan/minigame-arena/internal/games/rps"
	"github.com/vovakirdan/minigame-arena/internal/games/tictactoe"
	"github.com/vovakirdan/minigame-arena/internal/games/whackamole"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// NewCatalog builds the catalog of all four games tuned by cfg.
func NewCatalog(cfg config.Config) (*registry.Catalog, error) {
	g := cfg.Games

	policy, err := reaction.ParsePolicy(g.Reaction.Policy)
	if err != nil {
		return nil, err
	}

	var opts []registry.Option
	if cfg.Match.LeadGame != "" {
		opts = append(opts, registry.WithLeadGame(cfg.Match.LeadGame))
	}
	catalog := registry.NewCatalog(opts...)

	catalog.Register(reaction.Entry(reaction.Options{
		MinDelay: g.Reaction.MinDelay,
		MaxDelay: g.Reaction.MaxDelay,
		Policy:   policy,
	}, g.Reaction.Duration))

	catalog.Register(tictactoe.Entry(g.TicTacToe.Duration))

	catalog.Register(rps.Entry(rps.Options{
		Rounds:     g.RPS.Rounds,
		RoundDelay: g.RPS.RoundDelay,
	}, g.RPS.Duration))

	catalog.Register(whackamole.Entry(whackamole.Options{
		SpawnInterval: g.WhackAMole.SpawnInterval,
		MoleLifetime:  g.WhackAMole.MoleLifetime,
		WaveMin:       g.WhackAMole.WaveMin,
		WaveMax:       g.WhackAMole.WaveMax,
	}, g.WhackAMole.Duration))

	if lead := cfg.Match.LeadGame; lead != "" && !catalog.Exists(lead) {
		return nil, fmt.Errorf("games: lead game %q is not registered", lead)
	}
	if n := cfg.Match.GamesPerMatch; n > catalog.Len() {
		return nil, fmt.Errorf("games: %d games per match but only %d types registered", n, catalog.Len())
	}
	return catalog, nil
}
