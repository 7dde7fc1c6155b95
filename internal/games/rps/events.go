package rps

import "github.com/vovakirdan/minigame-arena/internal/core"

// RoundResult is sent to each player when a round resolves.
// Winner is "you", "opponent" or "draw"; Scores is in seat order.
type RoundResult struct {
	Round          int    `json:"round"`
	YourChoice     Choice `json:"yourChoice"`
	OpponentChoice Choice `json:"opponentChoice"`
	Winner         string `json:"winner"`
	Scores         [2]int `json:"scores"`
	YourScore      int    `json:"yourScore"`
	OpponentScore  int    `json:"opponentScore"`
}

func (RoundResult) EventName() string { return "round-result" }

// NextRound announces that choices are open again.
type NextRound struct {
	Round int `json:"round"`
}

func (NextRound) EventName() string { return "next-round" }

// Update tells a player the opponent has locked in a choice.
type Update struct {
	Round         int  `json:"round"`
	OpponentReady bool `json:"opponentReady"`
}

func (Update) EventName() string { return "game-update" }

// State is the gameData sent with game-start.
type State struct {
	Round         int      `json:"round"`
	TotalRounds   int      `json:"totalRounds"`
	YourScore     int      `json:"yourScore"`
	OpponentScore int      `json:"opponentScore"`
	Chosen        bool     `json:"chosen"`
	OpponentReady bool     `json:"opponentReady"`
	Choices       []Choice `json:"choices"`
}

// RoundSummary records one resolved round.
type RoundSummary struct {
	Round   int           `json:"round"`
	Choices [2]Choice     `json:"choices"`
	Winner  core.PlayerID `json:"winner,omitempty"`
}

// Summary is the gameData attached to game-end.
type Summary struct {
	Rounds       []RoundSummary `json:"rounds"`
	RoundsPlayed int            `json:"roundsPlayed"`
}
