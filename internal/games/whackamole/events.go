package whackamole

import "github.com/vovakirdan/minigame-arena/internal/core"

// MoleAppears announces a new mole.
type MoleAppears struct {
	Position   int   `json:"position"`
	MoleID     int   `json:"moleId"`
	LifetimeMs int64 `json:"lifetimeMs"`
}

func (MoleAppears) EventName() string { return "mole-appears" }

// MoleDisappears announces a mole leaving, either hit or expired.
type MoleDisappears struct {
	Position int           `json:"position"`
	MoleID   int           `json:"moleId"`
	Hit      bool          `json:"hit"`
	HitBy    core.PlayerID `json:"hitBy,omitempty"`
}

func (MoleDisappears) EventName() string { return "mole-disappears" }

// ScoreUpdate is personalized per player.
type ScoreUpdate struct {
	YourScore     int           `json:"yourScore"`
	OpponentScore int           `json:"opponentScore"`
	Scorer        core.PlayerID `json:"scorer"`
}

func (ScoreUpdate) EventName() string { return "score-update" }

// State is the gameData sent with game-start.
type State struct {
	GridSize      int   `json:"gridSize"`
	Active        []int `json:"active"`
	YourScore     int   `json:"yourScore"`
	OpponentScore int   `json:"opponentScore"`
}

// Summary is the gameData attached to game-end.
type Summary struct {
	MolesSpawned int `json:"molesSpawned"`
	MolesHit     int `json:"molesHit"`
}
