package reaction

import "github.com/vovakirdan/minigame-arena/internal/core"

// StartSignal tells both players to click now.
type StartSignal struct {
	Timestamp int64 `json:"timestamp"` // unix ms
}

func (StartSignal) EventName() string { return "start-signal" }

// Update announces a recorded reaction.
type Update struct {
	Player       core.PlayerID `json:"player"`
	You          bool          `json:"you"`
	ReactionTime int64         `json:"reactionTime"`
	Clicked      int           `json:"clicked"`
}

func (Update) EventName() string { return "game-update" }

// State is the gameData sent with game-start.
type State struct {
	Signaled bool   `json:"signaled"`
	Clicked  bool   `json:"clicked"`
	Policy   Policy `json:"policy"`
}

// Summary is the gameData attached to game-end.
type Summary struct {
	ReactionTimes map[core.PlayerID]int64 `json:"reactionTimes"`
	Policy        Policy                  `json:"policy"`
	DelayMs       int64                   `json:"delayMs"`
}
