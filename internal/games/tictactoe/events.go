package tictactoe

// Update is sent to both players after every legal move.
type Update struct {
	Board      []string `json:"board"`
	YourTurn   bool     `json:"yourTurn"`
	YourSymbol string   `json:"yourSymbol"`
	LastMove   int      `json:"lastMove"`
}

func (Update) EventName() string { return "game-update" }

// Summary is the gameData attached to game-end.
type Summary struct {
	Board       []string `json:"board"`
	WinningLine []int    `json:"winningLine,omitempty"`
	Moves       int      `json:"moves"`
}
