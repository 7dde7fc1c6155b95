// Package tictactoe implements the turn-based tic-tac-toe mini-game.
// Seat 0 plays X and moves first.
package tictactoe

import (
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// ID is the registry identifier of this game.
const ID = "tic-tac-toe"

// BoardSize is the number of cells.
const BoardSize = 9

// Symbols by seat.
var symbols = [2]string{"X", "O"}

// lines lists every winning triple.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Entry returns the registry entry for tic-tac-toe.
func Entry(duration time.Duration) registry.Entry {
	return registry.Entry{
		Config: registry.GameConfig{
			ID:          ID,
			Name:        "Tic-Tac-Toe",
			Description: "Get three in a row before your opponent does.",
			MinPlayers:  2,
			MaxPlayers:  2,
			Duration:    duration,
			Category:    "strategy",
		},
		New: func(env core.Env) core.Engine { return New(env) },
	}
}

// Game implements core.Engine.
type Game struct {
	env      core.Env
	board    [BoardSize]int // -1 empty, otherwise seat index
	turn     int            // seat to move
	moves    int
	lastMove int
	winner   int // -1 none
	line     []int
	result   *core.Result
}

// New creates a fresh board.
func New(env core.Env) *Game {
	g := &Game{env: env, lastMove: core.NoPosition, winner: -1}
	for i := range g.board {
		g.board[i] = -1
	}
	return g
}

// Start implements core.Engine. Tic-tac-toe has nothing to arm.
func (g *Game) Start() {}

// HandleAction applies a move. Wrong turn, out of range and occupied
// cells are ignored and do not advance the turn.
func (g *Game) HandleAction(player core.PlayerID, action core.Action) {
	if g.result != nil || action.Kind != core.ActionPosition {
		return
	}
	seat := g.env.Seat(player)
	if seat < 0 || seat != g.turn {
		return
	}
	pos := action.Position
	if pos < 0 || pos >= BoardSize || g.board[pos] != -1 {
		return
	}

	g.board[pos] = seat
	g.moves++
	g.lastMove = pos

	if line := g.findLine(); line != nil {
		g.winner = seat
		g.line = line
		g.result = g.buildResult()
	} else if g.moves == BoardSize {
		g.result = g.buildResult()
	} else {
		g.turn = 1 - g.turn
	}

	g.env.Broadcast(func(viewer core.PlayerID) core.Event {
		return g.update(viewer)
	})
}

// CheckEnd implements core.Engine.
func (g *Game) CheckEnd() *core.Result {
	return g.result
}

// Finalize ends an unfinished board as a draw.
func (g *Game) Finalize() core.Result {
	if g.result == nil {
		g.result = g.buildResult()
	}
	return *g.result
}

// Snapshot implements core.Engine.
func (g *Game) Snapshot(viewer core.PlayerID) any {
	return g.update(viewer)
}

// Dispose implements core.Engine.
func (g *Game) Dispose() {}

func (g *Game) findLine() []int {
	for _, l := range lines {
		a := g.board[l[0]]
		if a != -1 && a == g.board[l[1]] && a == g.board[l[2]] {
			return l[:]
		}
	}
	return nil
}

func (g *Game) buildResult() *core.Result {
	res := &core.Result{
		Scores: make(map[core.PlayerID]int, len(g.env.Players)),
		IsDraw: g.winner < 0,
	}
	for _, p := range g.env.Players {
		res.Scores[p] = 0
	}
	if g.winner >= 0 {
		res.WinnerID = g.env.Players[g.winner]
		res.Scores[res.WinnerID] = 1
	}
	res.Extra = Summary{Board: g.cells(), WinningLine: g.line, Moves: g.moves}
	return res
}

func (g *Game) cells() []string {
	out := make([]string, BoardSize)
	for i, seat := range g.board {
		if seat >= 0 {
			out[i] = symbols[seat]
		}
	}
	return out
}

func (g *Game) update(viewer core.PlayerID) Update {
	seat := g.env.Seat(viewer)
	u := Update{
		Board:    g.cells(),
		YourTurn: g.result == nil && seat == g.turn,
		LastMove: g.lastMove,
	}
	if seat >= 0 && seat < len(symbols) {
		u.YourSymbol = symbols[seat]
	}
	return u
}
