// Package rps implements best-of-N rock-paper-scissors.
package rps

import (
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// ID is the registry identifier of this game.
const ID = "rock-paper-scissors"

// Choice is one hand shape.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// Choices lists every valid choice.
var Choices = []Choice{Rock, Paper, Scissors}

// Valid reports whether c is a known choice.
func (c Choice) Valid() bool {
	return c == Rock || c == Paper || c == Scissors
}

func (c Choice) beats(other Choice) bool {
	switch c {
	case Rock:
		return other == Scissors
	case Scissors:
		return other == Paper
	case Paper:
		return other == Rock
	}
	return false
}

// Outcome of a single round from the first argument's side.
type Outcome int

const (
	Draw Outcome = iota
	FirstWins
	SecondWins
)

// Resolve applies rock > scissors > paper > rock.
func Resolve(a, b Choice) Outcome {
	switch {
	case a == b:
		return Draw
	case a.beats(b):
		return FirstWins
	default:
		return SecondWins
	}
}

// Options tunes the match.
type Options struct {
	Rounds     int
	RoundDelay time.Duration
}

// DefaultOptions returns best of 3 with a 2 second pause between rounds.
func DefaultOptions() Options {
	return Options{Rounds: 3, RoundDelay: 2 * time.Second}
}

// Entry returns the registry entry for rock-paper-scissors.
func Entry(opts Options, duration time.Duration) registry.Entry {
	return registry.Entry{
		Config: registry.GameConfig{
			ID:          ID,
			Name:        "Rock Paper Scissors",
			Description: "Best of three. Read your opponent.",
			MinPlayers:  2,
			MaxPlayers:  2,
			Duration:    duration,
			Category:    "luck",
		},
		New: func(env core.Env) core.Engine { return New(env, opts) },
	}
}

// Game implements core.Engine.
type Game struct {
	env  core.Env
	opts Options

	round     int // 1-based
	played    int
	choices   map[core.PlayerID]Choice
	scores    map[core.PlayerID]int
	history   []RoundSummary
	resolving bool // between rounds, choices are locked
	nextRound core.Timer
	result    *core.Result
}

// New creates a match waiting for round 1 choices.
func New(env core.Env, opts Options) *Game {
	if opts.Rounds < 1 {
		opts.Rounds = DefaultOptions().Rounds
	}
	g := &Game{
		env:     env,
		opts:    opts,
		round:   1,
		choices: make(map[core.PlayerID]Choice),
		scores:  make(map[core.PlayerID]int),
	}
	for _, p := range env.Players {
		g.scores[p] = 0
	}
	return g
}

// Start implements core.Engine.
func (g *Game) Start() {}

// HandleAction records a choice. Unknown choices, second submissions in the
// same round and choices between rounds are ignored.
func (g *Game) HandleAction(player core.PlayerID, action core.Action) {
	if g.result != nil || g.resolving || action.Kind != core.ActionChoice {
		return
	}
	if g.env.Seat(player) < 0 {
		return
	}
	choice := Choice(action.Choice)
	if !choice.Valid() {
		return
	}
	if _, already := g.choices[player]; already {
		return
	}

	g.choices[player] = choice

	if len(g.choices) < len(g.env.Players) {
		if opp := core.Opponent(g.env.Players, player); opp != "" && g.env.Send != nil {
			g.env.Send(opp, Update{Round: g.round, OpponentReady: true})
		}
		return
	}

	g.resolveRound()
}

func (g *Game) resolveRound() {
	p0, p1 := g.env.Players[0], g.env.Players[1]
	c0, c1 := g.choices[p0], g.choices[p1]

	var winner core.PlayerID
	switch Resolve(c0, c1) {
	case FirstWins:
		winner = p0
	case SecondWins:
		winner = p1
	}
	if winner != "" {
		g.scores[winner]++
	}

	g.played++
	g.history = append(g.history, RoundSummary{
		Round:   g.round,
		Choices: [2]Choice{c0, c1},
		Winner:  winner,
	})

	round := g.round
	g.env.Broadcast(func(viewer core.PlayerID) core.Event {
		opp := core.Opponent(g.env.Players, viewer)
		return RoundResult{
			Round:          round,
			YourChoice:     g.choices[viewer],
			OpponentChoice: g.choices[opp],
			Winner:         core.Perspective(viewer, winner, winner == ""),
			Scores:         [2]int{g.scores[p0], g.scores[p1]},
			YourScore:      g.scores[viewer],
			OpponentScore:  g.scores[opp],
		}
	})

	if g.played >= g.opts.Rounds {
		res := g.buildResult()
		g.result = &res
		return
	}

	g.resolving = true
	g.nextRound = g.env.Clock.AfterFunc(g.opts.RoundDelay, g.startNextRound)
}

func (g *Game) startNextRound() {
	if g.result != nil {
		return
	}
	g.nextRound = nil
	g.resolving = false
	g.round++
	clear(g.choices)

	round := g.round
	g.env.Broadcast(func(core.PlayerID) core.Event {
		return NextRound{Round: round}
	})
}

// CheckEnd implements core.Engine.
func (g *Game) CheckEnd() *core.Result {
	return g.result
}

// Finalize compares round scores when time runs out.
func (g *Game) Finalize() core.Result {
	if g.result == nil {
		res := g.buildResult()
		g.result = &res
	}
	g.Dispose()
	return *g.result
}

func (g *Game) buildResult() core.Result {
	p0, p1 := g.env.Players[0], g.env.Players[1]
	res := core.Result{Scores: make(map[core.PlayerID]int, 2)}
	for p, s := range g.scores {
		res.Scores[p] = s
	}
	switch {
	case g.scores[p0] > g.scores[p1]:
		res.WinnerID = p0
	case g.scores[p1] > g.scores[p0]:
		res.WinnerID = p1
	default:
		res.IsDraw = true
	}
	res.Extra = Summary{Rounds: g.history, RoundsPlayed: g.played}
	return res
}

// Snapshot implements core.Engine.
func (g *Game) Snapshot(viewer core.PlayerID) any {
	opp := core.Opponent(g.env.Players, viewer)
	_, chosen := g.choices[viewer]
	_, oppChosen := g.choices[opp]
	return State{
		Round:         g.round,
		TotalRounds:   g.opts.Rounds,
		YourScore:     g.scores[viewer],
		OpponentScore: g.scores[opp],
		Chosen:        chosen,
		OpponentReady: oppChosen,
		Choices:       Choices,
	}
}

// Dispose cancels a pending next-round timer.
func (g *Game) Dispose() {
	if g.nextRound != nil {
		g.nextRound.Stop()
		g.nextRound = nil
	}
}
