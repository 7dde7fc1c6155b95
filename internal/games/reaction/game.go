// Package reaction implements the reaction-time duel: after a random delay
// a signal fires and the faster click wins.
package reaction

import (
	"fmt"
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// ID is the registry identifier of this game.
const ID = "reaction-time"

// Policy decides when a reaction duel is over.
type Policy string

const (
	// FirstClick ends the game on the first valid click.
	FirstClick Policy = "first-click"
	// BothClick waits for both players and compares their times.
	BothClick Policy = "both-click"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case FirstClick, BothClick:
		return p, nil
	case "":
		return BothClick, nil
	}
	return "", fmt.Errorf("reaction: unknown policy %q", s)
}

// Options tunes the duel.
type Options struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Policy   Policy
}

// DefaultOptions returns a 2-8 second signal window and both-click scoring.
func DefaultOptions() Options {
	return Options{MinDelay: 2 * time.Second, MaxDelay: 8 * time.Second, Policy: BothClick}
}

// Entry returns the registry entry for reaction time.
func Entry(opts Options, duration time.Duration) registry.Entry {
	return registry.Entry{
		Config: registry.GameConfig{
			ID:          ID,
			Name:        "Reaction Time",
			Description: "Wait for the signal, then click faster than your opponent.",
			MinPlayers:  2,
			MaxPlayers:  2,
			Duration:    duration,
			Category:    "reflex",
		},
		New: func(env core.Env) core.Engine { return New(env, opts) },
	}
}

// Game implements core.Engine.
type Game struct {
	env  core.Env
	opts Options

	delay    time.Duration
	signal   core.Timer
	signaled bool
	signalAt time.Time
	times    map[core.PlayerID]time.Duration
	order    []core.PlayerID // click order
	result   *core.Result
}

// New creates a duel; the signal delay is drawn here so it is fixed per game.
func New(env core.Env, opts Options) *Game {
	if opts.Policy == "" {
		opts.Policy = BothClick
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	delay := opts.MinDelay
	if span := opts.MaxDelay - opts.MinDelay; span > 0 && env.Rand != nil {
		delay += time.Duration(env.Rand.Int63n(int64(span) + 1))
	}
	return &Game{
		env:   env,
		opts:  opts,
		delay: delay,
		times: make(map[core.PlayerID]time.Duration),
	}
}

// Delay returns the drawn signal delay.
func (g *Game) Delay() time.Duration { return g.delay }

// Start arms the signal.
func (g *Game) Start() {
	if g.signal != nil || g.result != nil {
		return
	}
	g.signal = g.env.Clock.AfterFunc(g.delay, g.fire)
}

func (g *Game) fire() {
	if g.result != nil || g.signaled {
		return
	}
	g.signaled = true
	g.signalAt = g.env.Clock.Now()
	at := g.signalAt.UnixMilli()
	g.env.Broadcast(func(core.PlayerID) core.Event {
		return StartSignal{Timestamp: at}
	})
}

// HandleAction records the first click of each player after the signal.
// Early clicks and repeat clicks are ignored.
func (g *Game) HandleAction(player core.PlayerID, action core.Action) {
	if g.result != nil || !g.signaled || action.Kind != core.ActionClick {
		return
	}
	if g.env.Seat(player) < 0 {
		return
	}
	if _, done := g.times[player]; done {
		return
	}

	// Stamped before the signal: a guess, not a reaction.
	reaction := g.env.TimeOf(action).Sub(g.signalAt)
	if reaction < 0 {
		return
	}
	g.times[player] = reaction
	g.order = append(g.order, player)

	ms := reaction.Milliseconds()
	g.env.Broadcast(func(viewer core.PlayerID) core.Event {
		return Update{
			Player:       player,
			You:          viewer == player,
			ReactionTime: ms,
			Clicked:      len(g.order),
		}
	})

	if g.opts.Policy == FirstClick || len(g.times) == len(g.env.Players) {
		res := g.buildResult()
		g.result = &res
	}
}

// CheckEnd implements core.Engine.
func (g *Game) CheckEnd() *core.Result {
	return g.result
}

// Finalize scores whatever clicks arrived before the duration expired.
func (g *Game) Finalize() core.Result {
	if g.result == nil {
		res := g.buildResult()
		g.result = &res
	}
	g.Dispose()
	return *g.result
}

func (g *Game) buildResult() core.Result {
	res := core.Result{Scores: make(map[core.PlayerID]int, len(g.env.Players))}
	for _, p := range g.env.Players {
		res.Scores[p] = int(g.times[p].Milliseconds())
	}

	switch {
	case len(g.order) == 0:
		res.IsDraw = true
	case g.opts.Policy == FirstClick || len(g.order) == 1:
		res.WinnerID = g.order[0]
	default:
		a, b := g.order[0], g.order[1]
		switch {
		case g.times[a] < g.times[b]:
			res.WinnerID = a
		case g.times[b] < g.times[a]:
			res.WinnerID = b
		default:
			res.IsDraw = true
		}
	}

	times := make(map[core.PlayerID]int64, len(g.times))
	for p, d := range g.times {
		times[p] = d.Milliseconds()
	}
	res.Extra = Summary{ReactionTimes: times, Policy: g.opts.Policy, DelayMs: g.delay.Milliseconds()}
	return res
}

// Snapshot implements core.Engine. The delay itself is never revealed.
func (g *Game) Snapshot(viewer core.PlayerID) any {
	_, clicked := g.times[viewer]
	return State{Signaled: g.signaled, Clicked: clicked, Policy: g.opts.Policy}
}

// Dispose cancels the pending signal.
func (g *Game) Dispose() {
	if g.signal != nil {
		g.signal.Stop()
	}
}
