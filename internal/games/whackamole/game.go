// Package whackamole implements a timed whack-a-mole race on a 3x3 grid.
package whackamole

import (
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// ID is the registry identifier of this game.
const ID = "whack-a-mole"

// GridSize is the number of holes.
const GridSize = 9

// Options tunes spawn cadence and wave size.
type Options struct {
	SpawnInterval time.Duration
	MoleLifetime  time.Duration
	WaveMin       int
	WaveMax       int
}

// DefaultOptions spawns 1-2 moles every 1.2s, each visible for 1.5s.
func DefaultOptions() Options {
	return Options{
		SpawnInterval: 1200 * time.Millisecond,
		MoleLifetime:  1500 * time.Millisecond,
		WaveMin:       1,
		WaveMax:       2,
	}
}

// Entry returns the registry entry for whack-a-mole.
func Entry(opts Options, duration time.Duration) registry.Entry {
	return registry.Entry{
		Config: registry.GameConfig{
			ID:          ID,
			Name:        "Whack-a-Mole",
			Description: "Hit the moles before they hide. Most hits wins.",
			MinPlayers:  2,
			MaxPlayers:  2,
			Duration:    duration,
			Category:    "reflex",
		},
		New: func(env core.Env) core.Engine { return New(env, opts) },
	}
}

type mole struct {
	id     int
	expire core.Timer
}

// Game implements core.Engine.
type Game struct {
	env  core.Env
	opts Options

	active  [GridSize]*mole
	nextID  int
	spawner core.Timer
	scores  map[core.PlayerID]int
	hits    int
	spawned int
	done    bool
}

// New creates an empty grid.
func New(env core.Env, opts Options) *Game {
	def := DefaultOptions()
	if opts.SpawnInterval <= 0 {
		opts.SpawnInterval = def.SpawnInterval
	}
	if opts.MoleLifetime <= 0 {
		opts.MoleLifetime = def.MoleLifetime
	}
	if opts.WaveMin < 1 {
		opts.WaveMin = 1
	}
	if opts.WaveMax < opts.WaveMin {
		opts.WaveMax = opts.WaveMin
	}
	g := &Game{env: env, opts: opts, scores: make(map[core.PlayerID]int)}
	for _, p := range env.Players {
		g.scores[p] = 0
	}
	return g
}

// Start arms the spawn loop.
func (g *Game) Start() {
	if g.spawner != nil || g.done {
		return
	}
	g.scheduleSpawn()
}

func (g *Game) scheduleSpawn() {
	g.spawner = g.env.Clock.AfterFunc(g.opts.SpawnInterval, func() {
		if g.done {
			return
		}
		g.spawnWave()
		g.scheduleSpawn()
	})
}

func (g *Game) spawnWave() {
	var free []int
	for pos, m := range g.active {
		if m == nil {
			free = append(free, pos)
		}
	}
	if len(free) == 0 {
		return
	}

	size := g.opts.WaveMin
	if span := g.opts.WaveMax - g.opts.WaveMin; span > 0 {
		size += g.env.Rand.Intn(span + 1)
	}
	size = min(size, len(free))

	g.env.Rand.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, pos := range free[:size] {
		g.spawn(pos)
	}
}

func (g *Game) spawn(pos int) {
	g.nextID++
	m := &mole{id: g.nextID}
	m.expire = g.env.Clock.AfterFunc(g.opts.MoleLifetime, func() {
		if g.done || g.active[pos] != m {
			return
		}
		g.active[pos] = nil
		g.env.Broadcast(func(core.PlayerID) core.Event {
			return MoleDisappears{Position: pos, MoleID: m.id, Hit: false}
		})
	})
	g.active[pos] = m
	g.spawned++

	lifetime := g.opts.MoleLifetime.Milliseconds()
	g.env.Broadcast(func(core.PlayerID) core.Event {
		return MoleAppears{Position: pos, MoleID: m.id, LifetimeMs: lifetime}
	})
}

// HandleAction scores a hit on an active mole. Misses change nothing and
// emit nothing.
func (g *Game) HandleAction(player core.PlayerID, action core.Action) {
	if g.done || action.Kind != core.ActionPosition {
		return
	}
	if g.env.Seat(player) < 0 {
		return
	}
	pos := action.Position
	if pos < 0 || pos >= GridSize || g.active[pos] == nil {
		return
	}

	m := g.active[pos]
	g.active[pos] = nil
	m.expire.Stop()
	g.scores[player]++
	g.hits++

	g.env.Broadcast(func(core.PlayerID) core.Event {
		return MoleDisappears{Position: pos, MoleID: m.id, Hit: true, HitBy: player}
	})
	g.env.Broadcast(func(viewer core.PlayerID) core.Event {
		opp := core.Opponent(g.env.Players, viewer)
		return ScoreUpdate{
			YourScore:     g.scores[viewer],
			OpponentScore: g.scores[opp],
			Scorer:        player,
		}
	})
}

// CheckEnd implements core.Engine. Whack-a-mole only ends on time.
func (g *Game) CheckEnd() *core.Result {
	return nil
}

// Finalize compares hit counts.
func (g *Game) Finalize() core.Result {
	g.Dispose()

	res := core.Result{Scores: make(map[core.PlayerID]int, len(g.scores))}
	for p, s := range g.scores {
		res.Scores[p] = s
	}
	if len(g.env.Players) == 2 {
		p0, p1 := g.env.Players[0], g.env.Players[1]
		switch {
		case g.scores[p0] > g.scores[p1]:
			res.WinnerID = p0
		case g.scores[p1] > g.scores[p0]:
			res.WinnerID = p1
		default:
			res.IsDraw = true
		}
	}
	res.Extra = Summary{MolesSpawned: g.spawned, MolesHit: g.hits}
	return res
}

// Snapshot implements core.Engine.
func (g *Game) Snapshot(viewer core.PlayerID) any {
	var active []int
	for pos, m := range g.active {
		if m != nil {
			active = append(active, pos)
		}
	}
	return State{
		GridSize:      GridSize,
		Active:        active,
		YourScore:     g.scores[viewer],
		OpponentScore: g.scores[core.Opponent(g.env.Players, viewer)],
	}
}

// Dispose stops the spawner and every mole timer.
func (g *Game) Dispose() {
	g.done = true
	if g.spawner != nil {
		g.spawner.Stop()
	}
	for pos, m := range g.active {
		if m != nil {
			m.expire.Stop()
			g.active[pos] = nil
		}
	}
}
