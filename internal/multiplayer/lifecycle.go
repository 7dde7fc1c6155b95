package multiplayer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// newInstance creates the engine for m.Sequence[idx] without registering it.
func (c *Coordinator) newInstance(m *Match, idx int) (*GameInstance, error) {
	gameType := m.Sequence[idx]
	inst := &GameInstance{
		ID:          GameInstanceID(uuid.NewString()),
		Match:       m,
		GameType:    gameType,
		State:       core.Waiting,
		Players:     m.IDs(),
		Number:      idx + 1,
		SuddenDeath: m.SuddenDeath[idx],
		CreatedAt:   c.now(),
	}
	inst.timers = newTimerSet(c, inst)

	env := core.Env{
		Players: inst.Players,
		Clock:   inst.timers,
		Rand:    rand.New(rand.NewSource(c.rng.Int63())),
		Send: func(to core.PlayerID, evt core.Event) {
			// Engines only speak while the game is live.
			if inst.State == core.Playing {
				c.sendTo(to, evt)
			}
		},
	}

	var (
		engine core.Engine
		cfg    registry.GameConfig
		err    error
	)
	if perr := c.guard(func() { engine, cfg, err = c.catalog.Create(gameType, env) }); perr != nil {
		err = perr
	}
	if err != nil {
		inst.timers.StopAll()
		return nil, fmt.Errorf("multiplayer: cannot create game %q: %w", gameType, err)
	}

	inst.Engine = engine
	inst.Config = cfg
	return inst, nil
}

// startGame registers inst, announces it and begins the countdown.
func (c *Coordinator) startGame(inst *GameInstance) {
	m := inst.Match
	m.Game = inst
	m.State = MatchPlaying

	c.games[inst.ID] = inst
	for _, id := range inst.Players {
		c.sessionGame[id] = inst
	}

	for seat, p := range m.Players {
		c.sendTo(p.ID, GameFound{
			GameID:      inst.ID,
			MatchID:     m.ID,
			Opponent:    m.Opponent(p.ID).Name,
			GameType:    inst.GameType,
			GameName:    inst.Config.Name,
			Description: inst.Config.Description,
			DurationMs:  inst.Config.Duration.Milliseconds(),
			PlayerIndex: seat,
			CurrentGame: inst.Number,
			TotalGames:  m.TotalGames(),
			SuddenDeath: inst.SuddenDeath,
		})
	}

	c.logger.Debug("game created",
		"match", m.ID,
		"game", inst.ID,
		"type", inst.GameType,
		"number", inst.Number,
		"suddenDeath", inst.SuddenDeath,
	)

	c.beginCountdown(inst)
}

func (c *Coordinator) beginCountdown(inst *GameInstance) {
	inst.State = core.Countdown
	inst.countdown = c.config.CountdownFrom
	if inst.countdown <= 0 {
		c.startPlaying(inst)
		return
	}
	c.countdownTick(inst)
}

// countdownTick emits the current value and schedules the next step.
// The last tick is followed by exactly one game-start.
func (c *Coordinator) countdownTick(inst *GameInstance) {
	c.broadcast(inst, Countdown(inst.countdown))
	inst.countdown--
	inst.timers.AfterFunc(c.config.CountdownInterval, func() {
		if inst.State != core.Countdown {
			return
		}
		if inst.countdown > 0 {
			c.countdownTick(inst)
			return
		}
		c.startPlaying(inst)
	})
}

func (c *Coordinator) startPlaying(inst *GameInstance) {
	m := inst.Match
	inst.State = core.Playing
	inst.StartedAt = c.now()
	inst.deadline = inst.StartedAt.Add(inst.Config.Duration)

	err := c.guard(func() {
		for seat, id := range inst.Players {
			c.sendTo(id, GameStart{
				GameType:    inst.GameType,
				GameData:    inst.Engine.Snapshot(id),
				PlayerIndex: seat,
				CurrentGame: inst.Number,
				TotalGames:  m.TotalGames(),
				DurationMs:  inst.Config.Duration.Milliseconds(),
				SuddenDeath: inst.SuddenDeath,
			})
		}
		inst.Engine.Start()
	})
	if err != nil {
		c.logger.Error("game start failed", "game", inst.ID, "type", inst.GameType, "error", err)
		c.failGame(inst)
		return
	}

	inst.timers.AfterFunc(inst.Config.Duration, func() { c.finishGame(inst) })
	// Backup in case the primary firing is lost.
	inst.timers.AfterFunc(inst.Config.Duration+c.config.BackupSlack, func() { c.finishGame(inst) })
	c.timerUpdate(inst)
}

// timerUpdate broadcasts the whole seconds left, rounded up.
func (c *Coordinator) timerUpdate(inst *GameInstance) {
	left := inst.deadline.Sub(c.now())
	secs := int((left + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	c.broadcast(inst, TimerUpdate(secs))
	if secs > 0 && c.config.TimerUpdateInterval > 0 {
		inst.timers.AfterFunc(c.config.TimerUpdateInterval, func() { c.timerUpdate(inst) })
	}
}

func (c *Coordinator) handleGameAction(msg GameActionMsg) {
	inst, ok := c.sessionGame[msg.SessionID]
	if !ok || inst.State != core.Playing {
		return
	}

	if err := c.guard(func() { inst.Engine.HandleAction(msg.SessionID, msg.Action) }); err != nil {
		c.logger.Warn("action failed", "game", inst.ID, "player", msg.SessionID, "error", err)
		c.sendTo(msg.SessionID, GameError{Message: "Your action could not be processed"})
		return
	}

	c.checkEnd(inst)
}

// checkEnd finishes inst early when the engine reached a terminal state.
func (c *Coordinator) checkEnd(inst *GameInstance) {
	var res *core.Result
	if err := c.guard(func() { res = inst.Engine.CheckEnd() }); err != nil {
		c.logger.Error("end check failed", "game", inst.ID, "type", inst.GameType, "error", err)
		c.failGame(inst)
		return
	}
	if res != nil {
		c.completeGame(inst, *res)
	}
}

// finishGame is the duration timeout path.
func (c *Coordinator) finishGame(inst *GameInstance) {
	if inst.State != core.Playing {
		return
	}
	var res core.Result
	if err := c.guard(func() { res = inst.Engine.Finalize() }); err != nil {
		c.logger.Error("finalize failed", "game", inst.ID, "type", inst.GameType, "error", err)
		c.failGame(inst)
		return
	}
	c.completeGame(inst, res)
}

// completeGame records res and opens the ready-up barrier.
// Only the first caller for an instance has any effect.
func (c *Coordinator) completeGame(inst *GameInstance, res core.Result) {
	if inst.State == core.Finished {
		return
	}
	inst.State = core.Finished
	inst.EndedAt = c.now()
	inst.timers.StopAll()
	inst.Result = &res
	c.gamesPlayed++

	m := inst.Match
	rec := m.record(inst, res)
	c.applySuddenDeath(m)
	m.State = MatchAwaitingReady
	m.resetReady()

	for _, id := range inst.Players {
		opp := core.Opponent(inst.Players, id)
		c.sendTo(id, GameEnd{
			Winner:      rec.WinnerID == id,
			Draw:        rec.Draw,
			FinalScores: ScorePair{You: rec.Scores[id], Opponent: rec.Scores[opp]},
			MatchScores: ScorePair{You: m.Scores[id], Opponent: m.Scores[opp]},
			CurrentGame: inst.Number,
			TotalGames:  m.TotalGames(),
			GameType:    inst.GameType,
			SuddenDeath: inst.SuddenDeath,
			GameData:    res.Extra,
		})
	}

	c.logger.Info("game finished",
		"match", m.ID,
		"game", inst.ID,
		"type", inst.GameType,
		"winner", rec.WinnerID,
		"draw", rec.Draw,
		"matchScores", m.Scores,
	)

	c.scheduleRelease(inst)
}

// failGame handles a fault while starting or scoring a game. The instance
// is released at once and the match ends with an error.
func (c *Coordinator) failGame(inst *GameInstance) {
	if inst.State == core.Finished {
		return
	}
	inst.State = core.Finished
	inst.EndedAt = c.now()
	inst.timers.StopAll()

	c.broadcast(inst, GameError{Message: "The game hit an error and was cancelled"})
	c.releaseGame(inst)
	c.endMatch(inst.Match, EndError, "")
}

func (c *Coordinator) scheduleRelease(inst *GameInstance) {
	if c.config.DisposeGrace <= 0 {
		c.releaseGame(inst)
		return
	}
	inst.release = c.afterFunc(c.config.DisposeGrace, nil, func() { c.releaseGame(inst) })
}

// releaseGame disposes the engine and drops the instance. Idempotent.
func (c *Coordinator) releaseGame(inst *GameInstance) {
	if inst.disposed {
		return
	}
	inst.disposed = true
	if inst.release != nil {
		inst.release.Stop()
	}
	inst.timers.StopAll()
	if err := c.guard(inst.Engine.Dispose); err != nil {
		c.logger.Warn("dispose failed", "game", inst.ID, "error", err)
	}

	delete(c.games, inst.ID)
	for _, id := range inst.Players {
		if c.sessionGame[id] == inst {
			delete(c.sessionGame, id)
		}
	}
}

func (c *Coordinator) broadcast(inst *GameInstance, evt core.Event) {
	for _, id := range inst.Players {
		c.sendTo(id, evt)
	}
}
