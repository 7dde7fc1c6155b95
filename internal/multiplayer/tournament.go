package multiplayer

import (
	"fmt"

	"github.com/vovakirdan/minigame-arena/internal/core"
)

func (c *Coordinator) handlePlayerReady(msg PlayerReadyMsg) {
	m, ok := c.sessionMatch[msg.SessionID]
	if !ok || m.State != MatchAwaitingReady {
		return
	}

	m.Ready[msg.SessionID] = true
	for _, p := range m.Players {
		opp := m.Opponent(p.ID)
		c.sendTo(p.ID, ReadyStatusUpdate{
			YourReady:     m.Ready[p.ID],
			OpponentReady: m.Ready[opp.ID],
		})
	}

	if !m.allReady() {
		return
	}

	for _, p := range m.Players {
		c.sendTo(p.ID, BothPlayersReady{})
	}
	m.resetReady()
	m.Current++

	if m.Current >= m.TotalGames() {
		c.completeMatch(m)
		return
	}

	inst, err := c.newInstance(m, m.Current)
	if err != nil {
		c.logger.Error("next game creation failed", "match", m.ID, "error", err)
		for _, p := range m.Players {
			c.sendTo(p.ID, MatchmakingError{Message: "Could not start the next game"})
		}
		c.endMatch(m, EndError, "")
		return
	}
	c.startGame(inst)
}

// applySuddenDeath extends the sequence after a game when the configured
// policy calls for a tiebreaker.
func (c *Coordinator) applySuddenDeath(m *Match) {
	policy := c.config.SuddenDeath
	if policy == SuddenDeathOff {
		return
	}
	played := len(m.Results)

	if policy == SuddenDeathTiedAfterSecond {
		if played == 2 && m.Tied() && len(m.Sequence) > 2 && !m.SuddenDeath[2] {
			m.Sequence = m.Sequence[:3]
			m.SuddenDeath[2] = true
			c.logger.Info("sudden death", "match", m.ID, "game", m.Sequence[2])
		}
		return
	}

	if played < len(m.Sequence) || !m.Tied() || m.extraGames >= c.config.MaxSuddenDeath {
		return
	}
	next, err := c.catalog.PickOne(c.rng, m.Sequence[len(m.Sequence)-1])
	if err != nil {
		c.logger.Warn("no sudden death game available", "match", m.ID, "error", err)
		return
	}
	m.Sequence = append(m.Sequence, next)
	m.SuddenDeath[len(m.Sequence)-1] = true
	m.extraGames++
	c.logger.Info("sudden death", "match", m.ID, "game", next)
}

func (c *Coordinator) completeMatch(m *Match) {
	winner := m.Leader()
	for _, p := range m.Players {
		opp := m.Opponent(p.ID)
		c.sendTo(p.ID, TournamentComplete{
			Result:      core.Perspective(p.ID, winner, winner == ""),
			Winner:      winner == p.ID,
			Draw:        winner == "",
			MatchScores: ScorePair{You: m.Scores[p.ID], Opponent: m.Scores[opp.ID]},
			GamesPlayed: len(m.Results),
		})
	}
	c.endMatch(m, EndCompleted, winner)
}

func (c *Coordinator) handleRageQuit(msg RageQuitMsg) {
	m, ok := c.sessionMatch[msg.SessionID]
	if !ok {
		return
	}
	quitter := m.Player(msg.SessionID)
	opp := m.Opponent(msg.SessionID)

	c.sendTo(opp.ID, OpponentRageQuit{
		Message: fmt.Sprintf("%s rage quit! You win by forfeit.", quitter.Name),
	})
	c.endMatch(m, EndRageQuit, opp.ID)
}

// handleSessionDisconnected drops the player from the queue and forfeits
// any match they were in.
func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	id := msg.SessionID
	if c.removeFromQueue(id) {
		c.broadcastQueueStatus()
	}

	m, ok := c.sessionMatch[id]
	if !ok {
		return
	}
	gone := m.Player(id)
	opp := m.Opponent(id)
	c.sendTo(opp.ID, OpponentDisconnected{
		Message: fmt.Sprintf("%s disconnected. You win by forfeit.", gone.Name),
	})
	c.endMatch(m, EndDisconnect, opp.ID)
}

// endMatch tears down a match and its routing. Idempotent.
func (c *Coordinator) endMatch(m *Match, reason EndReason, winner core.PlayerID) {
	if m.State == MatchComplete {
		return
	}
	m.State = MatchComplete
	m.EndedAt = c.now()

	if inst := m.Game; inst != nil {
		if inst.State != core.Finished {
			inst.State = core.Finished
			inst.EndedAt = m.EndedAt
		}
		c.releaseGame(inst)
	}

	delete(c.matches, m.ID)
	for _, p := range m.Players {
		if c.sessionMatch[p.ID] == m {
			delete(c.sessionMatch, p.ID)
		}
		if g, ok := c.sessionGame[p.ID]; ok && g.Match == m {
			delete(c.sessionGame, p.ID)
		}
	}
	c.matchesCompleted++

	c.logger.Info("match ended",
		"match", m.ID,
		"reason", reason,
		"winner", winner,
		"scores", m.Scores,
		"games", len(m.Results),
	)

	c.saveResult(m, reason, winner)
}
