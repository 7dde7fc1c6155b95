package multiplayer

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vovakirdan/minigame-arena/internal/core"
)

const maxNameLen = 24

// displayName normalizes a requested name, falling back to Player-xxxx.
func displayName(id SessionID, requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		short := string(id)
		if len(short) > 4 {
			short = short[:4]
		}
		return "Player-" + short
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}

func (c *Coordinator) handleJoinQueue(msg JoinQueueMsg) {
	id := msg.SessionID
	if _, busy := c.sessionMatch[id]; busy {
		c.sendTo(id, MatchmakingError{Message: "You are already in a match"})
		return
	}

	player := core.Player{ID: id, Name: displayName(id, msg.DisplayName)}

	// Joining twice replaces the old entry.
	c.removeFromQueue(id)

	if len(c.queue) == 0 {
		c.queue = append(c.queue, player)
		c.sendTo(id, WaitingForOpponent{QueuePosition: len(c.queue)})
		c.logger.Debug("player queued", "player", id, "name", player.Name)
		return
	}

	opponent := c.queue[0]
	c.queue = c.queue[1:]

	if err := c.createMatch(opponent, player); err != nil {
		c.logger.Error("match creation failed", "error", err, "players", []SessionID{opponent.ID, id})
		c.rollbackPairing(opponent, player)
		return
	}

	if len(c.queue) > 0 {
		c.broadcastQueueStatus()
	}
}

func (c *Coordinator) handleLeaveQueue(msg LeaveQueueMsg) {
	removed := c.removeFromQueue(msg.SessionID)
	c.sendTo(msg.SessionID, QueueLeft{WasQueued: removed})
	if removed {
		c.broadcastQueueStatus()
	}
}

// createMatch builds a match and its first game. Nothing is registered
// unless every step succeeds.
func (c *Coordinator) createMatch(waiting, joining core.Player) error {
	sequence, err := c.catalog.PickRandomUnique(c.config.GamesPerMatch, c.rng)
	if err != nil {
		return err
	}

	m := newMatch(MatchID(uuid.NewString()), [2]core.Player{waiting, joining}, sequence, c.now())
	inst, err := c.newInstance(m, 0)
	if err != nil {
		return err
	}

	c.matches[m.ID] = m
	for _, p := range m.Players {
		c.sessionMatch[p.ID] = m
	}

	c.logger.Info("match created",
		"match", m.ID,
		"players", []string{waiting.Name, joining.Name},
		"sequence", sequence,
	)

	c.startGame(inst)
	return nil
}

// rollbackPairing returns both players to the head of the queue.
func (c *Coordinator) rollbackPairing(waiting, joining core.Player) {
	c.queue = append([]core.Player{waiting, joining}, c.queue...)
	for _, p := range []core.Player{waiting, joining} {
		c.sendTo(p.ID, MatchmakingError{Message: "Could not create a match, please try again"})
	}
	c.broadcastQueueStatus()
}

// removeFromQueue reports whether id was waiting.
func (c *Coordinator) removeFromQueue(id SessionID) bool {
	for i, p := range c.queue {
		if p.ID == id {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Coordinator) broadcastQueueStatus() {
	for i, p := range c.queue {
		c.sendTo(p.ID, QueueStatusUpdate{QueueSize: len(c.queue), Position: i + 1})
	}
}
