// Package multiplayer pairs queued players into best-of-N tournaments and
// drives every game instance through countdown, play and result.
//
// All state is owned by a single coordinator goroutine. Transport events and
// timer callbacks both arrive as CoordinatorMessages on one channel, so at
// most one mutation is in flight at any time.
package multiplayer

import (
	"fmt"

	"github.com/vovakirdan/minigame-arena/internal/core"
)

// SessionID is the transport connection id. A connection maps to at most
// one player, so it doubles as the player id.
type SessionID = core.PlayerID

// MatchID uniquely identifies a tournament.
type MatchID string

// GameInstanceID uniquely identifies one running mini-game.
type GameInstanceID string

// MatchState is the tournament-level state.
type MatchState int

const (
	// MatchPlaying means a game instance is counting down or running.
	MatchPlaying MatchState = iota

	// MatchAwaitingReady means the last game ended and the ready-up
	// barrier is open.
	MatchAwaitingReady

	// MatchComplete is terminal.
	MatchComplete
)

// String returns a human-readable name for the match state.
func (s MatchState) String() string {
	switch s {
	case MatchPlaying:
		return "playing"
	case MatchAwaitingReady:
		return "awaiting-ready"
	case MatchComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// EndReason describes why a match ended.
type EndReason int

const (
	EndCompleted  EndReason = iota // Sequence played out
	EndRageQuit                    // A player abandoned the tournament
	EndDisconnect                  // A player's connection dropped
	EndError                       // A game could not be created or scored
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndRageQuit:
		return "rage-quit"
	case EndDisconnect:
		return "disconnect"
	case EndError:
		return "error"
	default:
		return "unknown"
	}
}

// SuddenDeathPolicy decides when a tiebreaker game is injected.
type SuddenDeathPolicy string

const (
	// SuddenDeathOff never adds games; a tied sequence ends as a draw.
	SuddenDeathOff SuddenDeathPolicy = "off"

	// SuddenDeathTiedAfterSecond turns the rest of the sequence into a single
	// sudden-death game when the score is tied after game two.
	SuddenDeathTiedAfterSecond SuddenDeathPolicy = "tied-after-second"

	// SuddenDeathTiedAtEnd appends a sudden-death game when the sequence
	// ends tied.
	SuddenDeathTiedAtEnd SuddenDeathPolicy = "tied-at-end"
)

// ParseSuddenDeathPolicy validates a policy name.
func ParseSuddenDeathPolicy(s string) (SuddenDeathPolicy, error) {
	switch p := SuddenDeathPolicy(s); p {
	case SuddenDeathOff, SuddenDeathTiedAfterSecond, SuddenDeathTiedAtEnd:
		return p, nil
	}
	return "", fmt.Errorf("multiplayer: unknown sudden death policy %q", s)
}
