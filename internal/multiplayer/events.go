package multiplayer

import "github.com/vovakirdan/minigame-arena/internal/core"

// Outbound events. Each one is marshalled as the payload of an envelope
// named by EventName.

// WaitingForOpponent is sent to a player who joined an empty queue.
type WaitingForOpponent struct {
	QueuePosition int `json:"queuePosition"`
}

func (WaitingForOpponent) EventName() string { return "waiting-for-opponent" }

// QueueStatusUpdate tells a waiting player where they stand.
type QueueStatusUpdate struct {
	QueueSize int `json:"queueSize"`
	Position  int `json:"position"`
}

func (QueueStatusUpdate) EventName() string { return "queue-status-update" }

// QueueLeft confirms a leave-queue request. WasQueued is false when the
// player was not waiting.
type QueueLeft struct {
	WasQueued bool `json:"wasQueued"`
}

func (QueueLeft) EventName() string { return "queue-left" }

// GameFound announces the next game of a match. It is personalized:
// Opponent is the other player's display name.
type GameFound struct {
	GameID      GameInstanceID `json:"gameId"`
	MatchID     MatchID        `json:"matchId"`
	Opponent    string         `json:"opponent"`
	GameType    string         `json:"gameType"`
	GameName    string         `json:"gameName"`
	Description string         `json:"description"`
	DurationMs  int64          `json:"durationMs"`
	PlayerIndex int            `json:"playerIndex"`
	CurrentGame int            `json:"currentGame"`
	TotalGames  int            `json:"totalGames"`
	SuddenDeath bool           `json:"suddenDeath"`
}

func (GameFound) EventName() string { return "game-found" }

// Countdown is one pre-game tick; the payload is the bare number.
type Countdown int

func (Countdown) EventName() string { return "countdown" }

// GameStart marks the transition to Playing.
type GameStart struct {
	GameType    string `json:"gameType"`
	GameData    any    `json:"gameData"`
	PlayerIndex int    `json:"playerIndex"`
	CurrentGame int    `json:"currentGame"`
	TotalGames  int    `json:"totalGames"`
	DurationMs  int64  `json:"durationMs"`
	SuddenDeath bool   `json:"suddenDeath"`
}

func (GameStart) EventName() string { return "game-start" }

// TimerUpdate carries the whole seconds left; the payload is the bare number.
type TimerUpdate int

func (TimerUpdate) EventName() string { return "timer-update" }

// ScorePair is a score seen from one player's side.
type ScorePair struct {
	You      int `json:"you"`
	Opponent int `json:"opponent"`
}

// GameEnd is the personalized result of one game.
type GameEnd struct {
	Winner      bool      `json:"winner"`
	Draw        bool      `json:"draw"`
	FinalScores ScorePair `json:"finalScores"`
	MatchScores ScorePair `json:"matchScores"`
	CurrentGame int       `json:"currentGame"`
	TotalGames  int       `json:"totalGames"`
	GameType    string    `json:"gameType"`
	SuddenDeath bool      `json:"suddenDeath"`
	GameData    any       `json:"gameData"`
}

func (GameEnd) EventName() string { return "game-end" }

// ReadyStatusUpdate is broadcast on every ready signal.
type ReadyStatusUpdate struct {
	YourReady     bool `json:"yourReady"`
	OpponentReady bool `json:"opponentReady"`
}

func (ReadyStatusUpdate) EventName() string { return "ready-status-update" }

// BothPlayersReady closes the ready-up barrier.
type BothPlayersReady struct{}

func (BothPlayersReady) EventName() string { return "both-players-ready" }

// TournamentComplete is the personalized final result of a match.
type TournamentComplete struct {
	Result      string    `json:"result"` // you, opponent or draw
	Winner      bool      `json:"winner"`
	Draw        bool      `json:"draw"`
	MatchScores ScorePair `json:"matchScores"`
	GamesPlayed int       `json:"gamesPlayed"`
}

func (TournamentComplete) EventName() string { return "tournament-complete" }

// OpponentDisconnected tells the remaining player the match is over.
type OpponentDisconnected struct {
	Message string `json:"message"`
}

func (OpponentDisconnected) EventName() string { return "opponent-disconnected" }

// OpponentRageQuit tells the remaining player they won by forfeit.
type OpponentRageQuit struct {
	Message string `json:"message"`
}

func (OpponentRageQuit) EventName() string { return "opponent-rage-quit" }

// MatchmakingError reports a failed pairing or game creation.
type MatchmakingError struct {
	Message string `json:"message"`
}

func (MatchmakingError) EventName() string { return "matchmaking-error" }

// GameError reports a runtime fault inside a game.
type GameError struct {
	Message string `json:"message"`
}

func (GameError) EventName() string { return "game-error" }

// CoordinatorMessage represents a message from a session or timer to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// JoinQueueMsg requests matchmaking.
type JoinQueueMsg struct {
	SessionID   SessionID
	DisplayName string
}

func (JoinQueueMsg) coordinatorMessage() {}

// LeaveQueueMsg requests leaving the queue. Idempotent.
type LeaveQueueMsg struct {
	SessionID SessionID
}

func (LeaveQueueMsg) coordinatorMessage() {}

// GameActionMsg forwards a decoded game action.
type GameActionMsg struct {
	SessionID SessionID
	Action    core.Action
}

func (GameActionMsg) coordinatorMessage() {}

// PlayerReadyMsg signals readiness for the next game.
type PlayerReadyMsg struct {
	SessionID SessionID
}

func (PlayerReadyMsg) coordinatorMessage() {}

// RageQuitMsg abandons the current match.
type RageQuitMsg struct {
	SessionID SessionID
}

func (RageQuitMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}

// timerFiredMsg re-enters a timer callback on the coordinator loop.
type timerFiredMsg struct {
	timer *loopTimer
}

func (timerFiredMsg) coordinatorMessage() {}

// statusTickMsg is posted by the periodic status job.
type statusTickMsg struct{}

func (statusTickMsg) coordinatorMessage() {}
