// Package core defines the vocabulary shared by the game engines, the
// registry and the match coordinator: players, actions, results, events and
// the engine contract itself.
package core

// PlayerID is the opaque connection id assigned by the transport.
type PlayerID string

// Player is a queued or seated participant.
type Player struct {
	ID   PlayerID
	Name string
}

// Lifecycle is the state of a game instance.
type Lifecycle int

const (
	Waiting Lifecycle = iota
	Countdown
	Playing
	Finished
)

// String returns a human-readable name for the lifecycle state.
func (l Lifecycle) String() string {
	switch l {
	case Waiting:
		return "waiting"
	case Countdown:
		return "countdown"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is a typed outbound message. EventName is the wire event name;
// the value itself is marshalled as the payload.
type Event interface {
	EventName() string
}

// Result is the outcome of one game.
type Result struct {
	WinnerID PlayerID // Empty on draw
	IsDraw   bool
	Scores   map[PlayerID]int
	Extra    any // Engine-specific payload forwarded to clients as gameData
}

// Won reports whether id won the game.
func (r Result) Won(id PlayerID) bool {
	return !r.IsDraw && r.WinnerID != "" && r.WinnerID == id
}

// Engine is the state machine of one mini-game.
//
// All methods are called from the owning coordinator loop, never concurrently.
// The coordinator only forwards actions while the instance is Playing and
// stops calling into the engine once it is Finished.
type Engine interface {
	// Start runs when the instance enters Playing (e.g. arms the reaction signal).
	Start()

	// HandleAction applies one player action. Illegal or malformed actions are
	// silently ignored.
	HandleAction(player PlayerID, action Action)

	// CheckEnd returns the result if the game reached a terminal condition,
	// nil while it continues.
	CheckEnd() *Result

	// Finalize computes the result when the duration timer expires.
	Finalize() Result

	// Snapshot returns a serializable projection of the state for viewer.
	Snapshot(viewer PlayerID) any

	// Dispose cancels any engine-owned timers. Safe to call more than once.
	Dispose()
}

// Perspective labels a winner from viewer's point of view.
func Perspective(viewer, winner PlayerID, draw bool) string {
	switch {
	case draw || winner == "":
		return "draw"
	case winner == viewer:
		return "you"
	default:
		return "opponent"
	}
}

// Opponent returns the other seated player in a two-player game.
func Opponent(players []PlayerID, id PlayerID) PlayerID {
	for _, p := range players {
		if p != id {
			return p
		}
	}
	return ""
}
