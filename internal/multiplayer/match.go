package multiplayer

import (
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// Match is a tournament between two players over a sequence of games.
// Scores always has exactly the two players' ids as keys.
type Match struct {
	ID          MatchID
	Players     [2]core.Player // Seat order; seat 0 was waiting in the queue
	Sequence    []string       // Game type ids in play order
	Current     int            // Index into Sequence
	Scores      map[core.PlayerID]int
	Ready       map[core.PlayerID]bool
	SuddenDeath map[int]bool // Sequence indexes that are tiebreakers
	State       MatchState
	Game        *GameInstance // Active or most recently finished game
	Results     []GameRecord
	CreatedAt   time.Time
	EndedAt     time.Time

	extraGames int
}

func newMatch(id MatchID, players [2]core.Player, sequence []string, now time.Time) *Match {
	m := &Match{
		ID:          id,
		Players:     players,
		Sequence:    sequence,
		Scores:      make(map[core.PlayerID]int, 2),
		Ready:       make(map[core.PlayerID]bool, 2),
		SuddenDeath: make(map[int]bool),
		CreatedAt:   now,
	}
	for _, p := range players {
		m.Scores[p.ID] = 0
		m.Ready[p.ID] = false
	}
	return m
}

// IDs returns the player ids in seat order.
func (m *Match) IDs() []core.PlayerID {
	return []core.PlayerID{m.Players[0].ID, m.Players[1].ID}
}

// Seat returns the seat of id, or -1.
func (m *Match) Seat(id core.PlayerID) int {
	for i, p := range m.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Opponent returns the other player.
func (m *Match) Opponent(id core.PlayerID) core.Player {
	if m.Players[0].ID == id {
		return m.Players[1]
	}
	return m.Players[0]
}

// Player returns the player with id.
func (m *Match) Player(id core.PlayerID) core.Player {
	return m.Opponent(m.Opponent(id).ID)
}

// TotalGames is the current length of the sequence, sudden death included.
func (m *Match) TotalGames() int {
	return len(m.Sequence)
}

// Tied reports whether both players have the same number of wins.
func (m *Match) Tied() bool {
	return m.Scores[m.Players[0].ID] == m.Scores[m.Players[1].ID]
}

// Leader returns the player with more wins, or "" when tied.
func (m *Match) Leader() core.PlayerID {
	a, b := m.Players[0].ID, m.Players[1].ID
	switch {
	case m.Scores[a] > m.Scores[b]:
		return a
	case m.Scores[b] > m.Scores[a]:
		return b
	}
	return ""
}

// DecisiveGames counts finished games that had a winner.
func (m *Match) DecisiveGames() int {
	n := 0
	for _, r := range m.Results {
		if !r.Draw {
			n++
		}
	}
	return n
}

func (m *Match) allReady() bool {
	for _, p := range m.Players {
		if !m.Ready[p.ID] {
			return false
		}
	}
	return true
}

func (m *Match) resetReady() {
	for id := range m.Ready {
		m.Ready[id] = false
	}
}

// record applies a finished game to the cumulative score. Draws add nothing.
func (m *Match) record(inst *GameInstance, res core.Result) GameRecord {
	rec := GameRecord{
		Number:      inst.Number,
		GameType:    inst.GameType,
		Draw:        res.IsDraw || res.WinnerID == "",
		Scores:      make(map[core.PlayerID]int, len(res.Scores)),
		SuddenDeath: inst.SuddenDeath,
		StartedAt:   inst.StartedAt,
		EndedAt:     inst.EndedAt,
	}
	for p, s := range res.Scores {
		rec.Scores[p] = s
	}
	if !rec.Draw {
		if _, seated := m.Scores[res.WinnerID]; seated {
			rec.WinnerID = res.WinnerID
			m.Scores[res.WinnerID]++
		} else {
			rec.Draw = true
		}
	}
	m.Results = append(m.Results, rec)
	return rec
}

// GameRecord is the stored outcome of one finished game.
type GameRecord struct {
	Number      int
	GameType    string
	WinnerID    core.PlayerID // Empty on draw
	Draw        bool
	Scores      map[core.PlayerID]int
	SuddenDeath bool
	StartedAt   time.Time
	EndedAt     time.Time
}

// GameInstance is one running mini-game inside a match.
type GameInstance struct {
	ID          GameInstanceID
	Match       *Match
	GameType    string
	Config      registry.GameConfig
	Engine      core.Engine
	State       core.Lifecycle
	Players     []core.PlayerID
	Number      int // 1-based position in the match
	SuddenDeath bool
	CreatedAt   time.Time
	StartedAt   time.Time
	EndedAt     time.Time
	Result      *core.Result

	timers    *timerSet
	release   *loopTimer // Pending disposal after the grace window
	countdown int
	deadline  time.Time
	disposed  bool
}

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID   string
	Players   [2]core.Player
	Sequence  []string
	Games     []GameRecord
	Scores    map[core.PlayerID]int
	WinnerID  core.PlayerID // Empty on draw or error
	EndReason string
	StartedAt time.Time
	EndedAt   time.Time
}

func (m *Match) resultData(reason EndReason, winner core.PlayerID) MatchResultData {
	data := MatchResultData{
		MatchID:   string(m.ID),
		Players:   m.Players,
		Sequence:  append([]string(nil), m.Sequence...),
		Games:     append([]GameRecord(nil), m.Results...),
		Scores:    make(map[core.PlayerID]int, 2),
		WinnerID:  winner,
		EndReason: reason.String(),
		StartedAt: m.CreatedAt,
		EndedAt:   m.EndedAt,
	}
	for p, s := range m.Scores {
		data.Scores[p] = s
	}
	return data
}
