package multiplayer

import (
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/core/coretest"
	"github.com/vovakirdan/minigame-arena/internal/games/rps"
	"github.com/vovakirdan/minigame-arena/internal/games/whackamole"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

const (
	alice SessionID = "alice-0001"
	bob   SessionID = "bob-0002"
	carol SessionID = "carol-0003"
)

const scriptedDuration = 10 * time.Second

// scriptedEngine ends the way the acting player asks it to.
type scriptedEngine struct {
	env         core.Env
	result      *core.Result
	started     bool
	panicOnEnd  bool
	disposeHits int
}

func (e *scriptedEngine) Start() { e.started = true }

func (e *scriptedEngine) HandleAction(p core.PlayerID, a core.Action) {
	if e.env.Seat(p) < 0 {
		return
	}
	opp := core.Opponent(e.env.Players, p)
	switch a.Choice {
	case "win":
		e.result = &core.Result{WinnerID: p, Scores: map[core.PlayerID]int{p: 1, opp: 0}}
	case "draw":
		e.result = &core.Result{IsDraw: true, Scores: map[core.PlayerID]int{p: 0, opp: 0}}
	case "panic":
		panic("scripted action fault")
	case "end-panic":
		e.panicOnEnd = true
	}
}

func (e *scriptedEngine) CheckEnd() *core.Result {
	if e.panicOnEnd {
		panic("scripted end fault")
	}
	return e.result
}

func (e *scriptedEngine) Finalize() core.Result {
	scores := make(map[core.PlayerID]int)
	for _, p := range e.env.Players {
		scores[p] = 0
	}
	return core.Result{IsDraw: true, Scores: scores}
}

func (e *scriptedEngine) Snapshot(core.PlayerID) any { return map[string]bool{"started": e.started} }

func (e *scriptedEngine) Dispose() { e.disposeHits++ }

func scriptedEntry(id string) registry.Entry {
	return registry.Entry{
		Config: registry.GameConfig{
			ID:          id,
			Name:        id,
			Description: "scripted " + id,
			MinPlayers:  2,
			MaxPlayers:  2,
			Duration:    scriptedDuration,
			Category:    "test",
		},
		New: func(env core.Env) core.Engine { return &scriptedEngine{env: env} },
	}
}

func scriptedCatalog() *registry.Catalog {
	c := registry.NewCatalog()
	for _, id := range []string{"alpha", "beta", "gamma", "delta"} {
		c.Register(scriptedEntry(id))
	}
	return c
}

func testConfig() CoordinatorConfig {
	cfg := DefaultCoordinatorConfig()
	cfg.StatusInterval = 0
	return cfg
}

type memorySaver struct {
	mu      sync.Mutex
	results []MatchResultData
}

func (s *memorySaver) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *memorySaver) all() []MatchResultData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MatchResultData(nil), s.results...)
}

// harness drives an unstarted coordinator synchronously.
type harness struct {
	t        *testing.T
	c        *Coordinator
	sched    *coretest.Scheduler
	sessions *SessionRegistry
	conns    map[SessionID]*ChannelSession
	logs     map[SessionID][]core.Event
	saver    *memorySaver
}

func newHarness(t *testing.T, cfg CoordinatorConfig, catalog *registry.Catalog) *harness {
	t.Helper()
	sched := coretest.NewScheduler()
	sessions := NewSessionRegistry()
	c := NewCoordinator(cfg, catalog, sessions,
		WithScheduler(sched),
		WithRand(rand.New(rand.NewSource(1))),
		WithLogger(log.New(io.Discard)),
	)
	saver := &memorySaver{}
	c.SetResultSaver(saver)

	h := &harness{
		t:        t,
		c:        c,
		sched:    sched,
		sessions: sessions,
		conns:    make(map[SessionID]*ChannelSession),
		logs:     make(map[SessionID][]core.Event),
		saver:    saver,
	}
	for _, id := range []SessionID{alice, bob, carol} {
		s := NewChannelSession(id, 1024)
		sessions.Register(s)
		h.conns[id] = s
	}
	return h
}

func (h *harness) send(msg CoordinatorMessage) {
	h.c.handleMessage(msg)
	h.drain()
}

// drain runs every queued message, including timer firings.
func (h *harness) drain() {
	for {
		select {
		case msg := <-h.c.msgChan:
			h.c.handleMessage(msg)
		default:
			return
		}
	}
}

// advance moves time in small steps so chained timers fire on schedule.
func (h *harness) advance(d time.Duration) {
	const step = 100 * time.Millisecond
	for d > 0 {
		s := min(step, d)
		h.sched.Advance(s)
		h.drain()
		d -= s
	}
}

func (h *harness) collect() {
	for id, s := range h.conns {
		for done := false; !done; {
			select {
			case ev := <-s.Events():
				h.logs[id] = append(h.logs[id], ev)
			default:
				done = true
			}
		}
	}
}

func (h *harness) all(id SessionID) []core.Event {
	h.collect()
	return h.logs[id]
}

func (h *harness) named(id SessionID, name string) []core.Event {
	var out []core.Event
	for _, ev := range h.all(id) {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

func (h *harness) clear() {
	h.collect()
	h.logs = make(map[SessionID][]core.Event)
}

func (h *harness) join(id SessionID, name string) {
	h.send(JoinQueueMsg{SessionID: id, DisplayName: name})
}

// pair seats alice and bob and runs the first countdown.
func (h *harness) pair() {
	h.join(alice, "Alice")
	h.join(bob, "Bob")
	h.advance(3 * time.Second)
}

func (h *harness) act(id SessionID, choice string) {
	h.send(GameActionMsg{SessionID: id, Action: core.Choose(choice)})
}

// nextGame readies both players and runs the next countdown.
func (h *harness) nextGame() {
	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})
	h.advance(3 * time.Second)
}

func last[T core.Event](t *testing.T, evs []core.Event) T {
	t.Helper()
	require.NotEmpty(t, evs)
	v, ok := evs[len(evs)-1].(T)
	require.True(t, ok, "unexpected event type %T", evs[len(evs)-1])
	return v
}

func indexOf(evs []core.Event, match func(core.Event) bool) int {
	for i := len(evs) - 1; i >= 0; i-- {
		if match(evs[i]) {
			return i
		}
	}
	return -1
}

func TestJoinAndPairing(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())

	h.join(alice, "Alice")
	waiting := last[WaitingForOpponent](t, h.named(alice, "waiting-for-opponent"))
	assert.Equal(t, 1, waiting.QueuePosition)
	assert.Equal(t, 1, h.c.QueueSize())

	h.join(bob, "Bob")
	assert.Equal(t, 0, h.c.QueueSize())
	assert.Equal(t, 1, h.c.MatchCount())

	fa := last[GameFound](t, h.named(alice, "game-found"))
	fb := last[GameFound](t, h.named(bob, "game-found"))
	assert.Equal(t, fa.GameID, fb.GameID)
	assert.Equal(t, fa.MatchID, fb.MatchID)
	assert.Equal(t, "Bob", fa.Opponent)
	assert.Equal(t, "Alice", fb.Opponent)
	assert.Equal(t, 0, fa.PlayerIndex)
	assert.Equal(t, 1, fb.PlayerIndex)
	assert.Equal(t, 1, fa.CurrentGame)
	assert.Equal(t, 3, fa.TotalGames)
	assert.Equal(t, scriptedDuration.Milliseconds(), fa.DurationMs)
	assert.False(t, fa.SuddenDeath)
}

func TestCountdownThenSingleGameStart(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.join(alice, "Alice")
	h.join(bob, "Bob")

	for _, id := range []SessionID{alice, bob} {
		assert.Equal(t, []core.Event{Countdown(3)}, h.named(id, "countdown"))
	}

	h.advance(time.Second)
	h.advance(time.Second)
	for _, id := range []SessionID{alice, bob} {
		assert.Equal(t, []core.Event{Countdown(3), Countdown(2), Countdown(1)}, h.named(id, "countdown"))
		assert.Empty(t, h.named(id, "game-start"))
	}

	h.advance(time.Second)
	h.advance(scriptedDuration + 5*time.Second)

	for seat, id := range []SessionID{alice, bob} {
		starts := h.named(id, "game-start")
		require.Len(t, starts, 1)
		start := starts[0].(GameStart)
		assert.Equal(t, seat, start.PlayerIndex)
		assert.Equal(t, map[string]bool{"started": false}, start.GameData)

		evs := h.all(id)
		lastTick := indexOf(evs, func(e core.Event) bool { return e == Countdown(1) })
		startAt := indexOf(evs, func(e core.Event) bool { return e.EventName() == "game-start" })
		assert.Greater(t, startAt, lastTick)
		assert.Len(t, h.named(id, "countdown"), 3)
	}
}

func TestTimerUpdatesCountDown(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	assert.Equal(t, []core.Event{TimerUpdate(10)}, h.named(alice, "timer-update"))
	h.advance(3 * time.Second)
	assert.Equal(t,
		[]core.Event{TimerUpdate(10), TimerUpdate(9), TimerUpdate(8), TimerUpdate(7)},
		h.named(bob, "timer-update"))
}

func TestDurationTimeoutFinishesOnce(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	h.advance(scriptedDuration)
	end := last[GameEnd](t, h.named(alice, "game-end"))
	assert.True(t, end.Draw)
	assert.False(t, end.Winner)
	assert.Equal(t, ScorePair{}, end.MatchScores)

	// The backup timer must not produce a second result.
	h.advance(5 * time.Second)
	assert.Len(t, h.named(alice, "game-end"), 1)
	assert.Len(t, h.named(bob, "game-end"), 1)
}

func TestEarlyEndCancelsTimersAndReleases(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	h.act(alice, "win")
	ea := last[GameEnd](t, h.named(alice, "game-end"))
	eb := last[GameEnd](t, h.named(bob, "game-end"))
	assert.True(t, ea.Winner)
	assert.False(t, eb.Winner)
	assert.Equal(t, ScorePair{You: 1, Opponent: 0}, ea.FinalScores)
	assert.Equal(t, ScorePair{You: 0, Opponent: 1}, eb.FinalScores)
	assert.Equal(t, ScorePair{You: 1, Opponent: 0}, ea.MatchScores)
	assert.Equal(t, 1, ea.CurrentGame)
	assert.Equal(t, 3, ea.TotalGames)

	// Only the release timer is left.
	assert.Equal(t, 1, h.sched.Pending())
	assert.Equal(t, 1, h.c.GameCount())

	h.advance(5 * time.Second)
	assert.Equal(t, 0, h.sched.Pending())
	assert.Equal(t, 0, h.c.GameCount())
	assert.Equal(t, 1, h.c.MatchCount())
	assert.Len(t, h.named(alice, "game-end"), 1)
	assert.Empty(t, h.named(alice, "timer-update")[1:])
}

func TestActionsIgnoredOutsidePlaying(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.join(alice, "Alice")
	h.join(bob, "Bob")

	// Still counting down.
	h.act(alice, "win")
	h.advance(3 * time.Second)
	assert.Empty(t, h.named(alice, "game-end"))

	h.act(bob, "win")
	h.act(alice, "win")
	end := last[GameEnd](t, h.named(alice, "game-end"))
	assert.False(t, end.Winner)
	assert.Len(t, h.named(alice, "game-end"), 1)
}

func TestActionPanicReportsToActorOnly(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	h.act(alice, "panic")
	assert.Len(t, h.named(alice, "game-error"), 1)
	assert.Empty(t, h.named(bob, "game-error"))
	assert.Equal(t, 1, h.c.MatchCount())

	h.act(alice, "win")
	assert.True(t, last[GameEnd](t, h.named(alice, "game-end")).Winner)
}

func TestResultFaultEndsMatch(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	h.act(bob, "end-panic")
	assert.Len(t, h.named(alice, "game-error"), 1)
	assert.Len(t, h.named(bob, "game-error"), 1)
	assert.Equal(t, 0, h.c.MatchCount())
	assert.Equal(t, 0, h.c.GameCount())
	assert.Equal(t, 0, h.sched.Pending())

	require.Eventually(t, func() bool { return len(h.saver.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "error", h.saver.all()[0].EndReason)
}

func TestReadyUpProtocol(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	// Ready is ignored while a game is running.
	h.send(PlayerReadyMsg{SessionID: alice})
	assert.Empty(t, h.named(alice, "ready-status-update"))

	h.act(alice, "win")
	h.send(PlayerReadyMsg{SessionID: alice})

	ra := last[ReadyStatusUpdate](t, h.named(alice, "ready-status-update"))
	rb := last[ReadyStatusUpdate](t, h.named(bob, "ready-status-update"))
	assert.Equal(t, ReadyStatusUpdate{YourReady: true, OpponentReady: false}, ra)
	assert.Equal(t, ReadyStatusUpdate{YourReady: false, OpponentReady: true}, rb)
	assert.Empty(t, h.named(alice, "both-players-ready"))
	assert.Len(t, h.named(alice, "game-found"), 1)

	h.send(PlayerReadyMsg{SessionID: bob})
	assert.Len(t, h.named(alice, "both-players-ready"), 1)
	assert.Len(t, h.named(bob, "both-players-ready"), 1)

	found := last[GameFound](t, h.named(bob, "game-found"))
	assert.Equal(t, 2, found.CurrentGame)
	assert.Equal(t, "Alice", found.Opponent)
	assert.Equal(t, 1, found.PlayerIndex)

	h.advance(3 * time.Second)
	assert.Len(t, h.named(alice, "game-start"), 2)
}

func TestMatchScoresTrackDecisiveGames(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	outcomes := []struct {
		actor  SessionID
		choice string
	}{
		{alice, "win"},
		{bob, "draw"},
		{bob, "win"},
	}
	decisive := 0
	for i, o := range outcomes {
		if i > 0 {
			h.nextGame()
		}
		h.act(o.actor, o.choice)
		if o.choice == "win" {
			decisive++
		}
		end := last[GameEnd](t, h.named(alice, "game-end"))
		assert.Equal(t, decisive, end.MatchScores.You+end.MatchScores.Opponent)
		assert.Equal(t, i+1, end.CurrentGame)
	}

	// 1-1 with a draw: the default policy adds one tiebreaker.
	end := last[GameEnd](t, h.named(alice, "game-end"))
	assert.Equal(t, 4, end.TotalGames)
}

func TestSuddenDeathTiedAtEnd(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	h.act(alice, "win")
	h.nextGame()
	h.act(bob, "win")
	assert.Equal(t, 3, last[GameEnd](t, h.named(alice, "game-end")).TotalGames)
	h.nextGame()
	h.act(alice, "draw")

	third := last[GameEnd](t, h.named(alice, "game-end"))
	assert.Equal(t, 4, third.TotalGames)
	thirdFound := last[GameFound](t, h.named(alice, "game-found"))

	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})
	found := last[GameFound](t, h.named(alice, "game-found"))
	assert.Equal(t, 4, found.CurrentGame)
	assert.Equal(t, 4, found.TotalGames)
	assert.True(t, found.SuddenDeath)
	assert.NotEqual(t, thirdFound.GameType, found.GameType)

	h.advance(3 * time.Second)
	assert.True(t, last[GameStart](t, h.named(bob, "game-start")).SuddenDeath)

	h.act(alice, "win")
	fourth := last[GameEnd](t, h.named(alice, "game-end"))
	assert.True(t, fourth.SuddenDeath)
	assert.Equal(t, 4, fourth.TotalGames)

	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})

	ta := last[TournamentComplete](t, h.named(alice, "tournament-complete"))
	tb := last[TournamentComplete](t, h.named(bob, "tournament-complete"))
	assert.True(t, ta.Winner)
	assert.Equal(t, "you", ta.Result)
	assert.Equal(t, "opponent", tb.Result)
	assert.Equal(t, ScorePair{You: 2, Opponent: 1}, ta.MatchScores)
	assert.Equal(t, 4, ta.GamesPlayed)
	assert.Equal(t, 0, h.c.MatchCount())

	require.Eventually(t, func() bool { return len(h.saver.all()) == 1 }, time.Second, 5*time.Millisecond)
	saved := h.saver.all()[0]
	assert.Equal(t, "completed", saved.EndReason)
	assert.Equal(t, alice, saved.WinnerID)
	assert.Len(t, saved.Games, 4)
	assert.Len(t, saved.Sequence, 4)
}

func TestSuddenDeathCappedDrawsTournament(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	for i, choice := range []string{"draw", "draw", "draw", "draw"} {
		if i > 0 {
			h.nextGame()
		}
		h.act(alice, choice)
	}
	assert.Equal(t, 4, last[GameEnd](t, h.named(alice, "game-end")).TotalGames)

	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})
	done := last[TournamentComplete](t, h.named(bob, "tournament-complete"))
	assert.True(t, done.Draw)
	assert.Equal(t, "draw", done.Result)
	assert.Equal(t, 4, done.GamesPlayed)
}

func TestSuddenDeathTiedAfterSecond(t *testing.T) {
	cfg := testConfig()
	cfg.SuddenDeath = SuddenDeathTiedAfterSecond
	h := newHarness(t, cfg, scriptedCatalog())
	h.pair()

	h.act(alice, "win")
	h.nextGame()
	h.act(bob, "win")
	assert.Equal(t, 3, last[GameEnd](t, h.named(alice, "game-end")).TotalGames)

	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})
	found := last[GameFound](t, h.named(alice, "game-found"))
	assert.Equal(t, 3, found.CurrentGame)
	assert.True(t, found.SuddenDeath)

	// A tied decider is final under this policy.
	h.advance(3 * time.Second)
	h.act(bob, "draw")
	assert.Equal(t, 3, last[GameEnd](t, h.named(alice, "game-end")).TotalGames)

	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})
	done := last[TournamentComplete](t, h.named(alice, "tournament-complete"))
	assert.True(t, done.Draw)
	assert.Equal(t, 3, done.GamesPlayed)
	assert.Equal(t, ScorePair{You: 1, Opponent: 1}, done.MatchScores)
}

func TestSuddenDeathOff(t *testing.T) {
	cfg := testConfig()
	cfg.SuddenDeath = SuddenDeathOff
	h := newHarness(t, cfg, scriptedCatalog())
	h.pair()

	h.act(alice, "win")
	h.nextGame()
	h.act(bob, "win")
	h.nextGame()
	h.act(bob, "draw")
	assert.Equal(t, 3, last[GameEnd](t, h.named(alice, "game-end")).TotalGames)

	h.send(PlayerReadyMsg{SessionID: alice})
	h.send(PlayerReadyMsg{SessionID: bob})
	done := last[TournamentComplete](t, h.named(alice, "tournament-complete"))
	assert.True(t, done.Draw)
	assert.Equal(t, ScorePair{You: 1, Opponent: 1}, done.MatchScores)
}

func TestRageQuitEndsMatchImmediately(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()
	h.act(alice, "win")
	h.nextGame()
	h.clear()

	h.send(RageQuitMsg{SessionID: alice})
	quits := h.named(bob, "opponent-rage-quit")
	require.Len(t, quits, 1)
	assert.Equal(t, "Alice rage quit! You win by forfeit.", quits[0].(OpponentRageQuit).Message)
	assert.Equal(t, 0, h.c.MatchCount())

	h.send(GameActionMsg{SessionID: bob, Action: core.Choose("win")})
	h.send(PlayerReadyMsg{SessionID: bob})
	h.advance(scriptedDuration + 10*time.Second)

	assert.Len(t, h.all(bob), 1)
	assert.Empty(t, h.all(alice))
	assert.Equal(t, 0, h.c.GameCount())
	assert.Equal(t, 0, h.sched.Pending())

	require.Eventually(t, func() bool { return len(h.saver.all()) == 1 }, time.Second, 5*time.Millisecond)
	saved := h.saver.all()[0]
	assert.Equal(t, "rage-quit", saved.EndReason)
	assert.Equal(t, bob, saved.WinnerID)
	assert.Len(t, saved.Games, 1)
}

func TestDisconnectForfeitsMatch(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()
	h.clear()

	h.send(SessionDisconnectedMsg{SessionID: bob})
	msgs := h.named(alice, "opponent-disconnected")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].(OpponentDisconnected).Message, "Bob")
	assert.Equal(t, 0, h.c.MatchCount())
	assert.Equal(t, 0, h.c.GameCount())

	h.advance(scriptedDuration + 5*time.Second)
	assert.Len(t, h.all(alice), 1)

	require.Eventually(t, func() bool { return len(h.saver.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "disconnect", h.saver.all()[0].EndReason)
	assert.Equal(t, alice, h.saver.all()[0].WinnerID)

	// Alice is free to queue again.
	h.join(alice, "Alice")
	assert.Equal(t, 1, h.c.QueueSize())
}

func TestDisconnectWhileQueued(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.join(alice, "Alice")
	h.send(SessionDisconnectedMsg{SessionID: alice})
	assert.Equal(t, 0, h.c.QueueSize())

	h.join(bob, "Bob")
	assert.Len(t, h.named(bob, "waiting-for-opponent"), 1)
	assert.Equal(t, 0, h.c.MatchCount())
}

func TestLeaveQueueIsIdempotent(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())

	h.send(LeaveQueueMsg{SessionID: alice})
	require.Len(t, h.all(alice), 1)
	assert.Equal(t, QueueLeft{WasQueued: false}, h.all(alice)[0])

	h.join(alice, "Alice")
	h.send(LeaveQueueMsg{SessionID: alice})
	h.send(LeaveQueueMsg{SessionID: alice})
	left := h.named(alice, "queue-left")
	require.Len(t, left, 3)
	assert.Equal(t, QueueLeft{WasQueued: true}, left[1])
	assert.Equal(t, QueueLeft{WasQueued: false}, left[2])
	assert.Equal(t, 0, h.c.QueueSize())
}

func TestJoinWhileInMatchIsRejected(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()

	h.join(alice, "Alice")
	assert.Len(t, h.named(alice, "matchmaking-error"), 1)
	assert.Equal(t, 0, h.c.QueueSize())
	assert.Equal(t, 1, h.c.MatchCount())
}

func TestRejoinReplacesQueueEntry(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.join(alice, "Alice")
	h.join(alice, "Alicia")
	assert.Equal(t, 1, h.c.QueueSize())
	assert.Len(t, h.named(alice, "waiting-for-opponent"), 2)

	h.join(bob, "Bob")
	assert.Equal(t, "Alicia", last[GameFound](t, h.named(bob, "game-found")).Opponent)
}

func TestCreationFailureRollsBack(t *testing.T) {
	catalog := registry.NewCatalog()
	entry := scriptedEntry("crowd")
	entry.Config.MinPlayers = 3
	entry.Config.MaxPlayers = 4
	catalog.Register(entry)

	cfg := testConfig()
	cfg.GamesPerMatch = 1
	h := newHarness(t, cfg, catalog)

	h.join(alice, "Alice")
	h.join(bob, "Bob")

	assert.Len(t, h.named(alice, "matchmaking-error"), 1)
	assert.Len(t, h.named(bob, "matchmaking-error"), 1)
	assert.Equal(t, 0, h.c.MatchCount())
	assert.Equal(t, 0, h.c.GameCount())
	assert.Equal(t, 2, h.c.QueueSize())
	assert.Equal(t, 0, h.sched.Pending())

	assert.Equal(t, QueueStatusUpdate{QueueSize: 2, Position: 1}, last[QueueStatusUpdate](t, h.named(alice, "queue-status-update")))
	assert.Equal(t, QueueStatusUpdate{QueueSize: 2, Position: 2}, last[QueueStatusUpdate](t, h.named(bob, "queue-status-update")))
}

func TestStatusTickUpdatesWaiters(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.join(carol, "Carol")
	h.send(statusTickMsg{})
	assert.Equal(t, QueueStatusUpdate{QueueSize: 1, Position: 1}, last[QueueStatusUpdate](t, h.named(carol, "queue-status-update")))
}

func TestStats(t *testing.T) {
	h := newHarness(t, testConfig(), scriptedCatalog())
	h.pair()
	h.join(carol, "Carol")

	assert.Equal(t, Stats{
		QueueSize:        1,
		ActiveMatches:    1,
		ActiveGames:      1,
		ConnectedPlayers: 3,
	}, h.c.Stats())

	h.act(alice, "win")
	stats := h.c.Stats()
	assert.Equal(t, 0, stats.ActiveGames)
	assert.Equal(t, 1, stats.GamesPlayed)
}

func TestRockPaperScissorsRoundResult(t *testing.T) {
	catalog := registry.NewCatalog()
	catalog.Register(rps.Entry(rps.Options{Rounds: 2, RoundDelay: time.Second}, 30*time.Second))
	cfg := testConfig()
	cfg.GamesPerMatch = 1
	h := newHarness(t, cfg, catalog)
	h.pair()

	h.act(alice, "rock")
	h.act(bob, "scissors")

	ra := last[rps.RoundResult](t, h.named(alice, "round-result"))
	rb := last[rps.RoundResult](t, h.named(bob, "round-result"))
	assert.Equal(t, "you", ra.Winner)
	assert.Equal(t, "opponent", rb.Winner)
	assert.Equal(t, [2]int{1, 0}, ra.Scores)
	assert.Equal(t, [2]int{1, 0}, rb.Scores)
}

func TestWhackAMoleMissHasNoEffect(t *testing.T) {
	catalog := registry.NewCatalog()
	catalog.Register(whackamole.Entry(whackamole.DefaultOptions(), 30*time.Second))
	cfg := testConfig()
	cfg.GamesPerMatch = 1
	h := newHarness(t, cfg, catalog)
	h.pair()

	// No mole has spawned yet.
	h.send(GameActionMsg{SessionID: alice, Action: core.Place(4)})
	assert.Empty(t, h.named(alice, "score-update"))
	assert.Empty(t, h.named(bob, "score-update"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Player-abcd", displayName("abcdef", "  "))
	assert.Equal(t, "Player-ab", displayName("ab", ""))
	assert.Equal(t, "Neo", displayName("x", " Neo "))
	assert.Len(t, []rune(displayName("x", "abcdefghijklmnopqrstuvwxyz0123")), maxNameLen)
}

func TestStartStopRunsStatusJob(t *testing.T) {
	cfg := testConfig()
	cfg.StatusInterval = 10 * time.Millisecond
	sessions := NewSessionRegistry()
	s := NewChannelSession(alice, 64)
	sessions.Register(s)

	c := NewCoordinator(cfg, scriptedCatalog(), sessions, WithLogger(log.New(io.Discard)))
	require.NoError(t, c.Start())
	defer c.Stop()

	c.Send(JoinQueueMsg{SessionID: alice, DisplayName: "Alice"})

	require.Eventually(t, func() bool {
		for {
			select {
			case ev := <-s.Events():
				if ev.EventName() == "queue-status-update" {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, c.QueueSize())
	c.Stop()
	c.Stop()
}
