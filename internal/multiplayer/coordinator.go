package multiplayer

import (
	"fmt"
	"math/rand"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/registry"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	GamesPerMatch       int
	CountdownFrom       int           // First countdown value; ticks go N..1
	CountdownInterval   time.Duration // Gap between ticks and before game-start
	TimerUpdateInterval time.Duration // timer-update cadence while playing
	BackupSlack         time.Duration // Backup end timer fires at duration + slack
	DisposeGrace        time.Duration // Finished instances linger this long
	SuddenDeath         SuddenDeathPolicy
	MaxSuddenDeath      int
	StatusInterval      time.Duration // 0 disables the periodic status job
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		GamesPerMatch:       3,
		CountdownFrom:       3,
		CountdownInterval:   time.Second,
		TimerUpdateInterval: time.Second,
		BackupSlack:         2 * time.Second,
		DisposeGrace:        5 * time.Second,
		SuddenDeath:         SuddenDeathTiedAtEnd,
		MaxSuddenDeath:      1,
		StatusInterval:      10 * time.Second,
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the wall clock used for timers and the status job.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithScheduler replaces the timer source. Callbacks must not run on the
// coordinator goroutine itself.
func WithScheduler(s core.Scheduler) Option {
	return func(c *Coordinator) {
		c.timers = s
	}
}

// WithRand sets the RNG used for game selection and engines.
func WithRand(rng *rand.Rand) Option {
	return func(c *Coordinator) {
		c.rng = rng
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator manages the queue, active matches and their game instances.
type Coordinator struct {
	config      CoordinatorConfig
	catalog     *registry.Catalog
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger
	clock       clockwork.Clock
	timers      core.Scheduler
	rng         *rand.Rand
	cron        gocron.Scheduler

	// mu guards everything below for readers outside the loop.
	// The loop holds it for the duration of each message.
	mu      sync.RWMutex
	queue   []core.Player
	matches map[MatchID]*Match
	games   map[GameInstanceID]*GameInstance

	// Track which session is in which match/game
	sessionMatch map[SessionID]*Match
	sessionGame  map[SessionID]*GameInstance

	matchesCompleted int
	gamesPlayed      int

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
	loop     sync.WaitGroup
	saves    sync.WaitGroup
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, catalog *registry.Catalog, sessions *SessionRegistry, opts ...Option) *Coordinator {
	c := &Coordinator{
		config:       cfg,
		catalog:      catalog,
		sessions:     sessions,
		matches:      make(map[MatchID]*Match),
		games:        make(map[GameInstanceID]*GameInstance),
		sessionMatch: make(map[SessionID]*Match),
		sessionGame:  make(map[SessionID]*GameInstance),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.timers == nil {
		c.timers = NewClockScheduler(c.clock)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(c.clock.Now().UnixNano()))
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "coordinator",
		})
	}
	if c.config.SuddenDeath == "" {
		c.config.SuddenDeath = SuddenDeathOff
	}
	return c
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// Start begins the coordinator's background processing and the periodic
// status job.
func (c *Coordinator) Start() error {
	if c.config.StatusInterval > 0 {
		s, err := gocron.NewScheduler(gocron.WithClock(c.clock))
		if err != nil {
			return fmt.Errorf("multiplayer: cannot create scheduler: %w", err)
		}
		_, err = s.NewJob(
			gocron.DurationJob(c.config.StatusInterval),
			gocron.NewTask(func() { c.Send(statusTickMsg{}) }),
			gocron.WithName("queue-status"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return fmt.Errorf("multiplayer: cannot schedule status job: %w", err)
		}
		s.Start()
		c.cron = s
	}

	c.loop.Add(1)
	go c.processMessages()
	return nil
}

// Stop shuts down the coordinator and waits for the loop and any pending
// result saves. Safe to call more than once.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		if c.cron != nil {
			if err := c.cron.Shutdown(); err != nil {
				c.logger.Warn("status job shutdown failed", "error", err)
			}
		}
		c.loop.Wait()
		c.saves.Wait()
	})
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	defer c.loop.Done()
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch m := msg.(type) {
	case JoinQueueMsg:
		c.handleJoinQueue(m)
	case LeaveQueueMsg:
		c.handleLeaveQueue(m)
	case GameActionMsg:
		c.handleGameAction(m)
	case PlayerReadyMsg:
		c.handlePlayerReady(m)
	case RageQuitMsg:
		c.handleRageQuit(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	case timerFiredMsg:
		c.handleTimerFired(m.timer)
	case statusTickMsg:
		c.handleStatusTick()
	}
}

// afterFunc schedules fn to run on the loop after d.
func (c *Coordinator) afterFunc(d time.Duration, owner *GameInstance, fn func()) *loopTimer {
	t := &loopTimer{fn: fn, owner: owner}
	t.raw = c.timers.AfterFunc(d, func() {
		c.Send(timerFiredMsg{timer: t})
	})
	return t
}

func (c *Coordinator) handleTimerFired(t *loopTimer) {
	if t.stopped {
		return
	}
	t.stopped = true

	inst := t.owner
	if inst == nil {
		t.fn()
		return
	}
	if inst.State == core.Finished {
		return
	}
	if err := c.guard(t.fn); err != nil {
		c.logger.Error("timer callback failed", "game", inst.ID, "type", inst.GameType, "error", err)
		c.failGame(inst)
		return
	}
	if inst.State == core.Playing {
		c.checkEnd(inst)
	}
}

// guard runs fn and converts a panic into an error.
func (c *Coordinator) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			c.logger.Debug("recovered panic", "stack", string(debug.Stack()))
		}
	}()
	fn()
	return nil
}

func (c *Coordinator) now() time.Time {
	return c.timers.Now()
}

func (c *Coordinator) sendTo(id SessionID, evt core.Event) {
	if s, ok := c.sessions.Get(id); ok {
		s.Send(evt)
	}
}

func (c *Coordinator) handleStatusTick() {
	c.broadcastQueueStatus()
	c.logger.Debug("status",
		"queue", len(c.queue),
		"matches", len(c.matches),
		"games", len(c.games),
		"sessions", c.sessions.Count(),
	)
}

func (c *Coordinator) saveResult(m *Match, reason EndReason, winner core.PlayerID) {
	if c.resultSaver == nil {
		return
	}
	data := m.resultData(reason, winner)
	saver := c.resultSaver
	logger := c.logger
	// Best effort save, don't block the loop
	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		if err := saver.SaveMatchResult(data); err != nil {
			logger.Warn("could not save match result", "match", data.MatchID, "error", err)
		}
	}()
}

// Stats is a point-in-time view of the coordinator.
type Stats struct {
	QueueSize        int `json:"queueSize"`
	ActiveMatches    int `json:"activeMatches"`
	ActiveGames      int `json:"activeGames"`
	ConnectedPlayers int `json:"connectedPlayers"`
	MatchesCompleted int `json:"matchesCompleted"`
	GamesPlayed      int `json:"gamesPlayed"`
}

// Stats returns current counters. Safe to call from any goroutine.
func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	for _, g := range c.games {
		if g.State != core.Finished {
			active++
		}
	}
	return Stats{
		QueueSize:        len(c.queue),
		ActiveMatches:    len(c.matches),
		ActiveGames:      active,
		ConnectedPlayers: c.sessions.Count(),
		MatchesCompleted: c.matchesCompleted,
		GamesPlayed:      c.gamesPlayed,
	}
}

// QueueSize returns the number of waiting players.
func (c *Coordinator) QueueSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.queue)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}

// GameCount returns the number of tracked game instances, including
// finished ones still inside their dispose grace window.
func (c *Coordinator) GameCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.games)
}
