package multiplayer

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vovakirdan/minigame-arena/internal/core"
)

// NewClockScheduler adapts a clockwork clock to core.Scheduler.
// Callbacks run on the clock's goroutine.
func NewClockScheduler(clock clockwork.Clock) core.Scheduler {
	return clockScheduler{clock: clock}
}

type clockScheduler struct {
	clock clockwork.Clock
}

func (s clockScheduler) AfterFunc(d time.Duration, fn func()) core.Timer {
	return clockTimer{s.clock.AfterFunc(d, fn)}
}

func (s clockScheduler) Now() time.Time {
	return s.clock.Now()
}

type clockTimer struct {
	t clockwork.Timer
}

func (t clockTimer) Stop() { t.t.Stop() }

// loopTimer is a timer whose callback runs on the coordinator loop.
// Its fields are only touched from the loop, so Stop and the fired check
// never race: a firing that was already queued when Stop ran is dropped.
type loopTimer struct {
	fn      func()
	raw     core.Timer
	owner   *GameInstance // nil for coordinator-level timers
	stopped bool
}

func (t *loopTimer) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	if t.raw != nil {
		t.raw.Stop()
	}
}

// timerSet owns every timer of one game instance, engine timers included.
// It is the core.Scheduler handed to the engine.
type timerSet struct {
	c      *Coordinator
	owner  *GameInstance
	timers []*loopTimer
	closed bool
}

func newTimerSet(c *Coordinator, owner *GameInstance) *timerSet {
	return &timerSet{c: c, owner: owner}
}

// AfterFunc schedules fn on the coordinator loop. After StopAll it returns
// an inert timer.
func (s *timerSet) AfterFunc(d time.Duration, fn func()) core.Timer {
	if s.closed {
		return &loopTimer{stopped: true}
	}
	if len(s.timers) >= 64 {
		s.compact()
	}
	t := s.c.afterFunc(d, s.owner, fn)
	s.timers = append(s.timers, t)
	return t
}

func (s *timerSet) Now() time.Time {
	return s.c.timers.Now()
}

// StopAll cancels every pending timer. Idempotent.
func (s *timerSet) StopAll() {
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

// Pending returns the number of live timers.
func (s *timerSet) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *timerSet) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
}
