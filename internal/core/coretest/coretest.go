// Package coretest provides deterministic fakes for engine and coordinator tests.
package coretest

import (
	"math/rand"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vovakirdan/minigame-arena/internal/core"
)

// Epoch is the start time of every fake scheduler.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// Scheduler is a manual core.Scheduler. Callbacks only run inside Advance,
// synchronously and in deadline order, so tests control every timer.
type Scheduler struct {
	clock  *clockwork.FakeClock
	seq    int
	timers []*timer
}

type timer struct {
	at      time.Time
	seq     int
	fn      func()
	stopped bool
}

func (t *timer) Stop() { t.stopped = true }

// NewScheduler creates a scheduler starting at Epoch.
func NewScheduler() *Scheduler {
	return &Scheduler{clock: clockwork.NewFakeClockAt(Epoch)}
}

// AfterFunc implements core.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) core.Timer {
	s.seq++
	t := &timer{at: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now implements core.Scheduler.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Advance moves time forward by d, firing every due timer on the way.
// Timers scheduled by callbacks are fired too if they fall inside the window.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		if wait := next.at.Sub(s.clock.Now()); wait > 0 {
			s.clock.Advance(wait)
		}
		next.stopped = true
		next.fn()
	}
	if rest := target.Sub(s.clock.Now()); rest > 0 {
		s.clock.Advance(rest)
	}
	s.compact()
}

// Pending returns the number of timers that are armed and not stopped.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *Scheduler) nextDue(target time.Time) *timer {
	var due []*timer
	for _, t := range s.timers {
		if !t.stopped && !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}

func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
}

// Sent is one recorded outbound event.
type Sent struct {
	To    core.PlayerID
	Event core.Event
}

// Recorder captures events sent through core.Env.Send.
type Recorder struct {
	Events []Sent
}

// Send records an event.
func (r *Recorder) Send(to core.PlayerID, evt core.Event) {
	r.Events = append(r.Events, Sent{To: to, Event: evt})
}

// Named returns all recorded events with the given wire name.
func (r *Recorder) Named(name string) []Sent {
	var out []Sent
	for _, s := range r.Events {
		if s.Event.EventName() == name {
			out = append(out, s)
		}
	}
	return out
}

// For returns the events with the given name sent to one player.
func (r *Recorder) For(to core.PlayerID, name string) []core.Event {
	var out []core.Event
	for _, s := range r.Named(name) {
		if s.To == to {
			out = append(out, s.Event)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.Events = nil
}

// NewEnv builds an engine environment seated with players, a manual
// scheduler, a recorder and a fixed-seed RNG.
func NewEnv(players ...core.PlayerID) (core.Env, *Scheduler, *Recorder) {
	sched := NewScheduler()
	rec := &Recorder{}
	env := core.Env{
		Players: players,
		Clock:   sched,
		Rand:    rand.New(rand.NewSource(1)),
		Send:    rec.Send,
	}
	return env, sched, rec
}
