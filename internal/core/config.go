package core

import (
	"math/rand"
	"time"
)

// Timer is a cancellable handle for a scheduled callback.
// Stop must be idempotent and safe to call after the callback has fired.
type Timer interface {
	Stop()
}

// Scheduler runs callbacks after a delay on the owner's serialized loop.
// Engines never start goroutines or raw time.Timers; every wait goes
// through the scheduler so the owning game instance can cancel it.
type Scheduler interface {
	// AfterFunc schedules fn to run once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// Now returns the current server time.
	Now() time.Time
}

// Env contains everything an engine needs at construction.
// The coordinator builds one per game instance.
type Env struct {
	Players []PlayerID // Seat order: index 0 moves first where turns apply
	Clock   Scheduler
	Rand    *rand.Rand
	Send    func(to PlayerID, evt Event)
}

// Seat returns the seat index of id, or -1 if id is not seated.
func (e Env) Seat(id PlayerID) int {
	for i, p := range e.Players {
		if p == id {
			return i
		}
	}
	return -1
}

// Broadcast sends a per-player event built by build to every seated player.
func (e Env) Broadcast(build func(viewer PlayerID) Event) {
	if e.Send == nil {
		return
	}
	for _, p := range e.Players {
		e.Send(p, build(p))
	}
}

// TimeOf returns the action's receive timestamp, or the clock's now
// when the transport did not stamp it.
func (e Env) TimeOf(a Action) time.Time {
	if !a.At.IsZero() {
		return a.At
	}
	return e.Clock.Now()
}
