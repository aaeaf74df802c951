// Package timer keeps the delayed actions of a review session in one owned
// registry. Every timer has a kind and an owner. Arming a kind replaces the
// previous timer of that kind, and an owner's timers can be cancelled as a
// group when the owner (a review phase, the gesture tracker) goes away.
//
// The registry is confined to the event loop. Expired timers never touch it
// directly: they hand a Fired value to the post function, and the loop asks
// Claim whether that firing is still current.
package timer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Kind names a class of delayed action. At most one timer per kind is armed.
type Kind string

// Owner groups timers that are cancelled together.
type Owner string

// Token identifies one arming of a timer.
type Token uint64

// Fired reports that the timer armed with Token expired.
type Fired struct {
	Kind  Kind
	Token Token
}

type entry struct {
	token Token
	owner Owner
	timer clockwork.Timer
}

// Registry tracks armed timers.
type Registry struct {
	clock clockwork.Clock
	post  func(Fired)
	next  Token
	armed map[Kind]*entry
}

// New creates a registry. post is called from the clock's goroutine when a
// timer expires; it must hand the value over to the event loop.
func New(clock clockwork.Clock, post func(Fired)) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		clock: clock,
		post:  post,
		armed: make(map[Kind]*entry),
	}
}

// Arm schedules a timer of the given kind, cancelling any timer of the same
// kind that is still pending.
func (r *Registry) Arm(kind Kind, owner Owner, d time.Duration) Token {
	r.Cancel(kind)

	r.next++
	tok := r.next
	post := r.post
	e := &entry{token: tok, owner: owner}
	e.timer = r.clock.AfterFunc(d, func() {
		post(Fired{Kind: kind, Token: tok})
	})
	r.armed[kind] = e
	return tok
}

// Cancel stops the pending timer of the given kind. It reports whether one
// was pending.
func (r *Registry) Cancel(kind Kind) bool {
	e, ok := r.armed[kind]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(r.armed, kind)
	return true
}

// CancelOwner stops every pending timer that belongs to owner and returns
// how many were stopped.
func (r *Registry) CancelOwner(owner Owner) int {
	n := 0
	for kind, e := range r.armed {
		if e.owner == owner {
			e.timer.Stop()
			delete(r.armed, kind)
			n++
		}
	}
	return n
}

// CancelAll stops every pending timer.
func (r *Registry) CancelAll() {
	for kind, e := range r.armed {
		e.timer.Stop()
		delete(r.armed, kind)
	}
}

// Claim accepts a firing if it belongs to the timer currently armed for its
// kind, and disarms that timer. A firing from a cancelled or replaced timer
// that was already in flight is refused.
func (r *Registry) Claim(f Fired) bool {
	e, ok := r.armed[f.Kind]
	if !ok || e.token != f.Token {
		return false
	}
	delete(r.armed, f.Kind)
	return true
}

// Armed reports whether a timer of the given kind is pending.
func (r *Registry) Armed(kind Kind) bool {
	_, ok := r.armed[kind]
	return ok
}

// Pending returns the number of pending timers.
func (r *Registry) Pending() int {
	return len(r.armed)
}

// Clock returns the clock timers are scheduled on.
func (r *Registry) Clock() clockwork.Clock {
	return r.clock
}
