// Package gesture turns raw pointer input into review commands.
package gesture

import (
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abhisek/reviewz/internal/command"
	"github.com/abhisek/reviewz/internal/timer"
)

// Timer kinds armed by the dispatcher. All of them belong to Owner.
const (
	KindLongPressHold timer.Kind = "long-press-hold"
	KindLongPressFire timer.Kind = "long-press-fire"
	KindTapConfirm    timer.Kind = "tap-confirm"

	Owner timer.Owner = "gesture"
)

// Config holds the recognition thresholds. Distances are in surface units
// (terminal cells for the TUI) and velocities in units per second.
type Config struct {
	MinDistance     float64
	MinVelocity     float64
	MoveTolerance   float64
	ScrollDebounce  time.Duration
	DoubleTapWindow time.Duration
	LongPressHold   time.Duration
	LongPressFire   time.Duration
}

// DefaultConfig returns thresholds tuned for a terminal surface.
func DefaultConfig() Config {
	return Config{
		MinDistance:     4,
		MinVelocity:     8,
		MoveTolerance:   1,
		ScrollDebounce:  300 * time.Millisecond,
		DoubleTapWindow: 300 * time.Millisecond,
		LongPressHold:   800 * time.Millisecond,
		LongPressFire:   300 * time.Millisecond,
	}
}

// Axis is a scroll direction.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// Point is a position on the surface.
type Point struct {
	X, Y float64
}

// Fling is a completed swipe: total displacement and release velocity.
type Fling struct {
	DX, DY float64
	VX, VY float64
}

// EventType selects which fields of Event are meaningful.
type EventType int

const (
	EventFling EventType = iota
	EventTap
	EventDoubleTap
	EventLongPress
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventScroll
)

// Event is one raw input event.
type Event struct {
	Type  EventType
	At    Point
	Fling Fling
	Axis  Axis
}

// Timers is the part of the timer registry the dispatcher needs.
type Timers interface {
	Arm(kind timer.Kind, owner timer.Owner, d time.Duration) timer.Token
	Cancel(kind timer.Kind) bool
}

// Dispatcher classifies gestures against a fixed set of bindings. It must
// only be used from the event loop that owns its timers.
type Dispatcher struct {
	cfg      Config
	bindings Bindings
	timers   Timers
	clock    clockwork.Clock
	log      *slog.Logger

	haptic     func()
	selecting  bool
	width      float64
	height     float64
	lastScroll map[Axis]time.Time

	down       *Point
	pendingTap *Point
}

// New creates a dispatcher.
func New(cfg Config, bindings Bindings, timers Timers, clock clockwork.Clock, log *slog.Logger) *Dispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Dispatcher{
		cfg:        cfg,
		bindings:   bindings.Clone(),
		timers:     timers,
		clock:      clock,
		log:        log.With("component", "gesture"),
		lastScroll: make(map[Axis]time.Time),
	}
}

// SetHaptic installs the feedback callback fired when an emulated long press
// crosses its hold threshold.
func (d *Dispatcher) SetHaptic(fn func()) {
	d.haptic = fn
}

// SetSelecting toggles text selection mode, which suppresses taps and
// horizontal swipes.
func (d *Dispatcher) SetSelecting(on bool) {
	d.selecting = on
}

// SetSurface records the size of the touch surface for tap quadrants.
func (d *Dispatcher) SetSurface(width, height float64) {
	d.width, d.height = width, height
}

// Bindings returns the dispatcher's bindings.
func (d *Dispatcher) Bindings() Bindings {
	return d.bindings
}

// Classify turns an event into a command. Events that only update tracking
// state, or that do not complete a gesture yet, return command.Nothing.
func (d *Dispatcher) Classify(ev Event) command.Command {
	switch ev.Type {
	case EventFling:
		return d.bindings.Command(d.classifyFling(ev.Fling))
	case EventTap:
		return d.tap(ev.At)
	case EventDoubleTap:
		return d.doubleTap()
	case EventLongPress:
		d.cancelLongPress()
		return d.bindings.Command(LongPress)
	case EventPointerDown:
		d.pointerDown(ev.At)
	case EventPointerMove:
		d.pointerMove(ev.At)
	case EventPointerUp:
		d.cancelLongPress()
	case EventScroll:
		d.lastScroll[ev.Axis] = d.clock.Now()
	}
	return command.Nothing
}

// ClassifyFling returns the swipe class for f, or false when the fling does
// not qualify as a swipe.
func (d *Dispatcher) ClassifyFling(f Fling) (Class, bool) {
	c := d.classifyFling(f)
	return c, c >= 0
}

// classifyFling honors a fling only when both distance and velocity on the
// dominant axis exceed their minimums.
func (d *Dispatcher) classifyFling(f Fling) Class {
	const none Class = -1
	if math.Abs(f.DX) > math.Abs(f.DY) {
		if d.selecting || d.scrolling(Horizontal) || math.Abs(f.VX) <= d.cfg.MinVelocity {
			return none
		}
		switch {
		case f.DX > d.cfg.MinDistance:
			return SwipeRight
		case f.DX < -d.cfg.MinDistance:
			return SwipeLeft
		}
		return none
	}
	if d.scrolling(Vertical) || math.Abs(f.VY) <= d.cfg.MinVelocity {
		return none
	}
	switch {
	case f.DY > d.cfg.MinDistance:
		return SwipeDown
	case f.DY < -d.cfg.MinDistance:
		return SwipeUp
	}
	return none
}

func (d *Dispatcher) scrolling(axis Axis) bool {
	last, ok := d.lastScroll[axis]
	return ok && d.clock.Since(last) < d.cfg.ScrollDebounce
}

// TapQuadrant splits a width x height surface along both diagonals and
// returns the triangle p falls in.
func TapQuadrant(p Point, width, height float64) Class {
	if width <= 0 || height <= 0 {
		return TapRight
	}
	antiDiagonal := height * (1 - p.X/width)
	if p.X > p.Y/height*width {
		if p.Y > antiDiagonal {
			return TapRight
		}
		return TapTop
	}
	if p.Y > antiDiagonal {
		return TapBottom
	}
	return TapLeft
}

func (d *Dispatcher) tap(p Point) command.Command {
	if d.selecting {
		return command.Nothing
	}
	// Without a double-tap binding there is nothing to wait for.
	if d.bindings.Command(DoubleTap) == command.Nothing || d.timers == nil {
		return d.bindings.Command(TapQuadrant(p, d.width, d.height))
	}
	if d.pendingTap != nil {
		return d.doubleTap()
	}
	d.pendingTap = &p
	d.timers.Arm(KindTapConfirm, Owner, d.cfg.DoubleTapWindow)
	return command.Nothing
}

func (d *Dispatcher) doubleTap() command.Command {
	if d.timers != nil {
		d.timers.Cancel(KindTapConfirm)
	}
	d.pendingTap = nil
	return d.bindings.Command(DoubleTap)
}

func (d *Dispatcher) pointerDown(p Point) {
	d.down = &p
	if d.timers != nil {
		d.timers.Arm(KindLongPressHold, Owner, d.cfg.LongPressHold)
	}
}

func (d *Dispatcher) pointerMove(p Point) {
	if d.down == nil {
		return
	}
	if math.Abs(p.X-d.down.X) > d.cfg.MoveTolerance || math.Abs(p.Y-d.down.Y) > d.cfg.MoveTolerance {
		d.cancelLongPress()
	}
}

func (d *Dispatcher) cancelLongPress() {
	d.down = nil
	if d.timers == nil {
		return
	}
	d.timers.Cancel(KindLongPressHold)
	d.timers.Cancel(KindLongPressFire)
}

// OnTimer handles an expired dispatcher timer that the registry has already
// claimed, and returns the command it completes.
func (d *Dispatcher) OnTimer(kind timer.Kind) command.Command {
	switch kind {
	case KindLongPressHold:
		if d.down == nil {
			return command.Nothing
		}
		if d.haptic != nil {
			d.haptic()
		}
		d.timers.Arm(KindLongPressFire, Owner, d.cfg.LongPressFire)
	case KindLongPressFire:
		if d.down == nil {
			return command.Nothing
		}
		d.down = nil
		d.log.Debug("emulated long press")
		return d.bindings.Command(LongPress)
	case KindTapConfirm:
		p := d.pendingTap
		d.pendingTap = nil
		if p == nil || d.selecting {
			return command.Nothing
		}
		return d.bindings.Command(TapQuadrant(*p, d.width, d.height))
	}
	return command.Nothing
}

// Owns reports whether kind is one of the dispatcher's timers.
func Owns(kind timer.Kind) bool {
	switch kind {
	case KindLongPressHold, KindLongPressFire, KindTapConfirm:
		return true
	}
	return false
}

// Reset forgets any gesture in progress.
func (d *Dispatcher) Reset() {
	d.cancelLongPress()
	if d.timers != nil {
		d.timers.Cancel(KindTapConfirm)
	}
	d.pendingTap = nil
}
