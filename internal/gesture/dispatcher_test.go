package gesture

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/reviewz/internal/command"
	"github.com/abhisek/reviewz/internal/timer"
)

type harness struct {
	d      *Dispatcher
	clock  *clockwork.FakeClock
	timers *timer.Registry
	fired  chan timer.Fired
}

func newHarness(t *testing.T, bindings Bindings) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	fired := make(chan timer.Fired, 8)
	reg := timer.New(clock, func(f timer.Fired) { fired <- f })
	d := New(DefaultConfig(), bindings, reg, clock, nil)
	d.SetSurface(100, 40)
	return &harness{d: d, clock: clock, timers: reg, fired: fired}
}

// advance moves the clock and delivers the firings the registry still
// accepts, returning the commands they complete.
func (h *harness) advance(t *testing.T, by time.Duration) []command.Command {
	t.Helper()
	h.clock.Advance(by)
	var out []command.Command
	deadline := time.After(50 * time.Millisecond)
	for {
		select {
		case f := <-h.fired:
			if h.timers.Claim(f) {
				out = append(out, h.d.OnTimer(f.Kind))
			}
		case <-deadline:
			return out
		}
	}
}

func TestFlingClassification(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name  string
		fling Fling
		want  command.Command
	}{
		{"right", Fling{DX: 20, DY: 2, VX: 50}, command.Exit},
		{"left", Fling{DX: -20, DY: 2, VX: -50}, command.Undo},
		{"up", Fling{DX: 1, DY: -10, VY: -40}, command.Edit},
		{"down", Fling{DX: 1, DY: 10, VY: 40}, command.Nothing},
		{"too short", Fling{DX: 2, VX: 50}, command.Nothing},
		{"too slow", Fling{DX: 20, VX: 1}, command.Nothing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.d.Classify(Event{Type: EventFling, Fling: tt.fling}))
		})
	}
}

func TestFlingThresholdsAreStrict(t *testing.T) {
	h := newHarness(t, nil)
	cfg := DefaultConfig()
	dist, vel := cfg.MinDistance, cfg.MinVelocity

	tests := []struct {
		name  string
		fling Fling
		ok    bool
		want  Class
	}{
		{"distance at minimum", Fling{DX: dist, VX: vel * 2}, false, 0},
		{"velocity at minimum", Fling{DX: dist * 2, VX: vel}, false, 0},
		{"both above", Fling{DX: dist + 0.5, VX: vel + 0.5}, true, SwipeRight},
		{"left at minimum", Fling{DX: -dist, VX: -vel * 2}, false, 0},
		{"left above", Fling{DX: -dist - 0.5, VX: -vel - 0.5}, true, SwipeLeft},
		{"down at minimum", Fling{DY: dist, VY: vel * 2}, false, 0},
		{"up above", Fling{DY: -dist - 0.5, VY: -vel - 0.5}, true, SwipeUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok := h.d.ClassifyFling(tt.fling)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, class)
			}
		})
	}
}

func TestHorizontalFlingNeverVertical(t *testing.T) {
	h := newHarness(t, nil)
	rng := rand.New(rand.NewSource(7))

	for range 500 {
		dx := (rng.Float64()*2 - 1) * 100
		dy := (rng.Float64()*2 - 1) * 100
		if abs(dx) <= abs(dy) {
			dx, dy = dy, dx
		}
		if abs(dx) == abs(dy) {
			continue
		}
		f := Fling{DX: dx, DY: dy, VX: dx * 3, VY: dy * 3}
		class, ok := h.d.ClassifyFling(f)
		if ok {
			require.NotContains(t, []Class{SwipeUp, SwipeDown}, class, "fling %+v", f)
		}
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestRecentScrollSuppressesSwipeOnSameAxis(t *testing.T) {
	h := newHarness(t, nil)
	right := Event{Type: EventFling, Fling: Fling{DX: 20, VX: 50}}
	down := Event{Type: EventFling, Fling: Fling{DY: -20, VY: -50}}

	h.d.Classify(Event{Type: EventScroll, Axis: Horizontal})
	assert.Equal(t, command.Nothing, h.d.Classify(right))
	assert.Equal(t, command.Edit, h.d.Classify(down), "vertical axis is not debounced")

	h.clock.Advance(301 * time.Millisecond)
	assert.Equal(t, command.Exit, h.d.Classify(right))
}

func TestSelectingSuppressesTapsAndHorizontalSwipes(t *testing.T) {
	h := newHarness(t, nil)
	h.d.SetSelecting(true)

	assert.Equal(t, command.Nothing, h.d.Classify(Event{Type: EventFling, Fling: Fling{DX: 20, VX: 50}}))
	assert.Equal(t, command.Nothing, h.d.Classify(Event{Type: EventTap, At: Point{X: 99, Y: 20}}))
	assert.Equal(t, command.Edit, h.d.Classify(Event{Type: EventFling, Fling: Fling{DY: -20, VY: -50}}))
}

func TestTapQuadrant(t *testing.T) {
	tests := []struct {
		p    Point
		want Class
	}{
		{Point{X: 100, Y: 50}, TapRight},
		{Point{X: 50, Y: 1}, TapTop},
		{Point{X: 50, Y: 99}, TapBottom},
		{Point{X: 1, Y: 50}, TapLeft},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TapQuadrant(tt.p, 100, 100), "point %+v", tt.p)
	}
}

func TestSingleTapWaitsForDoubleTapWindow(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, command.Nothing, h.d.Classify(Event{Type: EventTap, At: Point{X: 2, Y: 20}}))
	got := h.advance(t, 300*time.Millisecond)
	assert.Equal(t, []command.Command{command.Ease2}, got)
}

func TestSecondTapInsideWindowIsDoubleTap(t *testing.T) {
	h := newHarness(t, nil)

	h.d.Classify(Event{Type: EventTap, At: Point{X: 2, Y: 20}})
	h.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, command.BetterThanRecommended, h.d.Classify(Event{Type: EventTap, At: Point{X: 2, Y: 20}}))
	assert.Empty(t, h.advance(t, time.Second))
}

func TestTapWithoutDoubleTapBindingIsImmediate(t *testing.T) {
	b := DefaultBindings()
	b[DoubleTap] = command.Nothing
	h := newHarness(t, b)

	assert.Equal(t, command.Recommended, h.d.Classify(Event{Type: EventTap, At: Point{X: 99, Y: 20}}))
}

func TestEmulatedLongPress(t *testing.T) {
	h := newHarness(t, nil)
	buzzes := 0
	h.d.SetHaptic(func() { buzzes++ })

	h.d.Classify(Event{Type: EventPointerDown, At: Point{X: 10, Y: 10}})
	assert.Empty(t, filterNothing(h.advance(t, 800*time.Millisecond)))
	assert.Equal(t, 1, buzzes)

	got := filterNothing(h.advance(t, 300*time.Millisecond))
	assert.Equal(t, []command.Command{command.PlayMedia}, got)
	assert.Equal(t, 1, buzzes)
}

func TestEmulatedLongPressCancelledByRelease(t *testing.T) {
	h := newHarness(t, nil)
	buzzes := 0
	h.d.SetHaptic(func() { buzzes++ })

	h.d.Classify(Event{Type: EventPointerDown, At: Point{X: 10, Y: 10}})
	h.advance(t, 800*time.Millisecond)
	h.d.Classify(Event{Type: EventPointerUp})

	assert.Empty(t, filterNothing(h.advance(t, time.Second)))
	assert.Equal(t, 1, buzzes)
}

func TestEmulatedLongPressCancelledByMove(t *testing.T) {
	h := newHarness(t, nil)

	h.d.Classify(Event{Type: EventPointerDown, At: Point{X: 10, Y: 10}})
	h.d.Classify(Event{Type: EventPointerMove, At: Point{X: 10.5, Y: 10}})
	assert.True(t, h.timers.Armed(KindLongPressHold), "small jitter keeps the press")

	h.d.Classify(Event{Type: EventPointerMove, At: Point{X: 15, Y: 10}})
	assert.False(t, h.timers.Armed(KindLongPressHold))
	assert.Empty(t, filterNothing(h.advance(t, 2*time.Second)))
}

func TestUnknownBindingResolvesToNothing(t *testing.T) {
	h := newHarness(t, Bindings{})
	assert.Equal(t, command.Nothing, h.d.Classify(Event{Type: EventLongPress}))
}

func filterNothing(cmds []command.Command) []command.Command {
	var out []command.Command
	for _, c := range cmds {
		if c != command.Nothing {
			out = append(out, c)
		}
	}
	return out
}
