package review

import (
	"math"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/reviewz/internal/gesture"
	"github.com/abhisek/reviewz/internal/ui/layout"
)

// pointer tracks the mouse button between press and release.
type pointer struct {
	down  bool
	start gesture.Point
	at    time.Time
}

// cardPoint converts terminal coordinates to card-surface coordinates.
func (s *ReviewScreen) cardPoint(m tea.Mouse) gesture.Point {
	return gesture.Point{
		X: float64(m.X),
		Y: float64(m.Y - layout.HeaderHeight - s.card.top),
	}
}

// handleMouse turns terminal mouse events into gesture events: a press,
// drag and release become a swipe, a press and release in place a tap.
func (s *ReviewScreen) handleMouse(msg tea.MouseMsg) {
	m := msg.Mouse()
	p := s.cardPoint(m)

	switch msg.(type) {
	case tea.MouseClickMsg:
		if m.Button != tea.MouseLeft || !s.card.contains(p.X, p.Y) {
			return
		}
		s.ptr = pointer{down: true, start: p, at: s.clock.Now()}
		s.holding = false
		s.gesture(gesture.Event{Type: gesture.EventPointerDown, At: p})

	case tea.MouseMotionMsg:
		if !s.ptr.down {
			return
		}
		s.gesture(gesture.Event{Type: gesture.EventPointerMove, At: p})

	case tea.MouseReleaseMsg:
		if !s.ptr.down {
			return
		}
		start, held := s.ptr.start, s.clock.Since(s.ptr.at)
		s.ptr = pointer{}
		s.gesture(gesture.Event{Type: gesture.EventPointerUp, At: p})
		if s.holding {
			// The long press already fired.
			s.holding = false
			return
		}

		dx, dy := p.X-start.X, p.Y-start.Y
		if math.Abs(dx) < 1 && math.Abs(dy) < 1 {
			s.gesture(gesture.Event{Type: gesture.EventTap, At: p})
			return
		}
		secs := held.Seconds()
		if secs <= 0 {
			secs = 0.001
		}
		s.gesture(gesture.Event{
			Type:  gesture.EventFling,
			At:    p,
			Fling: gesture.Fling{DX: dx, DY: dy, VX: dx / secs, VY: dy / secs},
		})

	case tea.MouseWheelMsg:
		axis := gesture.Vertical
		if m.Button == tea.MouseWheelLeft || m.Button == tea.MouseWheelRight {
			axis = gesture.Horizontal
		}
		s.gesture(gesture.Event{Type: gesture.EventScroll, At: p, Axis: axis})
	}
}

func (s *ReviewScreen) gesture(ev gesture.Event) {
	s.run(s.engine.HandleGesture(ev))
}
