package gesture

import "github.com/abhisek/reviewz/internal/command"

// Class is a recognized gesture.
type Class int

const (
	SwipeUp Class = iota
	SwipeDown
	SwipeLeft
	SwipeRight
	TapTop
	TapBottom
	TapLeft
	TapRight
	DoubleTap
	LongPress
)

// Classes lists every gesture class in binding order.
var Classes = []Class{
	SwipeUp, SwipeDown, SwipeLeft, SwipeRight,
	TapTop, TapBottom, TapLeft, TapRight,
	DoubleTap, LongPress,
}

func (c Class) String() string {
	switch c {
	case SwipeUp:
		return "swipe-up"
	case SwipeDown:
		return "swipe-down"
	case SwipeLeft:
		return "swipe-left"
	case SwipeRight:
		return "swipe-right"
	case TapTop:
		return "tap-top"
	case TapBottom:
		return "tap-bottom"
	case TapLeft:
		return "tap-left"
	case TapRight:
		return "tap-right"
	case DoubleTap:
		return "double-tap"
	case LongPress:
		return "long-press"
	}
	return "unknown"
}

// Bindings maps gesture classes to commands. A class without a binding
// resolves to command.Nothing.
type Bindings map[Class]command.Command

// DefaultBindings returns the stock gesture layout.
func DefaultBindings() Bindings {
	return Bindings{
		SwipeUp:    command.Edit,
		SwipeDown:  command.Nothing,
		SwipeLeft:  command.Undo,
		SwipeRight: command.Exit,
		TapTop:     command.Bury,
		TapBottom:  command.Ease1,
		TapLeft:    command.Ease2,
		TapRight:   command.Recommended,
		DoubleTap:  command.BetterThanRecommended,
		LongPress:  command.PlayMedia,
	}
}

// Command returns the command bound to c.
func (b Bindings) Command(c Class) command.Command {
	if cmd, ok := b[c]; ok {
		return cmd
	}
	return command.Nothing
}

// Clone returns a copy that can be modified independently.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
