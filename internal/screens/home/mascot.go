package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reviewz/internal/ui/theme"
)

// MascotVariant selects which card art to display.
type MascotVariant int

const (
	MascotIdle  MascotVariant = iota // nothing due
	MascotAlert                      // cards waiting
	MascotDone                       // reviewed today and nothing left
)

const mascotIdle = `┌───────┐
│ ◉   ◉ │
│   ▽   │
│ Q ↻ A │
└───────┘`

const mascotAlert = `┌───────┐
│ ◉   ◉ │ !
│   ○   │
│ Q ↻ A │
└───────┘`

const mascotDone = `┌───────┐
│ ★   ★ │
│   ▿   │
│ Q ✓ A │
└─╥═══╥─┘
  ╚═══╝`

// variantFor picks the art for the current queue.
func variantFor(st stats) MascotVariant {
	switch {
	case !st.loaded:
		return MascotIdle
	case st.due+st.fresh > 0:
		return MascotAlert
	case st.history != nil && st.history.Answers > 0:
		return MascotDone
	}
	return MascotIdle
}

// RenderMascot returns the card art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotAlert:
		art, fg = mascotAlert, theme.Accent
	case MascotDone:
		art, fg = mascotDone, theme.Success
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
