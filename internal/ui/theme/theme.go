package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, muted so long sessions are easy on the eyes
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
	Paper     = lipgloss.Color("#F1F5F9") // Night mode off
	Ink       = lipgloss.Color("#0F172A")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Typed answer comparison
var (
	TypeGood = lipgloss.NewStyle().
			Foreground(Success)

	TypeBad = lipgloss.NewStyle().
		Foreground(Error).
		Strikethrough(true)

	TypeMissed = lipgloss.NewStyle().
			Foreground(Accent).
			Underline(true)

	TypePrompt = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	Cloze = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	CardError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Components
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

// EaseColor returns the accent for an answer button: red for Again through
// teal for Easy. buttons is how many the card offers.
func EaseColor(ease, buttons int) color.Color {
	switch {
	case ease == 1:
		return Error
	case ease == buttons && buttons == 4:
		return Secondary
	case ease == 2 && buttons == 4:
		return Accent
	}
	return Success
}
