package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reviewz/internal/ui/theme"
)

// AnswerButton is one ease choice under the answer: the key that selects
// it, its name and the interval the card would get.
type AnswerButton struct {
	Key      string
	Label    string
	Interval string
	Ease     int
	Buttons  int
	// Recommended marks the button space and enter select.
	Recommended bool
}

// EaseNames returns the button names for a card offering buttons choices.
func EaseNames(buttons int) []string {
	switch buttons {
	case 2:
		return []string{"Again", "Good"}
	case 3:
		return []string{"Again", "Good", "Easy"}
	}
	return []string{"Again", "Hard", "Good", "Easy"}
}

// View renders the button.
func (b AnswerButton) View() string {
	accent := theme.EaseColor(b.Ease, b.Buttons)
	label := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(b.Label)
	key := lipgloss.NewStyle().Foreground(theme.TextDim).Render(b.Key)
	interval := lipgloss.NewStyle().Foreground(theme.TextDim).Render(b.Interval)

	style := theme.ButtonInactive
	if b.Recommended {
		style = style.BorderForeground(accent)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Center, interval, key+" "+label))
}

// AnswerRow lays the buttons out side by side, centered in width.
func AnswerRow(buttons []AnswerButton, width int) string {
	views := make([]string, 0, len(buttons))
	for _, b := range buttons {
		views = append(views, b.View())
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, views...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, row)
}
