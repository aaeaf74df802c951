package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	rv "github.com/abhisek/reviewz/internal/review"
	"github.com/abhisek/reviewz/internal/router"
	"github.com/abhisek/reviewz/internal/screen"
	"github.com/abhisek/reviewz/internal/ui/components"
	"github.com/abhisek/reviewz/internal/ui/layout"
	"github.com/abhisek/reviewz/internal/ui/theme"
)

// Result is what a finished review session reports.
type Result struct {
	Deck    string
	Outcome rv.Outcome
}

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(result Result) *SummaryScreen {
	return &SummaryScreen{result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// Headline returns the title line for the way the session ended.
func (s *SummaryScreen) Headline() string {
	switch s.result.Outcome.Reason {
	case rv.NoMoreCards:
		return "Congratulations! You have finished this deck for now."
	case rv.Fatal:
		return "The session stopped because of an error."
	default:
		return "Session complete!"
	}
}

func (s *SummaryScreen) View(width, height int) string {
	o := s.result.Outcome
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder

	titleColor := theme.Primary
	if o.Reason == rv.Fatal {
		titleColor = theme.Error
	}
	b.WriteString(center.Foreground(titleColor).Bold(true).Render(s.Headline()))
	b.WriteString("\n")
	if s.result.Deck != "" {
		b.WriteString(center.Foreground(theme.Secondary).Render(s.result.Deck))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mins := int(o.Duration.Minutes())
	secs := int(o.Duration.Seconds()) % 60
	b.WriteString(center.Foreground(theme.TextDim).
		Render(fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.Text).
		Render(fmt.Sprintf("Cards reviewed: %d", o.Reviewed)))
	b.WriteString("\n\n")

	if o.Reviewed > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
			strings.Repeat("─", min(width-8, 60)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Answers")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		barWidth := min(width-8, 60)
		for i, name := range components.EaseNames(4) {
			bar := components.NewProgressBar(fmt.Sprintf("%-6s", name), o.ByEase[i+1], o.Reviewed, barWidth)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
			b.WriteString("\n")
		}
	}

	if o.Reason == rv.Fatal && o.Err != nil {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Error).Render(o.Err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}
