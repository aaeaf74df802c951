package review

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/reviewz/internal/command"
	rv "github.com/abhisek/reviewz/internal/review"
	"github.com/abhisek/reviewz/internal/ui/components"
	"github.com/abhisek/reviewz/internal/ui/theme"
)

// cardArea is where the card surface was last drawn, relative to the
// screen's content area.
type cardArea struct {
	top, width, height int
}

func (a cardArea) contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(a.width) && y < float64(a.height)
}

type viewer interface {
	View(width, height int) string
}

func (s *ReviewScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.state.Card == nil {
		return renderLoading(width)
	}

	top := s.renderInfo(width)
	bottom := s.renderControls(width)

	cardHeight := height - lipgloss.Height(top) - lipgloss.Height(bottom)
	if cardHeight < 3 {
		cardHeight = 3
	}
	s.card = cardArea{top: lipgloss.Height(top), width: width, height: cardHeight}
	s.engine.Gestures().SetSurface(float64(width), float64(cardHeight))

	var card string
	if v, ok := s.engine.Surface().(viewer); ok {
		card = v.View(width, cardHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, card, bottom)
}

// renderInfo renders the card info line and the session progress bar.
func (s *ReviewScreen) renderInfo(width int) string {
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", s.state.Card.Template))

	phase := s.state.Phase.String()
	if s.state.ControlsBlocked {
		phase = "saving"
	}
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("card %d  %s  ", s.state.Card.ID, phase))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight)
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	done := s.engine.Reviewed()
	bar := components.NewProgressBar("  Progress", done, done+s.due+s.fresh, width-2)
	return infoLine + "\n" + bar.View()
}

// renderControls renders what sits under the card: the typed answer field,
// the answer buttons and the status line.
func (s *ReviewScreen) renderControls(width int) string {
	var rows []string
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	switch s.state.Phase {
	case rv.QuestionShown:
		if s.typing() {
			rows = append(rows, center.Render("Answer: "+s.input.View()))
		} else {
			rows = append(rows, center.Foreground(theme.TextDim).Render("Space to show the answer"))
		}
	case rv.AnswerShown:
		rows = append(rows, components.AnswerRow(s.answerButtons(), width))
	case rv.Grading, rv.Advancing:
		rows = append(rows, center.Foreground(theme.TextDim).Render("..."))
	}

	switch {
	case s.status != "":
		rows = append(rows, center.Foreground(theme.Error).Render(s.status))
	case s.holding:
		rows = append(rows, center.Foreground(theme.Accent).Render("Hold to replay"))
	default:
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

func (s *ReviewScreen) answerButtons() []components.AnswerButton {
	n := s.state.Buttons
	names := components.EaseNames(n)
	recommended := command.RecommendedEase(n, false)
	buttons := make([]components.AnswerButton, 0, n)
	for i := 0; i < n && i < len(names); i++ {
		interval := ""
		if i < len(s.labels) {
			interval = s.labels[i]
		}
		buttons = append(buttons, components.AnswerButton{
			Key:         strconv.Itoa(i + 1),
			Label:       names[i],
			Interval:    interval,
			Ease:        i + 1,
			Buttons:     n,
			Recommended: i+1 == recommended,
		})
	}
	return buttons
}

// renderLoading renders the state before the first card arrives.
func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparing your session...")
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func formatClock(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
